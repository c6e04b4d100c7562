package pdf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutputNotEmpty is returned when the output folder already holds files
// and overwriting was not requested.
var ErrOutputNotEmpty = errors.New("output folder is not empty")

// ResolveOutputFolder returns out if set, otherwise a folder named after
// the PDF (without extension) under root. An empty root means the PDF's own
// directory.
func ResolveOutputFolder(pdfPath, out, root string) string {
	if out != "" {
		return filepath.Clean(out)
	}
	if root == "" {
		root = filepath.Dir(pdfPath)
	}
	base := filepath.Base(pdfPath)
	return filepath.Join(root, strings.TrimSuffix(base, filepath.Ext(base)))
}

// CheckOutputFolder refuses a folder that exists and is not empty unless
// overwrite is set. A missing folder is fine; extraction creates it.
func CheckOutputFolder(dir string, overwrite bool) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot access output folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output path is not a directory: %s", dir)
	}
	if overwrite {
		return nil
	}

	f, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("cannot read output folder: %w", err)
	}
	defer f.Close()

	if _, err := f.Readdirnames(1); err == io.EOF {
		return nil
	} else if err != nil {
		return fmt.Errorf("cannot read output folder: %w", err)
	}
	return fmt.Errorf("%w: %s", ErrOutputNotEmpty, dir)
}
