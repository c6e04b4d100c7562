package wrapper

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Normalize rewrites the PDF at path into a form the strict reader accepts:
// parsed leniently, interactive form removed, catalog version dropped,
// header pinned to 1.4, classic cross-reference table without object
// streams.
func Normalize(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return NormalizeReader(f)
}

// NormalizeReader is Normalize for an already opened PDF
func NormalizeReader(rs io.ReadSeeker) ([]byte, error) {
	conf := newConfiguration(model.ValidationRelaxed)
	conf.Cmd = model.OPTIMIZE
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false

	ctx, err := api.ReadValidateAndOptimize(rs, conf)
	if err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "normalize_read", Err: err}
	}

	if ctx.RootDict != nil {
		ctx.RootDict.Delete("AcroForm")
		ctx.RootDict.Delete("Version")
	}
	v := model.V14
	ctx.HeaderVersion = &v
	ctx.RootVersion = nil

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "normalize_write", Err: err}
	}
	if buf.Len() == 0 {
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "normalize_write", Err: fmt.Errorf("empty output")}
	}
	return buf.Bytes(), nil
}
