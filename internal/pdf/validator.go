package pdf

import (
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const pdfMIMEType = "application/pdf"

// Validator handles PDF file validation operations
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile performs comprehensive validation on a PDF file. Validation
// failures are reported in the result, not as an error.
func (v *Validator) ValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	result := &PDFValidateFileResult{
		Path:  req.Path,
		Valid: false,
	}

	info, err := v.checkFile(req.Path)
	if info != nil {
		result.Size = info.Size()
	}
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // validation failure is part of the result
	}

	mime, err := mimetype.DetectFile(req.Path)
	if err != nil {
		result.Message = fmt.Sprintf("cannot detect file type: %v", err)
		return result, nil //nolint:nilerr
	}
	result.MIMEType = mime.String()
	if !mime.Is(pdfMIMEType) {
		result.Message = fmt.Sprintf("file content is %s, not a PDF", mime.String())
		return result, nil
	}

	pages, err := countPages(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr
	}

	result.Pages = pages
	result.Valid = true
	return result, nil
}

// ValidatePath returns an error describing why path is not an acceptable
// PDF input, or nil.
func (v *Validator) ValidatePath(path string) error {
	_, err := v.checkFile(path)
	return err
}

// checkFile applies the cheap checks: existence, kind, extension and size
func (v *Validator) checkFile(filePath string) (os.FileInfo, error) {
	if filePath == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	return fileInfo, v.ValidateFileInfo(filePath, fileInfo)
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if v.maxFileSize > 0 && fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}

// countPages opens the file with the lenient reader and returns its page count
func countPages(filePath string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid PDF file: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("invalid PDF file: %w", err)
	}
	defer f.Close()

	return r.NumPage(), nil
}
