package wrapper

import (
	"errors"
	"fmt"

	"github.com/a3tai/realbook-extractor/internal/raster"
)

// Document is an opened PDF. It owns its pages and must be closed exactly
// once by whoever opened it.
type Document interface {
	PageCount() int
	Page(pageNum int) (Page, error)
	Version() string
	Close() error
}

// Page is a single page of a Document, numbered from 1.
type Page interface {
	Number() int
	// Images returns the page's raster images in a stable order. A nil entry
	// stands for an image the PDF layer found but could not decode. An error
	// means the page's image list itself could not be enumerated.
	Images() ([]*raster.Image, error)
}

// OpenMode selects how much work is done when a document is opened
type OpenMode int

const (
	// ModeImport validates and optimizes the document so page images can be
	// extracted.
	ModeImport OpenMode = iota
	// ModeInspect only reads the cross-reference table and page tree;
	// page images are not available.
	ModeInspect
)

// String returns a string representation of the OpenMode
func (m OpenMode) String() string {
	switch m {
	case ModeImport:
		return "import"
	case ModeInspect:
		return "inspect"
	default:
		return "unknown"
	}
}

// LibraryType represents the underlying PDF library being used
type LibraryType string

const (
	LibraryPDFCPU LibraryType = "pdfcpu"
)

// WrapperError represents an error from a PDF library wrapper
type WrapperError struct {
	Library LibraryType `json:"library"`
	Op      string      `json:"operation"`
	Err     error       `json:"error"`
}

func (e *WrapperError) Error() string {
	return fmt.Sprintf("PDF %s library error in %s: %v", e.Library, e.Op, e.Err)
}

func (e *WrapperError) Unwrap() error {
	return e.Err
}

// Common error variables
var (
	// ErrIncompatible marks a document the primary parser rejected because of
	// its version or structure. It is the only error that triggers the
	// normalize-and-reopen fallback.
	ErrIncompatible = errors.New("incompatible PDF")

	ErrDocumentClosed = &WrapperError{Library: LibraryPDFCPU, Op: "document", Err: errors.New("document is closed")}
	ErrInvalidPage    = &WrapperError{Library: LibraryPDFCPU, Op: "page", Err: errors.New("invalid page number")}
	ErrNotImported    = &WrapperError{Library: LibraryPDFCPU, Op: "images", Err: errors.New("document was not opened for import")}
)

// UnreadablePDFError is returned when neither the document nor its
// normalized copy could be opened.
type UnreadablePDFError struct {
	Path     string
	Primary  error
	Fallback error
}

func (e *UnreadablePDFError) Error() string {
	return fmt.Sprintf("unreadable PDF %s: %v (after normalization: %v)", e.Path, e.Primary, e.Fallback)
}

func (e *UnreadablePDFError) Unwrap() []error {
	return []error{e.Primary, e.Fallback}
}
