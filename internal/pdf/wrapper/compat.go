package wrapper

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// OpenFunc opens a document from an in-memory PDF
type OpenFunc func(rs io.ReadSeeker, mode OpenMode) (Document, error)

// NormalizeFunc produces a rewritten copy of the PDF at path
type NormalizeFunc func(path string) ([]byte, error)

// CompatibleOpener opens PDFs with the strict pdfcpu reader and, when the
// reader rejects the file's version or structure, retries once on a
// normalized copy.
type CompatibleOpener struct {
	open      OpenFunc
	normalize NormalizeFunc
	logger    zerolog.Logger
}

// OpenerOption configures a CompatibleOpener
type OpenerOption func(*CompatibleOpener)

// WithLogger sets the logger used for fallback diagnostics
func WithLogger(logger zerolog.Logger) OpenerOption {
	return func(o *CompatibleOpener) {
		o.logger = logger
	}
}

// WithOpenFunc replaces the primary open routine
func WithOpenFunc(fn OpenFunc) OpenerOption {
	return func(o *CompatibleOpener) {
		o.open = fn
	}
}

// WithNormalizeFunc replaces the normalization routine
func WithNormalizeFunc(fn NormalizeFunc) OpenerOption {
	return func(o *CompatibleOpener) {
		o.normalize = fn
	}
}

// NewCompatibleOpener creates an opener backed by pdfcpu
func NewCompatibleOpener(opts ...OpenerOption) *CompatibleOpener {
	o := &CompatibleOpener{
		logger:    zerolog.Nop(),
		normalize: Normalize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.open == nil {
		logger := o.logger
		o.open = func(rs io.ReadSeeker, mode OpenMode) (Document, error) {
			return openPDFCPU(rs, mode, logger)
		}
	}
	return o
}

// Open opens the document at path. File system errors are returned as is.
// An incompatible document is normalized and reopened; if that also fails
// the result is an *UnreadablePDFError carrying both causes.
func (o *CompatibleOpener) Open(path string, mode OpenMode) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := o.open(bytes.NewReader(data), mode)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ErrIncompatible) {
		return nil, err
	}

	o.logger.Warn().
		Err(err).
		Str("pdf", path).
		Stringer("mode", mode).
		Msg("PDF rejected by reader, normalizing")

	normalized, nerr := o.normalize(path)
	if nerr != nil {
		return nil, &UnreadablePDFError{Path: path, Primary: err, Fallback: nerr}
	}

	doc, ferr := o.open(bytes.NewReader(normalized), mode)
	if ferr != nil {
		return nil, &UnreadablePDFError{Path: path, Primary: err, Fallback: ferr}
	}

	o.logger.Info().
		Str("pdf", path).
		Int("size", len(normalized)).
		Str("version", doc.Version()).
		Msg("opened normalized copy")
	return doc, nil
}
