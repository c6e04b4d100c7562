package pdf

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/a3tai/realbook-extractor/internal/extract"
	pdferrors "github.com/a3tai/realbook-extractor/internal/pdf/errors"
	"github.com/a3tai/realbook-extractor/internal/pdf/security"
	"github.com/a3tai/realbook-extractor/internal/pdf/wrapper"
)

// Service handles PDF file operations by orchestrating various PDF components
type Service struct {
	maxFileSize   int64
	validator     *Validator
	inventory     *Inventory
	opener        extract.Opener
	extractOpts   extract.Options
	pathValidator *security.PathValidator
	logger        zerolog.Logger
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithLogger sets the service logger
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithOpener replaces the document opener used for extraction
func WithOpener(opener extract.Opener) ServiceOption {
	return func(s *Service) {
		s.opener = opener
	}
}

// WithExtractOptions sets the extractor options; the logger is always the
// service's own.
func WithExtractOptions(opts extract.Options) ServiceOption {
	return func(s *Service) {
		s.extractOpts = opts
	}
}

// NewService creates a new PDF service with all components
func NewService(maxFileSize int64, configuredDirectory string, opts ...ServiceOption) (*Service, error) {
	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	s := &Service{
		maxFileSize:   maxFileSize,
		validator:     NewValidator(maxFileSize),
		inventory:     NewInventory(maxFileSize),
		extractOpts:   extract.DefaultOptions(),
		pathValidator: pathValidator,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.opener == nil {
		s.opener = wrapper.NewCompatibleOpener(wrapper.WithLogger(s.logger))
	}
	s.extractOpts.Logger = s.logger

	return s, nil
}

// PDFExtractImages writes every image of a PDF to numbered PNG files. When
// no output folder is given, a folder named after the PDF is created next
// to it.
func (s *Service) PDFExtractImages(ctx context.Context, req PDFExtractImagesRequest) (*PDFExtractImagesResult, error) {
	pdfPath, err := s.pathValidator.NormalizePath(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := s.validator.ValidatePath(pdfPath); err != nil {
		return nil, err
	}

	out := ResolveOutputFolder(pdfPath, "", "")
	if req.OutputFolder != "" {
		if out, err = s.pathValidator.NormalizePath(req.OutputFolder); err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
	}
	if err := s.pathValidator.ValidateDirectory(out); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	if err := CheckOutputFolder(out, req.Overwrite); err != nil {
		return nil, err
	}

	res, err := extract.NewRunner(s.opener, s.extractOpts).Run(ctx, out, pdfPath)
	if err != nil {
		return nil, err
	}
	return NewExtractImagesResult(res), nil
}

// PDFListImages lists the images of a PDF without extracting them
func (s *Service) PDFListImages(req PDFListImagesRequest) (*PDFListImagesResult, error) {
	path, err := s.pathValidator.NormalizePath(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Path = path
	return s.inventory.ListImages(req)
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	path, err := s.pathValidator.NormalizePath(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Path = path
	return s.validator.ValidateFile(req)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// GetConfiguredDirectory returns the directory tools are confined to
func (s *Service) GetConfiguredDirectory() string {
	return s.pathValidator.GetConfiguredDirectory()
}

// NewExtractImagesResult converts a run result to its tool representation
func NewExtractImagesResult(res *extract.Result) *PDFExtractImagesResult {
	out := &PDFExtractImagesResult{
		RunID:        res.RunID,
		Path:         res.PDF,
		OutputFolder: res.OutputFolder,
		Success:      res.Success,
		Cancelled:    res.Cancelled,
		Pages:        res.Pages,
		Files:        res.Written,
		Inverted:     res.Inverted,
		Summary:      res.Errors.Summary(),
		DurationMS:   res.Duration.Milliseconds(),
	}
	for _, e := range res.Errors.Errors {
		out.Errors = append(out.Errors, newErrorDetail(e))
	}
	return out
}

func newErrorDetail(e *pdferrors.ExtractionError) ErrorDetail {
	d := ErrorDetail{
		Level:    e.Level.String(),
		Page:     e.Page,
		Sequence: e.Sequence,
		Message:  e.Message,
	}
	if e.Err != nil {
		d.Cause = e.Err.Error()
	}
	return d
}
