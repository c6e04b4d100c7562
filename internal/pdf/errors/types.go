package errors

import (
	"fmt"
	"strings"
	"time"
)

// Level classifies how far an extraction failure reaches
type Level int

const (
	// LevelFatal aborts the run: the output folder or the document is unusable.
	LevelFatal Level = iota
	// LevelPage skips one page whose image list could not be enumerated.
	LevelPage
	// LevelImage skips one image that could not be decoded, corrected or saved.
	LevelImage
)

// String returns a string representation of the Level
func (l Level) String() string {
	switch l {
	case LevelFatal:
		return "FATAL"
	case LevelPage:
		return "PAGE"
	case LevelImage:
		return "IMAGE"
	default:
		return "UNKNOWN"
	}
}

// ExtractionError records a single failure observed during an extraction run
type ExtractionError struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Page      int       `json:"page,omitempty"`
	Sequence  int       `json:"sequence,omitempty"` // output number consumed by the failed image
	Err       error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Level, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Level, e.Message)
}

// Unwrap returns the underlying cause
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Detail returns the message followed by the cause on its own line, in the
// form used for error reports.
func (e *ExtractionError) Detail() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + "\n" + e.Err.Error()
}

// NewPageError records that the images of a page could not be enumerated
func NewPageError(page int, err error) *ExtractionError {
	return &ExtractionError{
		Level:     LevelPage,
		Message:   fmt.Sprintf("Couldn't extract image on page %d", page),
		Page:      page,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// NewDecodeError records an image entry that the PDF layer could not decode
func NewDecodeError(page, sequence int) *ExtractionError {
	return &ExtractionError{
		Level:     LevelImage,
		Message:   fmt.Sprintf("Cannot decode image on page %d", page),
		Page:      page,
		Sequence:  sequence,
		Timestamp: time.Now(),
	}
}

// NewImageError records an image that failed polarity correction or saving
func NewImageError(page, sequence int, err error) *ExtractionError {
	return &ExtractionError{
		Level:     LevelImage,
		Message:   fmt.Sprintf("Couldn't process image on page %d", page),
		Page:      page,
		Sequence:  sequence,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// NewFatalError records a failure that aborts the whole run
func NewFatalError(message string, err error) *ExtractionError {
	return &ExtractionError{
		Level:     LevelFatal,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// ErrorCollection accumulates the errors of one run in the order they occurred
type ErrorCollection struct {
	Errors   []*ExtractionError `json:"errors"`
	FilePath string             `json:"file_path,omitempty"`
}

// NewErrorCollection creates a new error collection
func NewErrorCollection(filePath string) *ErrorCollection {
	return &ErrorCollection{
		Errors:   make([]*ExtractionError, 0),
		FilePath: filePath,
	}
}

// Add appends an error to the collection
func (ec *ErrorCollection) Add(err *ExtractionError) {
	ec.Errors = append(ec.Errors, err)
}

// Len returns the number of recorded errors
func (ec *ErrorCollection) Len() int {
	return len(ec.Errors)
}

// ByLevel returns the recorded errors of the given level, in order
func (ec *ErrorCollection) ByLevel(level Level) []*ExtractionError {
	out := make([]*ExtractionError, 0)
	for _, err := range ec.Errors {
		if err.Level == level {
			out = append(out, err)
		}
	}
	return out
}

// Count returns the number of page-level and image-level errors
func (ec *ErrorCollection) Count() (pages, images int) {
	return len(ec.ByLevel(LevelPage)), len(ec.ByLevel(LevelImage))
}

// Summary returns a one-line description of the recorded errors
func (ec *ErrorCollection) Summary() string {
	switch n := ec.Len(); n {
	case 0:
		return "No errors"
	case 1:
		return "There was an error."
	default:
		return fmt.Sprintf("There were %d errors.", n)
	}
}

// Report joins the details of every error, separated by blank lines
func (ec *ErrorCollection) Report() string {
	details := make([]string, 0, len(ec.Errors))
	for _, err := range ec.Errors {
		details = append(details, err.Detail())
	}
	return strings.Join(details, "\n\n")
}
