package extract

import (
	"time"

	pdferrors "github.com/a3tai/realbook-extractor/internal/pdf/errors"
)

// Result is the outcome of one extraction run.
type Result struct {
	RunID        string `json:"run_id,omitempty"`
	PDF          string `json:"pdf,omitempty"`
	OutputFolder string `json:"output_folder"`

	// Success is false only when the run was cancelled or hit a fatal error.
	// Page and image errors do not affect it.
	Success   bool `json:"success"`
	Cancelled bool `json:"cancelled"`

	Pages     int      `json:"pages"`     // pages visited
	Attempted int      `json:"attempted"` // image numbers consumed, including failures
	Written   []string `json:"written"`   // file names in output order
	Inverted  int      `json:"inverted"`  // 1-bit images whose palette was swapped

	Errors   *pdferrors.ErrorCollection `json:"errors"`
	Duration time.Duration              `json:"duration"`
}

func newResult(pdfPath, outputFolder string) *Result {
	return &Result{
		PDF:          pdfPath,
		OutputFolder: outputFolder,
		Written:      make([]string, 0),
		Errors:       pdferrors.NewErrorCollection(pdfPath),
	}
}

// counters carries the page and image sequence numbers through a run.
// image is the number the next attempted image will be written under.
type counters struct {
	page  int
	image int
}

func newCounters() *counters {
	return &counters{page: 0, image: 1}
}
