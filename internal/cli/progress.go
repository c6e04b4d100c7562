package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/a3tai/realbook-extractor/internal/extract"
	pdferrors "github.com/a3tai/realbook-extractor/internal/pdf/errors"
)

// ProgressListener shows a run's page progress as a bar and prints its
// errors as they happen. The bar is created on the first progress event,
// when the page count is known.
type ProgressListener struct {
	ui     *UI
	w      io.Writer
	title  string
	bar    *progressbar.ProgressBar
	page   int
	errors int
}

var _ extract.Listener = (*ProgressListener)(nil)

// NewProgressListener creates a listener drawing on w, or stderr when w is
// nil.
func NewProgressListener(ui *UI, w io.Writer, title string) *ProgressListener {
	if w == nil {
		w = os.Stderr
	}
	return &ProgressListener{ui: ui, w: w, title: title}
}

func (l *ProgressListener) newBar(pages int) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		int64(pages),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(l.title),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionSetWriter(l.w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(l.w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// OnProgress moves the bar to the page being extracted.
func (l *ProgressListener) OnProgress(p extract.Progress) {
	if l.bar == nil {
		l.bar = l.newBar(p.Pages)
	}
	l.page = p.Page
	_ = l.bar.Set(p.Page)
}

// OnError prints the error above the bar.
func (l *ProgressListener) OnError(err *pdferrors.ExtractionError) {
	l.errors++
	if l.bar != nil {
		_ = l.bar.Clear()
	}
	if err.Level == pdferrors.LevelFatal {
		l.ui.Error("%s", err.Message)
		return
	}
	l.ui.Warning("%s", err.Message)
}

// Current returns the page the bar shows, or 0 before the first event.
func (l *ProgressListener) Current() int {
	return l.page
}

// Errors returns the number of errors seen.
func (l *ProgressListener) Errors() int {
	return l.errors
}

// Finish completes the bar. A cancelled run leaves it where it stopped.
func (l *ProgressListener) Finish(completed bool) {
	if l.bar == nil {
		return
	}
	if completed {
		_ = l.bar.Finish()
		return
	}
	_ = l.bar.Exit()
}
