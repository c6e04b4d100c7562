package extract

import (
	pdferrors "github.com/a3tai/realbook-extractor/internal/pdf/errors"
)

// Progress reports that page Page of Pages is about to be processed.
type Progress struct {
	Page  int
	Pages int
}

// Percent returns the share of pages started, 0 to 100.
func (p Progress) Percent() int {
	if p.Pages <= 0 {
		return 0
	}
	return p.Page * 100 / p.Pages
}

// Listener receives run events in traversal order. Methods are called on
// the goroutine doing the extraction and must not block for long.
type Listener interface {
	OnProgress(Progress)
	OnError(*pdferrors.ExtractionError)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Progress func(Progress)
	Error    func(*pdferrors.ExtractionError)
}

// OnProgress calls f.Progress if set.
func (f ListenerFuncs) OnProgress(p Progress) {
	if f.Progress != nil {
		f.Progress(p)
	}
}

// OnError calls f.Error if set.
func (f ListenerFuncs) OnError(err *pdferrors.ExtractionError) {
	if f.Error != nil {
		f.Error(err)
	}
}

// listeners fans events out to several listeners
type listeners []Listener

func (ls listeners) OnProgress(p Progress) {
	for _, l := range ls {
		l.OnProgress(p)
	}
}

func (ls listeners) OnError(err *pdferrors.ExtractionError) {
	for _, l := range ls {
		l.OnError(err)
	}
}
