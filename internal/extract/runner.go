package extract

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	pdferrors "github.com/a3tai/realbook-extractor/internal/pdf/errors"
	"github.com/a3tai/realbook-extractor/internal/pdf/wrapper"
)

// Opener opens a PDF document.
type Opener interface {
	Open(path string, mode wrapper.OpenMode) (wrapper.Document, error)
}

// Runner runs extractions in the background.
type Runner struct {
	opener    Opener
	opts      Options
	listeners listeners
	logger    zerolog.Logger
}

// NewRunner creates a Runner. Events of every run are delivered to the
// given listeners in addition to opts.Listener.
func NewRunner(opener Opener, opts Options, ls ...Listener) *Runner {
	all := make(listeners, 0, len(ls)+1)
	if opts.Listener != nil {
		all = append(all, opts.Listener)
	}
	all = append(all, ls...)

	return &Runner{
		opener:    opener,
		opts:      opts,
		listeners: all,
		logger:    opts.Logger,
	}
}

// Job is a running extraction.
type Job struct {
	ID string

	cancel context.CancelFunc
	done   chan struct{}
	result *Result
	err    error
}

// Start launches an extraction of pdfPath into outputFolder on a new
// goroutine and returns immediately.
func (r *Runner) Start(ctx context.Context, outputFolder, pdfPath string) *Job {
	ctx, cancel := context.WithCancel(ctx)
	job := &Job{
		ID:     uuid.NewString(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(job.done)
		defer cancel()
		job.result, job.err = r.run(ctx, job.ID, outputFolder, pdfPath)
	}()

	return job
}

// Run extracts pdfPath into outputFolder and blocks until done.
func (r *Runner) Run(ctx context.Context, outputFolder, pdfPath string) (*Result, error) {
	return r.run(ctx, uuid.NewString(), outputFolder, pdfPath)
}

func (r *Runner) run(ctx context.Context, runID, outputFolder, pdfPath string) (res *Result, err error) {
	start := time.Now()
	logger := r.logger.With().Str("run_id", runID).Str("pdf", pdfPath).Logger()

	fail := func(message string, cause error) (*Result, error) {
		ferr := pdferrors.NewFatalError(message, cause)
		res := newResult(pdfPath, outputFolder)
		res.RunID = runID
		res.Errors.Add(ferr)
		res.Duration = time.Since(start)
		logger.Error().Err(cause).Msg(message)
		r.listeners.OnError(ferr)
		return res, ferr
	}

	defer func() {
		if rec := recover(); rec != nil {
			res, err = fail("Extraction aborted", fmt.Errorf("panic: %v", rec))
		}
	}()

	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		return fail("Couldn't create output folder", err)
	}

	doc, err := r.opener.Open(pdfPath, wrapper.ModeImport)
	if err != nil {
		return fail("Couldn't open PDF", err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("close document")
		}
	}()

	logger.Info().
		Str("output", outputFolder).
		Int("pages", doc.PageCount()).
		Str("version", doc.Version()).
		Msg("extraction started")

	opts := r.opts
	opts.Listener = r.listeners
	opts.Logger = logger
	res = NewExtractor(opts).Extract(ctx, doc, outputFolder)

	res.RunID = runID
	res.PDF = pdfPath
	res.Errors.FilePath = pdfPath
	res.Duration = time.Since(start)
	return res, nil
}

// Wait blocks until the job finishes. It reports whether the run completed;
// a cancelled run returns false and a nil error, a fatal failure returns
// false and the error.
func (j *Job) Wait() (bool, error) {
	<-j.done
	return j.result.Success, j.err
}

// Done is closed when the job finishes.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Cancel asks the job to stop before its next image. It does not wait.
func (j *Job) Cancel() {
	j.cancel()
}

// Result returns the job's result, or nil while it is still running.
func (j *Job) Result() *Result {
	select {
	case <-j.done:
		return j.result
	default:
		return nil
	}
}
