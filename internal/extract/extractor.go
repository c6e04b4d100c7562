// Package extract writes the raster images of a PDF to sequentially numbered
// PNG files.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	pdferrors "github.com/a3tai/realbook-extractor/internal/pdf/errors"
	"github.com/a3tai/realbook-extractor/internal/pdf/wrapper"
	"github.com/a3tai/realbook-extractor/internal/raster"
)

// FileNameFormat names output files by image sequence number.
const FileNameFormat = "%03d.png"

// WriteFunc stores img at path.
type WriteFunc func(img *raster.Image, path string) error

// Options configures an Extractor
type Options struct {
	Polarity raster.PolarityOptions
	Write    WriteFunc
	Listener Listener
	Logger   zerolog.Logger
}

// DefaultOptions returns options writing PNG files with the default
// polarity thresholds.
func DefaultOptions() Options {
	return Options{
		Polarity: raster.DefaultPolarityOptions(),
		Write:    savePNG,
		Logger:   zerolog.Nop(),
	}
}

func savePNG(img *raster.Image, path string) error {
	return img.SavePNG(path)
}

// Extractor walks the pages of a document and writes every image it finds.
type Extractor struct {
	polarity raster.PolarityOptions
	write    WriteFunc
	listener Listener
	logger   zerolog.Logger
}

// NewExtractor creates an Extractor. Zero fields in opts fall back to
// DefaultOptions.
func NewExtractor(opts Options) *Extractor {
	def := DefaultOptions()
	if opts.Polarity.CornerSize <= 0 {
		opts.Polarity = def.Polarity
	}
	if opts.Write == nil {
		opts.Write = def.Write
	}
	if opts.Listener == nil {
		opts.Listener = ListenerFuncs{}
	}
	return &Extractor{
		polarity: opts.Polarity,
		write:    opts.Write,
		listener: opts.Listener,
		logger:   opts.Logger,
	}
}

// Extract writes the images of doc into outputFolder, which must exist.
// Images are numbered across the whole document in page order. A page whose
// images cannot be listed, or an image that cannot be decoded or written, is
// recorded in Result.Errors and skipped. Only cancellation of ctx stops the
// run early; files written so far are kept.
func (e *Extractor) Extract(ctx context.Context, doc wrapper.Document, outputFolder string) *Result {
	start := time.Now()
	res := newResult("", outputFolder)
	c := newCounters()
	total := doc.PageCount()

	defer func() {
		res.Pages = c.page
		res.Attempted = c.image - 1
		res.Duration = time.Since(start)
	}()

	for n := 1; n <= total; n++ {
		if ctx.Err() != nil {
			return e.cancelled(res, c)
		}

		c.page++
		e.listener.OnProgress(Progress{Page: c.page, Pages: total})

		images, err := e.pageImages(doc, n)
		if err != nil {
			e.record(res, pdferrors.NewPageError(c.page, err))
			continue
		}

		for _, img := range images {
			if !e.extractImage(ctx, c, img, outputFolder, res) {
				return e.cancelled(res, c)
			}
		}
	}

	res.Success = true
	pageErrors, imageErrors := res.Errors.Count()
	e.logger.Info().
		Int("pages", c.page).
		Int("written", len(res.Written)).
		Int("inverted", res.Inverted).
		Int("page_errors", pageErrors).
		Int("image_errors", imageErrors).
		Msg("extraction finished")
	return res
}

func (e *Extractor) pageImages(doc wrapper.Document, n int) ([]*raster.Image, error) {
	page, err := doc.Page(n)
	if err != nil {
		return nil, err
	}
	return page.Images()
}

// extractImage handles the image numbered c.image. It returns false if the
// run was cancelled before the image was written.
func (e *Extractor) extractImage(ctx context.Context, c *counters, img *raster.Image, outputFolder string, res *Result) (cont bool) {
	defer func() { c.image++ }()
	defer func() {
		if r := recover(); r != nil {
			e.record(res, pdferrors.NewImageError(c.page, c.image, fmt.Errorf("panic: %v", r)))
			cont = true
		}
	}()

	if ctx.Err() != nil {
		return false
	}

	if img == nil {
		e.record(res, pdferrors.NewDecodeError(c.page, c.image))
		return true
	}

	if img.Format() == raster.PixelFormat1bppIndexed && e.polarity.Correct(img) {
		res.Inverted++
		e.logger.Debug().Int("page", c.page).Int("image", c.image).Msg("inverted scan corrected")
	}

	if ctx.Err() != nil {
		return false
	}

	name := fmt.Sprintf(FileNameFormat, c.image)
	if err := e.write(img, filepath.Join(outputFolder, name)); err != nil {
		e.record(res, pdferrors.NewImageError(c.page, c.image, err))
		return true
	}

	res.Written = append(res.Written, name)
	e.logger.Debug().
		Int("page", c.page).
		Str("file", name).
		Stringer("format", img.Format()).
		Msg("image written")
	return true
}

func (e *Extractor) record(res *Result, err *pdferrors.ExtractionError) {
	res.Errors.Add(err)
	e.logger.Warn().
		Err(err.Err).
		Stringer("level", err.Level).
		Int("page", err.Page).
		Int("image", err.Sequence).
		Msg(err.Message)
	e.listener.OnError(err)
}

func (e *Extractor) cancelled(res *Result, c *counters) *Result {
	res.Success = false
	res.Cancelled = true
	e.logger.Info().
		Int("page", c.page).
		Int("written", len(res.Written)).
		Msg("extraction cancelled")
	return res
}
