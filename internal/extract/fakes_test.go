package extract

import (
	"errors"
	"image"
	"image/color"
	"sync"

	pdferrors "github.com/a3tai/realbook-extractor/internal/pdf/errors"
	"github.com/a3tai/realbook-extractor/internal/pdf/wrapper"
	"github.com/a3tai/realbook-extractor/internal/raster"
)

var (
	black = color.Gray{Y: 0}
	white = color.Gray{Y: 0xff}
)

type fakePage struct {
	number int
	images []*raster.Image
	err    error
}

func (p *fakePage) Number() int { return p.number }

func (p *fakePage) Images() ([]*raster.Image, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.images, nil
}

type fakeDocument struct {
	pages []*fakePage

	mu     sync.Mutex
	closed int
}

func newFakeDocument(pages ...*fakePage) *fakeDocument {
	for i, p := range pages {
		p.number = i + 1
	}
	return &fakeDocument{pages: pages}
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) Page(n int) (wrapper.Page, error) {
	if n < 1 || n > len(d.pages) {
		return nil, wrapper.ErrInvalidPage
	}
	return d.pages[n-1], nil
}

func (d *fakeDocument) Version() string { return "1.4" }

func (d *fakeDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed++
	return nil
}

func (d *fakeDocument) closeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

type fakeOpener struct {
	doc *fakeDocument
	err error
}

func (o *fakeOpener) Open(string, wrapper.OpenMode) (wrapper.Document, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.doc, nil
}

// page returns a page holding the given images
func page(images ...*raster.Image) *fakePage {
	return &fakePage{images: images}
}

// brokenPage returns a page whose image list cannot be read
func brokenPage(msg string) *fakePage {
	return &fakePage{err: errors.New(msg)}
}

// invertedScan is a 1-bit image whose pixels all resolve to black until
// its palette is swapped.
func invertedScan() *raster.Image {
	return raster.NewBilevel(60, 60, raster.Palette{black, white})
}

// cleanScan is a 1-bit image that is already white on the corners.
func cleanScan() *raster.Image {
	return raster.NewBilevel(60, 60, raster.Palette{white, black})
}

// recorder collects listener events
type recorder struct {
	progress []Progress
	errors   []string
}

func (r *recorder) listener() ListenerFuncs {
	return ListenerFuncs{
		Progress: func(p Progress) { r.progress = append(r.progress, p) },
		Error:    func(err *pdferrors.ExtractionError) { r.errors = append(r.errors, err.Message) },
	}
}

func testGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}
