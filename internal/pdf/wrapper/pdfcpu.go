package wrapper

import (
	"fmt"
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog"

	"github.com/a3tai/realbook-extractor/internal/raster"
)

// newConfiguration returns the pdfcpu configuration used for reading
func newConfiguration(mode int) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = mode
	conf.ValidateLinks = false
	conf.Offline = true
	conf.Cmd = model.EXTRACTIMAGES
	return conf
}

// openPDFCPU reads a document with strict validation. Any failure of the
// read or validation stage is reported as ErrIncompatible.
func openPDFCPU(rs io.ReadSeeker, mode OpenMode, logger zerolog.Logger) (Document, error) {
	conf := newConfiguration(model.ValidationStrict)

	var (
		ctx *model.Context
		err error
	)
	switch mode {
	case ModeImport:
		ctx, err = api.ReadValidateAndOptimize(rs, conf)
	case ModeInspect:
		ctx, err = api.ReadContext(rs, conf)
		if err == nil {
			err = ctx.EnsurePageCount()
		}
	default:
		return nil, &WrapperError{Library: LibraryPDFCPU, Op: "open", Err: fmt.Errorf("unsupported open mode %d", mode)}
	}
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "open",
			Err:     fmt.Errorf("%w: %v", ErrIncompatible, err),
		}
	}

	return &PDFCPUDocument{
		ctx:    ctx,
		mode:   mode,
		logger: logger,
	}, nil
}

// PDFCPUDocument implements Document using pdfcpu
type PDFCPUDocument struct {
	ctx    *model.Context
	mode   OpenMode
	closed bool
	logger zerolog.Logger
}

// PageCount returns the number of pages in the document
func (d *PDFCPUDocument) PageCount() int {
	if d.closed {
		return 0
	}
	return d.ctx.PageCount
}

// Page returns a specific page
func (d *PDFCPUDocument) Page(pageNum int) (Page, error) {
	if d.closed {
		return nil, ErrDocumentClosed
	}
	if pageNum < 1 || pageNum > d.ctx.PageCount {
		return nil, fmt.Errorf("%w: %d (document has %d pages)", ErrInvalidPage, pageNum, d.ctx.PageCount)
	}
	return &PDFCPUPage{doc: d, pageNum: pageNum}, nil
}

// Version returns the effective PDF version
func (d *PDFCPUDocument) Version() string {
	if d.ctx.HeaderVersion == nil {
		return ""
	}
	if d.ctx.RootVersion != nil && *d.ctx.RootVersion > *d.ctx.HeaderVersion {
		return d.ctx.RootVersion.String()
	}
	return d.ctx.HeaderVersion.String()
}

// Close releases the document. Closing twice returns ErrDocumentClosed.
func (d *PDFCPUDocument) Close() error {
	if d.closed {
		return ErrDocumentClosed
	}
	d.closed = true
	d.ctx = nil
	return nil
}

// PDFCPUPage implements Page using pdfcpu
type PDFCPUPage struct {
	doc     *PDFCPUDocument
	pageNum int
}

// Number returns the page number
func (p *PDFCPUPage) Number() int {
	return p.pageNum
}

// Images extracts and decodes the page's image XObjects ordered by object
// number. Each image is extracted on its own: one that cannot be read or
// decoded (a corrupt stream, JPEG 2000, JBIG2) comes back as a nil entry and
// does not affect the others. The page thumbnail is not a resource of the
// page and is never returned.
func (p *PDFCPUPage) Images() (images []*raster.Image, err error) {
	if p.doc.closed {
		return nil, ErrDocumentClosed
	}
	if p.doc.mode != ModeImport {
		return nil, ErrNotImported
	}

	// pdfcpu panics on some malformed resource dictionaries.
	defer func() {
		if r := recover(); r != nil {
			images = nil
			err = &WrapperError{
				Library: LibraryPDFCPU,
				Op:      "extract_images",
				Err:     fmt.Errorf("panic while extracting page %d: %v", p.pageNum, r),
			}
		}
	}()

	if p.doc.ctx.Optimize == nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "extract_images",
			Err:     fmt.Errorf("page %d: image registry is not available", p.pageNum),
		}
	}

	objNrs := pdfcpu.ImageObjNrs(p.doc.ctx, p.pageNum)
	sort.Ints(objNrs)

	images = make([]*raster.Image, 0, len(objNrs))
	for _, objNr := range objNrs {
		images = append(images, p.image(objNr))
	}

	return images, nil
}

// image extracts and decodes a single image XObject, or returns nil.
func (p *PDFCPUPage) image(objNr int) (img *raster.Image) {
	logger := p.doc.logger.With().Int("page", p.pageNum).Int("obj", objNr).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Debug().Interface("panic", r).Msg("image extraction panicked")
			img = nil
		}
	}()

	obj, ok := p.doc.ctx.Optimize.ImageObjects[objNr]
	if !ok || obj == nil || obj.ImageDict == nil {
		logger.Debug().Msg("image object not found")
		return nil
	}

	// Read before extraction, which decodes the stream in place.
	bpc := bitsPerComponent(obj.ImageDict)

	src, err := pdfcpu.ExtractImage(p.doc.ctx, obj.ImageDict, false, obj.ResourceNames[p.pageNum-1], objNr, false)
	if err != nil {
		logger.Debug().Err(err).Msg("image could not be extracted")
		return nil
	}
	if src == nil || src.Reader == nil {
		logger.Debug().Msg("image encoding not supported")
		return nil
	}

	decoded, codec, err := raster.Decode(src, bpc)
	if err != nil {
		logger.Debug().
			Err(err).
			Str("type", src.FileType).
			Msg("image could not be decoded")
		return nil
	}
	decoded.Name = src.Name
	decoded.PageNr = p.pageNum

	logger.Debug().
		Str("codec", codec).
		Int("bpc", bpc).
		Stringer("format", decoded.Format()).
		Int("width", decoded.Width()).
		Int("height", decoded.Height()).
		Msg("decoded image")
	return decoded
}

// bitsPerComponent returns the sample depth declared by an image XObject.
// Stencil masks are always 1 bit; 0 means the entry is missing.
func bitsPerComponent(sd *types.StreamDict) int {
	if mask := sd.BooleanEntry("ImageMask"); mask != nil && *mask {
		return 1
	}
	if bpc := sd.IntEntry("BitsPerComponent"); bpc != nil {
		return *bpc
	}
	return 0
}
