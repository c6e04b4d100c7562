// Package raster holds the decoded bitmap model used between the PDF layer
// and the image writer, together with the 1-bit polarity heuristic.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
)

// PixelFormat classifies the pixel layout of a decoded image.
type PixelFormat int

const (
	PixelFormatOther PixelFormat = iota
	PixelFormat1bppIndexed
)

// String returns a readable name for the pixel format
func (f PixelFormat) String() string {
	switch f {
	case PixelFormat1bppIndexed:
		return "1bpp-indexed"
	default:
		return "other"
	}
}

// Palette is the two-entry color table of a 1-bit indexed image.
type Palette [2]color.Color

// Swapped returns the palette with entries 0 and 1 exchanged
func (p Palette) Swapped() Palette {
	return Palette{p[1], p[0]}
}

// ErrNotIndexed is returned when a palette operation is applied to an image
// that is not 1-bit indexed.
var ErrNotIndexed = errors.New("image is not 1-bit indexed")

// Image is a decoded raster image extracted from a PDF page.
type Image struct {
	Name   string // resource name inside the page, informational
	PageNr int

	img    image.Image
	format PixelFormat
}

// New wraps a decoded image. A *image.Paletted with exactly two palette
// entries is treated as 1-bit indexed; everything else is PixelFormatOther.
func New(img image.Image) *Image {
	format := PixelFormatOther
	if p, ok := img.(*image.Paletted); ok && len(p.Palette) == 2 {
		format = PixelFormat1bppIndexed
	}
	return &Image{img: img, format: format}
}

// NewBilevel builds a 1-bit indexed image of the given size with the given
// palette. All pixels start at index 0.
func NewBilevel(width, height int, palette Palette) *Image {
	p := image.NewPaletted(image.Rect(0, 0, width, height), color.Palette{palette[0], palette[1]})
	return New(p)
}

// Format returns the pixel format of the image
func (i *Image) Format() PixelFormat { return i.format }

// Width returns the image width in pixels
func (i *Image) Width() int { return i.img.Bounds().Dx() }

// Height returns the image height in pixels
func (i *Image) Height() int { return i.img.Bounds().Dy() }

// Palette returns the two palette entries of a 1-bit indexed image. For any
// other format it returns the zero Palette.
func (i *Image) Palette() Palette {
	p, ok := i.paletted()
	if !ok {
		return Palette{}
	}
	return Palette{p.Palette[0], p.Palette[1]}
}

// SetPalette replaces both palette entries. Pixel indices are left untouched.
func (i *Image) SetPalette(pal Palette) error {
	p, ok := i.paletted()
	if !ok {
		return ErrNotIndexed
	}
	p.Palette = color.Palette{pal[0], pal[1]}
	return nil
}

// At returns the resolved color of the pixel at (x, y), relative to the
// image origin.
func (i *Image) At(x, y int) color.Color {
	b := i.img.Bounds()
	return i.img.At(b.Min.X+x, b.Min.Y+y)
}

// countWhite counts opaque white pixels in the w×h region whose top-left
// corner is (x0, 0).
func (i *Image) countWhite(x0, w, h int) int {
	count := 0
	for x := x0; x < x0+w; x++ {
		for y := 0; y < h; y++ {
			if isWhite(i.At(x, y)) {
				count++
			}
		}
	}
	return count
}

func (i *Image) paletted() (*image.Paletted, bool) {
	if i.format != PixelFormat1bppIndexed {
		return nil, false
	}
	p, ok := i.img.(*image.Paletted)
	return p, ok
}

// EncodePNG writes the image as PNG. 1-bit indexed images are written with a
// two-entry PLTE chunk, so a swapped palette is preserved on disk.
func (i *Image) EncodePNG(w io.Writer) error {
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(w, i.img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// SavePNG writes the image to path. A partially written file is removed on
// failure so that a failed attempt leaves no output behind.
func (i *Image) SavePNG(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return i.EncodePNG(f)
}

func isWhite(c color.Color) bool {
	r, g, b, a := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff && a == 0xffff
}
