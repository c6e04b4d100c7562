package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // DCTDecode streams
	_ "image/png"  // Flate streams rendered by pdfcpu
	"io"

	_ "golang.org/x/image/tiff" // CCITT and bilevel streams rendered by pdfcpu
)

// bilevelThreshold splits 16-bit luminance into black and white when a 1-bit
// source was rendered with more bits per pixel.
const bilevelThreshold = 0x8000

// ErrEmptyImage is returned for streams that decode to a zero-sized image.
var ErrEmptyImage = errors.New("image has no pixels")

// Decode decodes an image stream as produced by the PDF layer.
// bitsPerComponent is the BitsPerComponent value of the image XObject. The
// PDF layer renders 1-bit sources to 8-bit PNG or TIFF, so whatever color
// model the codec returns is folded back into a 1-bit indexed image with a
// black/white palette, which makes polarity correction apply.
func Decode(r io.Reader, bitsPerComponent int) (*Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image stream: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, format, ErrEmptyImage
	}

	if bitsPerComponent == 1 {
		return New(toBilevel(img)), format, nil
	}

	return New(img), format, nil
}

// toBilevel thresholds img into a two-entry paletted image. Paletted images
// that already have two entries are returned as they are.
func toBilevel(img image.Image) *image.Paletted {
	if p, ok := img.(*image.Paletted); ok && len(p.Palette) == 2 {
		return p
	}

	b := img.Bounds()
	dst := image.NewPaletted(b, color.Palette{color.Black, color.White})
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			if gray.Y >= bilevelThreshold {
				dst.SetColorIndex(x, y, 1)
			}
		}
	}
	return dst
}
