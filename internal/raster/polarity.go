package raster

// DefaultCornerSize is the edge length, in pixels, of the square sampled in
// each top corner.
const DefaultCornerSize = 50

// PolarityOptions tunes the inverted-scan heuristic.
type PolarityOptions struct {
	CornerSize int
}

// DefaultPolarityOptions returns the thresholds the extractor ships with
func DefaultPolarityOptions() PolarityOptions {
	return PolarityOptions{CornerSize: DefaultCornerSize}
}

// CorrectPolarity applies the default heuristic to img.
func CorrectPolarity(img *Image) bool {
	return DefaultPolarityOptions().Correct(img)
}

// Correct swaps the palette of a 1-bit indexed image when its top corners
// look inverted, and reports whether it did.
//
// Scanned sheet music is mostly white paper, so a majority-black corner is
// taken as a polarity artifact. The top-left corner is sampled first; the
// top-right corner is consulted only when the first sample is not majority
// white, which covers scans of torn pages. This is a best-effort guess and
// never fails. Images in any other pixel format are left untouched.
//
// Only opaque pure white counts as white. A two-color palette without such
// an entry never looks correctly oriented, so every call swaps it again and
// repeated calls alternate between the two orders.
func (o PolarityOptions) Correct(img *Image) bool {
	if img == nil || img.Format() != PixelFormat1bppIndexed {
		return false
	}

	size := o.CornerSize
	if size <= 0 {
		size = DefaultCornerSize
	}

	w := min(size, img.Width())
	h := min(size, img.Height())
	if w == 0 || h == 0 {
		return false
	}
	half := w * h / 2

	if img.countWhite(0, w, h) > half {
		return false
	}

	// Narrow images have a single corner region, already sampled above.
	if img.Width() > size && img.countWhite(img.Width()-w, w, h) > half {
		return false
	}

	if err := img.SetPalette(img.Palette().Swapped()); err != nil {
		return false
	}
	return true
}
