package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var blackOnWhite = Palette{color.Black, color.White}

// bilevel builds a 1-bit image where paint reports which pixels use index 1.
func bilevel(t *testing.T, w, h int, paint func(x, y int) bool) *Image {
	t.Helper()
	img := NewBilevel(w, h, blackOnWhite)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if paint(x, y) {
				img.img.(*image.Paletted).SetColorIndex(x, y, 1)
			}
		}
	}
	return img
}

func sameColor(a, b color.Color) bool {
	r1, g1, b1, a1 := a.RGBA()
	r2, g2, b2, a2 := b.RGBA()
	return r1 == r2 && g1 == g2 && b1 == b2 && a1 == a2
}

func TestNew_PixelFormat(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want PixelFormat
	}{
		{
			name: "two entry paletted",
			img:  image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White}),
			want: PixelFormat1bppIndexed,
		},
		{
			name: "four entry paletted",
			img: image.NewPaletted(image.Rect(0, 0, 4, 4),
				color.Palette{color.Black, color.White, color.Gray{0x40}, color.Gray{0x80}}),
			want: PixelFormatOther,
		},
		{
			name: "rgba",
			img:  image.NewRGBA(image.Rect(0, 0, 4, 4)),
			want: PixelFormatOther,
		},
		{
			name: "gray",
			img:  image.NewGray(image.Rect(0, 0, 4, 4)),
			want: PixelFormatOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.img).Format())
		})
	}
}

func TestImage_SetPaletteRequiresIndexed(t *testing.T) {
	img := New(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	assert.ErrorIs(t, img.SetPalette(blackOnWhite), ErrNotIndexed)
	assert.Equal(t, Palette{}, img.Palette())
}

func TestCorrectPolarity(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		paint   func(x, y int) bool
		flipped bool
	}{
		{
			name:    "all black is inverted",
			w:       200,
			h:       300,
			paint:   func(x, y int) bool { return false },
			flipped: true,
		},
		{
			name:    "all white is upright",
			w:       200,
			h:       300,
			paint:   func(x, y int) bool { return true },
			flipped: false,
		},
		{
			name: "torn top-left corner with white top-right",
			w:    200,
			h:    300,
			paint: func(x, y int) bool {
				return x >= 150
			},
			flipped: false,
		},
		{
			name: "both top corners black",
			w:    200,
			h:    300,
			paint: func(x, y int) bool {
				return y >= 50 || (x >= 50 && x < 150)
			},
			flipped: true,
		},
		{
			name:    "narrow black image",
			w:       40,
			h:       40,
			paint:   func(x, y int) bool { return false },
			flipped: true,
		},
		{
			name: "exactly half white is not a majority",
			w:    50,
			h:    50,
			paint: func(x, y int) bool {
				return x < 25
			},
			flipped: true,
		},
		{
			name: "one pixel over half white",
			w:    50,
			h:    50,
			paint: func(x, y int) bool {
				return x < 25 || (x == 25 && y == 0)
			},
			flipped: false,
		},
		{
			name: "white below the sampled region does not count",
			w:    100,
			h:    400,
			paint: func(x, y int) bool {
				return y >= 50
			},
			flipped: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := bilevel(t, tt.w, tt.h, tt.paint)
			before := img.Palette()

			got := CorrectPolarity(img)
			assert.Equal(t, tt.flipped, got)

			after := img.Palette()
			if tt.flipped {
				assert.True(t, sameColor(before[0], after[1]))
				assert.True(t, sameColor(before[1], after[0]))
			} else {
				assert.Equal(t, before, after)
			}
		})
	}
}

func TestCorrectPolarity_SecondPassIsNoop(t *testing.T) {
	img := bilevel(t, 120, 120, func(x, y int) bool { return x < 10 })

	require.True(t, CorrectPolarity(img))
	corrected := img.Palette()

	assert.False(t, CorrectPolarity(img))
	assert.Equal(t, corrected, img.Palette())
}

func TestCorrectPolarity_PaletteWithoutWhiteSwapsEveryTime(t *testing.T) {
	gray := color.Gray{Y: 0x80}
	img := NewBilevel(60, 60, Palette{color.Black, gray})

	require.True(t, CorrectPolarity(img))
	assert.Equal(t, Palette{gray, color.Black}, img.Palette())

	require.True(t, CorrectPolarity(img))
	assert.Equal(t, Palette{color.Black, gray}, img.Palette())
}

func TestCorrectPolarity_PixelDataUntouched(t *testing.T) {
	img := bilevel(t, 60, 60, func(x, y int) bool { return (x+y)%7 == 0 })
	p := img.img.(*image.Paletted)
	pix := append([]uint8(nil), p.Pix...)

	require.True(t, CorrectPolarity(img))
	assert.Equal(t, pix, p.Pix)
}

func TestCorrectPolarity_OtherFormatsPassThrough(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 80, 80))
	for i := range rgba.Pix {
		if i%4 == 3 {
			rgba.Pix[i] = 0xff
		}
	}
	pix := append([]uint8(nil), rgba.Pix...)

	img := New(rgba)
	assert.False(t, CorrectPolarity(img))
	assert.Equal(t, pix, rgba.Pix)

	assert.False(t, CorrectPolarity(nil))
}

func TestPolarityOptions_CornerSize(t *testing.T) {
	// Only the first 10 columns and rows are white.
	paint := func(x, y int) bool { return x < 10 && y < 10 }

	small := PolarityOptions{CornerSize: 10}
	assert.False(t, small.Correct(bilevel(t, 100, 100, paint)))

	assert.True(t, DefaultPolarityOptions().Correct(bilevel(t, 100, 100, paint)))
}

func TestDecode_BilevelFromGray(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 8, 4))
	for i := range gray.Pix {
		gray.Pix[i] = 0xff
	}
	gray.SetGray(0, 0, color.Gray{Y: 0})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, gray))

	img, format, err := Decode(bytes.NewReader(buf.Bytes()), 1)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, PixelFormat1bppIndexed, img.Format())
	assert.Equal(t, 8, img.Width())
	assert.Equal(t, 4, img.Height())
	assert.True(t, sameColor(color.Black, img.At(0, 0)))
	assert.True(t, sameColor(color.White, img.At(1, 0)))

	img, _, err = Decode(bytes.NewReader(buf.Bytes()), 8)
	require.NoError(t, err)
	assert.Equal(t, PixelFormatOther, img.Format())
}

func TestDecode_BilevelFromRGBA(t *testing.T) {
	// 1-bit sources arrive as opaque NRGBA PNGs, which decode as RGBA.
	src := image.NewNRGBA(image.Rect(0, 0, 80, 60))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i+3] = 0xff
	}
	src.Set(79, 0, color.White)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, _, err := Decode(bytes.NewReader(buf.Bytes()), 1)
	require.NoError(t, err)
	require.Equal(t, PixelFormat1bppIndexed, img.Format())
	assert.True(t, sameColor(color.Black, img.At(0, 0)))
	assert.True(t, sameColor(color.White, img.At(79, 0)))

	assert.True(t, CorrectPolarity(img))
	assert.True(t, sameColor(color.White, img.At(0, 0)))
}

func TestDecode_Invalid(t *testing.T) {
	img, _, err := Decode(bytes.NewReader([]byte("not an image")), 8)
	assert.Error(t, err)
	assert.Nil(t, img)
}

func TestSavePNG_PreservesSwappedPalette(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "001.png")

	img := bilevel(t, 60, 60, func(x, y int) bool { return false })
	require.True(t, CorrectPolarity(img))
	require.NoError(t, img.SavePNG(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	decoded, err := png.Decode(f)
	require.NoError(t, err)

	p, ok := decoded.(*image.Paletted)
	require.True(t, ok, "expected a paletted PNG")
	require.Len(t, p.Palette, 2)
	assert.True(t, sameColor(color.White, p.Palette[0]))
	assert.True(t, sameColor(color.White, p.At(0, 0)))
}

func TestSavePNG_FailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing", "001.png")

	img := bilevel(t, 4, 4, func(x, y int) bool { return true })
	assert.Error(t, img.SavePNG(path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
