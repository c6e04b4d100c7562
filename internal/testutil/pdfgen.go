// Package testutil builds small PDF fixtures for tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/stretchr/testify/require"
)

// Gray returns a w×h grayscale image filled with v
func Gray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// Checker returns a w×h RGBA image with alternating colored squares
func Checker(w, h, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
			} else {
				img.Set(x, y, color.RGBA{R: 30, G: 30, B: 200, A: 255})
			}
		}
	}
	return img
}

// ImagePDF returns a PDF with one page per image
func ImagePDF(t testing.TB, imgs ...image.Image) []byte {
	t.Helper()

	readers := make([]io.Reader, 0, len(imgs))
	for _, img := range imgs {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))
		readers = append(readers, &buf)
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.Scale = 1
	imp.Pos = types.Center

	var out bytes.Buffer
	require.NoError(t, api.ImportImages(nil, &out, readers, imp, nil))
	return out.Bytes()
}

// WriteImagePDF writes ImagePDF(imgs...) to dir/name and returns the path
func WriteImagePDF(t testing.TB, dir, name string, imgs ...image.Image) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, ImagePDF(t, imgs...), 0o644))
	return path
}
