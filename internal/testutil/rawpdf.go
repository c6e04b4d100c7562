package testutil

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// RawImage is an image XObject whose stream bytes are written as given.
type RawImage struct {
	Width            int
	Height           int
	ColorSpace       string // name without the slash, e.g. "DeviceGray"
	BitsPerComponent int
	Filter           string // "" for none, e.g. "FlateDecode"
	Data             []byte
}

// Flate zlib-compresses b for use with the FlateDecode filter
func Flate(t testing.TB, b []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(b)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// BilevelImage returns a w×h 1-bit DeviceGray Flate image with every sample
// set to bit (0 black, 1 white).
func BilevelImage(t testing.TB, w, h int, bit byte) RawImage {
	t.Helper()

	fill := byte(0)
	if bit != 0 {
		fill = 0xff
	}
	rows := bytes.Repeat([]byte{fill}, (w+7)/8*h)
	return RawImage{
		Width:            w,
		Height:           h,
		ColorSpace:       "DeviceGray",
		BitsPerComponent: 1,
		Filter:           "FlateDecode",
		Data:             Flate(t, rows),
	}
}

// GrayImage returns a w×h 8-bit DeviceGray Flate image filled with v.
func GrayImage(t testing.TB, w, h int, v byte) RawImage {
	t.Helper()

	return RawImage{
		Width:            w,
		Height:           h,
		ColorSpace:       "DeviceGray",
		BitsPerComponent: 8,
		Filter:           "FlateDecode",
		Data:             Flate(t, bytes.Repeat([]byte{v}, w*h)),
	}
}

// RawPage describes one page of a hand-built PDF. Images become resources
// Im1, Im2, ... drawn by the page content; Thumb, if set, is attached as the
// page thumbnail.
type RawPage struct {
	Images []RawImage
	Thumb  *RawImage
}

type pdfWriter struct {
	buf     bytes.Buffer
	offsets []int
}

func (w *pdfWriter) object(body string) {
	w.offsets = append(w.offsets, w.buf.Len())
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", len(w.offsets), body)
}

func (w *pdfWriter) stream(dict string, data []byte) {
	w.offsets = append(w.offsets, w.buf.Len())
	fmt.Fprintf(&w.buf, "%d 0 obj\n<< %s /Length %d >>\nstream\n", len(w.offsets), dict, len(data))
	w.buf.Write(data)
	w.buf.WriteString("\nendstream\nendobj\n")
}

func (img RawImage) dict() string {
	d := fmt.Sprintf("/Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /%s /BitsPerComponent %d",
		img.Width, img.Height, img.ColorSpace, img.BitsPerComponent)
	if img.Filter != "" {
		d += " /Filter /" + img.Filter
	}
	return d
}

// RawPDF assembles a PDF 1.4 file object by object with an exact
// cross-reference table.
func RawPDF(t testing.TB, pages ...RawPage) []byte {
	t.Helper()
	require.NotEmpty(t, pages)

	// Object numbers: 1 catalog, 2 page tree, then per page: page, content,
	// images, thumbnail.
	next := 3
	pageNrs := make([]int, len(pages))
	for i, p := range pages {
		pageNrs[i] = next
		next += 2 + len(p.Images)
		if p.Thumb != nil {
			next++
		}
	}

	w := &pdfWriter{}
	w.buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	w.object("<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(pages))
	for i, nr := range pageNrs {
		kids[i] = fmt.Sprintf("%d 0 R", nr)
	}
	w.object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))

	for i, p := range pages {
		nr := pageNrs[i]
		contentNr := nr + 1
		imageNr := nr + 2

		var xobjects, content strings.Builder
		for j, img := range p.Images {
			fmt.Fprintf(&xobjects, "/Im%d %d 0 R ", j+1, imageNr+j)
			fmt.Fprintf(&content, "q %d 0 0 %d 0 0 cm /Im%d Do Q\n", img.Width, img.Height, j+1)
		}

		page := fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /XObject << %s>> >> /Contents %d 0 R",
			xobjects.String(), contentNr)
		if p.Thumb != nil {
			page += fmt.Sprintf(" /Thumb %d 0 R", imageNr+len(p.Images))
		}
		w.object(page + " >>")

		w.stream("", []byte(content.String()))
		for _, img := range p.Images {
			w.stream(img.dict(), img.Data)
		}
		if p.Thumb != nil {
			w.stream(p.Thumb.dict(), p.Thumb.Data)
		}
	}

	xref := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n0000000000 65535 f\r\n", len(w.offsets)+1)
	for _, off := range w.offsets {
		fmt.Fprintf(&w.buf, "%010d 00000 n\r\n", off)
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(w.offsets)+1, xref)

	return w.buf.Bytes()
}

// WriteRawPDF writes RawPDF(pages...) to dir/name and returns the path
func WriteRawPDF(t testing.TB, dir, name string, pages ...RawPage) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, RawPDF(t, pages...), 0o644))
	return path
}
