package pdf

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/realbook-extractor/internal/testutil"
)

func TestInventory_ListImages(t *testing.T) {
	path := testutil.WriteImagePDF(t, t.TempDir(), "book.pdf",
		testutil.Checker(40, 30, 5),
		testutil.Gray(12, 18, 0x40),
	)

	result, err := NewInventory(0).ListImages(PDFListImagesRequest{Path: path})
	require.NoError(t, err)

	assert.Equal(t, path, result.Path)
	assert.Equal(t, 2, result.Pages)
	require.Equal(t, 2, result.TotalCount)
	require.Len(t, result.Images, 2)

	assert.Equal(t, 1, result.Images[0].PageNumber)
	assert.Equal(t, 40, result.Images[0].Width)
	assert.Equal(t, 30, result.Images[0].Height)
	assert.NotEmpty(t, result.Images[0].Name)

	assert.Equal(t, 2, result.Images[1].PageNumber)
	assert.Equal(t, 12, result.Images[1].Width)
	assert.Equal(t, 18, result.Images[1].Height)
}

func TestInventory_Errors(t *testing.T) {
	inv := NewInventory(0)

	_, err := inv.ListImages(PDFListImagesRequest{})
	assert.Error(t, err)

	_, err = inv.ListImages(PDFListImagesRequest{Path: filepath.Join(t.TempDir(), "missing.pdf")})
	assert.ErrorContains(t, err, "does not exist")
}

func TestImageFormat(t *testing.T) {
	tests := map[string]string{
		"DCTDecode":      "JPEG",
		"JPXDecode":      "JPEG2000",
		"CCITTFaxDecode": "TIFF/Fax",
		"JBIG2Decode":    "JBIG2",
		"FlateDecode":    "PNG/Deflate",
		"":               "raw",
		"Custom":         "Custom",
	}
	for filter, want := range tests {
		assert.Equal(t, want, imageFormat(filter), filter)
	}
}
