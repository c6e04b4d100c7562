package pdf

import (
	"fmt"
	"os"
	"sort"

	"github.com/ledongthuc/pdf"
)

// Inventory lists the image XObjects of a PDF without decoding them
type Inventory struct {
	validator *Validator
}

// NewInventory creates a new image inventory with the specified constraints
func NewInventory(maxFileSize int64) *Inventory {
	return &Inventory{
		validator: NewValidator(maxFileSize),
	}
}

// ListImages lists the images referenced by each page's resources, in page
// order then resource name order. Pages whose resources cannot be read are
// skipped.
func (a *Inventory) ListImages(req PDFListImagesRequest) (*PDFListImagesResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(req.Path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", req.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}

	if err := a.validator.ValidateFileInfo(req.Path, fileInfo); err != nil {
		return nil, err
	}

	f, r, err := pdf.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	result := &PDFListImagesResult{
		Path:   req.Path,
		Pages:  r.NumPage(),
		Images: make([]ImageInfo, 0),
	}

	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		result.Images = append(result.Images, a.pageImages(r, pageNum)...)
	}

	result.TotalCount = len(result.Images)
	for _, img := range result.Images {
		if img.Bilevel {
			result.Bilevel++
		}
	}

	return result, nil
}

// pageImages lists the image XObjects of a single page
func (a *Inventory) pageImages(r *pdf.Reader, pageNum int) (images []ImageInfo) {
	// ledongthuc/pdf panics on malformed objects
	defer func() {
		if recover() != nil {
			images = nil
		}
	}()

	page := r.Page(pageNum)
	if page.V.IsNull() {
		return nil
	}

	xObjects := page.Resources().Key("XObject")
	if xObjects.IsNull() || xObjects.Kind() != pdf.Dict {
		return nil
	}

	names := xObjects.Keys()
	sort.Strings(names)

	for _, name := range names {
		obj := xObjects.Key(name)
		if obj.IsNull() || obj.Key("Subtype").Name() != "Image" {
			continue
		}
		if info, ok := imageInfo(obj, pageNum, name); ok {
			images = append(images, info)
		}
	}

	return images
}

// imageInfo reads the dictionary entries of an image XObject
func imageInfo(obj pdf.Value, pageNum int, name string) (ImageInfo, bool) {
	info := ImageInfo{
		PageNumber:       pageNum,
		Name:             name,
		Width:            int(obj.Key("Width").Int64()),
		Height:           int(obj.Key("Height").Int64()),
		BitsPerComponent: 8,
		ColorSpace:       firstName(obj.Key("ColorSpace")),
		Format:           imageFormat(firstName(obj.Key("Filter"))),
	}

	if bpc := obj.Key("BitsPerComponent"); !bpc.IsNull() {
		info.BitsPerComponent = int(bpc.Int64())
	}
	if obj.Key("ImageMask").Bool() {
		info.BitsPerComponent = 1
	}
	info.Bilevel = info.BitsPerComponent == 1

	return info, info.Width > 0 && info.Height > 0
}

// firstName returns v's name, or the name of its first element if v is an
// array such as a filter chain or a parameterized color space
func firstName(v pdf.Value) string {
	switch v.Kind() {
	case pdf.Name:
		return v.Name()
	case pdf.Array:
		if v.Len() > 0 {
			return v.Index(0).Name()
		}
	}
	return ""
}

// imageFormat converts PDF filter names to more readable format names
func imageFormat(filterName string) string {
	switch filterName {
	case "DCTDecode":
		return "JPEG"
	case "JPXDecode":
		return "JPEG2000"
	case "CCITTFaxDecode":
		return "TIFF/Fax"
	case "JBIG2Decode":
		return "JBIG2"
	case "FlateDecode":
		return "PNG/Deflate"
	case "LZWDecode":
		return "LZW"
	case "RunLengthDecode":
		return "RLE"
	case "":
		return "raw"
	default:
		return filterName
	}
}
