// Package pdfpages pulls the page scans out of an image-only PDF so each
// page can be sent to OCR.
package pdfpages

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Abraxas-365/saenggibu/pkg/errx"
	"github.com/Abraxas-365/saenggibu/pkg/ocr"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	errorRegistry = errx.NewRegistry("PDF")

	ErrInvalidPDF = errorRegistry.Register(
		"INVALID_PDF",
		errx.TypeValidation,
		http.StatusBadRequest,
		"File is not a readable PDF",
	)

	ErrNoPageImages = errorRegistry.Register(
		"NO_PAGE_IMAGES",
		errx.TypeBusiness,
		http.StatusUnprocessableEntity,
		"A PDF page carries no scanned image",
	)
)

// PageCount returns the number of pages in the PDF.
func PageCount(rs io.ReadSeeker) (int, error) {
	n, err := api.PageCount(rs, model.NewDefaultConfiguration())
	if err != nil {
		return 0, errorRegistry.NewWithCause(ErrInvalidPDF, err)
	}
	return n, nil
}

// Extract returns one image per page, in page order. Scanned records embed
// a single full-page raster per page; when a page holds several images the
// largest is taken. A page without any image is an error, since dropping it
// would shift the index of every later page.
func Extract(rs io.ReadSeeker) ([]ocr.Image, error) {
	conf := model.NewDefaultConfiguration()
	count, err := api.PageCount(rs, conf)
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrInvalidPDF, err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, errorRegistry.NewWithCause(ErrInvalidPDF, err)
	}

	raw, err := api.ExtractImagesRaw(rs, nil, conf)
	if err != nil {
		return nil, errorRegistry.NewWithCause(ErrInvalidPDF, err)
	}

	scans, err := PageScans(count, raw)
	if err != nil {
		return nil, err
	}

	out := make([]ocr.Image, 0, len(scans))
	for i, img := range scans {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, img); err != nil {
			return nil, errorRegistry.NewWithCause(ErrInvalidPDF, err).
				WithDetail("page", i+1)
		}
		out = append(out, ocr.Image{
			Name:   fmt.Sprintf("page_%d", i+1),
			Format: imageFormat(img.FileType),
			Data:   buf.Bytes(),
		})
	}
	return out, nil
}

// PageScans picks the largest image of every page 1..count, in page order.
// images holds the per-page image maps in any order.
func PageScans(count int, images []map[int]model.Image) ([]model.Image, error) {
	if count == 0 {
		return nil, errorRegistry.New(ErrNoPageImages)
	}

	byPage := make(map[int]model.Image, len(images))
	for _, page := range images {
		if img, ok := Largest(page); ok {
			byPage[img.PageNr] = img
		}
	}

	out := make([]model.Image, 0, count)
	for nr := 1; nr <= count; nr++ {
		img, ok := byPage[nr]
		if !ok {
			return nil, errorRegistry.New(ErrNoPageImages).WithDetail("page", nr)
		}
		out = append(out, img)
	}
	return out, nil
}

// Largest picks the image with the biggest pixel area.
func Largest(images map[int]model.Image) (model.Image, bool) {
	var (
		best  model.Image
		area  = -1
		bestN = -1
	)
	for objNr, img := range images {
		a := img.Width * img.Height
		// Ties go to the lowest object number so the choice is stable.
		if a > area || (a == area && objNr < bestN) {
			best, area, bestN = img, a, objNr
		}
	}
	return best, area >= 0
}

func imageFormat(fileType string) string {
	switch ft := strings.ToLower(fileType); ft {
	case "jpeg", "jpg", "":
		return "jpg"
	case "tif":
		return "tiff"
	default:
		return ft
	}
}
