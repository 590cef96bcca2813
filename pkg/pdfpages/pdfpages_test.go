package pdfpages

import (
	"bytes"
	"testing"

	"github.com/Abraxas-365/saenggibu/pkg/errx"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func TestLargest(t *testing.T) {
	images := map[int]model.Image{
		7: {Name: "thumb", Width: 10, Height: 10},
		3: {Name: "scan", Width: 2480, Height: 3508},
		9: {Name: "logo", Width: 200, Height: 80},
	}
	got, ok := Largest(images)
	if !ok || got.Name != "scan" {
		t.Fatalf("Largest = %q, %v", got.Name, ok)
	}

	if _, ok := Largest(nil); ok {
		t.Fatal("empty page must report no image")
	}
}

func TestLargest_TieIsStable(t *testing.T) {
	images := map[int]model.Image{
		5: {Name: "b", Width: 10, Height: 10},
		2: {Name: "a", Width: 10, Height: 10},
	}
	for i := 0; i < 10; i++ {
		if got, _ := Largest(images); got.Name != "a" {
			t.Fatalf("tie resolved to %q", got.Name)
		}
	}
}

func TestImageFormat(t *testing.T) {
	tests := map[string]string{
		"jpeg": "jpg",
		"JPG":  "jpg",
		"":     "jpg",
		"png":  "png",
		"tif":  "tiff",
	}
	for in, want := range tests {
		if got := imageFormat(in); got != want {
			t.Errorf("imageFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtract_RejectsNonPDF(t *testing.T) {
	_, err := Extract(bytes.NewReader([]byte("not a pdf")))

	var xerr *errx.Error
	if !errx.As(err, &xerr) || xerr.Code != ErrInvalidPDF.Code {
		t.Fatalf("expected invalid pdf error, got %v", err)
	}
}

func TestPageScans_OrdersByPage(t *testing.T) {
	raw := []map[int]model.Image{
		{4: {Name: "p2", PageNr: 2, Width: 100, Height: 100}},
		{
			1: {Name: "p1", PageNr: 1, Width: 100, Height: 100},
			6: {Name: "p1-logo", PageNr: 1, Width: 5, Height: 5},
		},
	}

	got, err := PageScans(2, raw)
	if err != nil {
		t.Fatalf("PageScans: %v", err)
	}
	if len(got) != 2 || got[0].Name != "p1" || got[1].Name != "p2" {
		t.Fatalf("PageScans = %+v", got)
	}
}

func TestPageScans_MissingPageIsError(t *testing.T) {
	raw := []map[int]model.Image{
		{1: {Name: "p1", PageNr: 1, Width: 100, Height: 100}},
		{},
		{3: {Name: "p3", PageNr: 3, Width: 100, Height: 100}},
	}

	_, err := PageScans(3, raw)

	var xerr *errx.Error
	if !errx.As(err, &xerr) || xerr.Code != ErrNoPageImages.Code {
		t.Fatalf("expected no page images error, got %v", err)
	}
	if xerr.Details["page"] != 2 {
		t.Errorf("page detail = %v, want 2", xerr.Details["page"])
	}
}

func TestPageScans_EmptyDocument(t *testing.T) {
	if _, err := PageScans(0, nil); err == nil {
		t.Fatal("expected error for a PDF without pages")
	}
}
