package recordinfra_test

import (
	"context"
	"testing"
	"time"

	"github.com/Abraxas-365/saenggibu/pkg/errx"
	"github.com/Abraxas-365/saenggibu/pkg/kernel"
	"github.com/Abraxas-365/saenggibu/pkg/pipeline"
	"github.com/Abraxas-365/saenggibu/pkg/studentrecord"
	"github.com/Abraxas-365/saenggibu/pkg/studentrecord/recordinfra"
)

func TestMemoryRecordRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := recordinfra.NewMemoryRecordRepository()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		rec := studentrecord.NewParsedRecord("r.pdf", base.Add(time.Duration(i)*time.Hour))
		rec.Result = pipeline.Empty()
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	page, err := repo.List(ctx, kernel.PaginationOptions{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 2 || page.Page.Total != 5 || page.Page.Pages != 3 {
		t.Fatalf("page = %+v", page.Page)
	}
	if !page.Items[0].CreatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("first item created at %v", page.Items[0].CreatedAt)
	}
	if page.Items[0].Result != nil {
		t.Error("list rows should not carry results")
	}
}

func TestMemoryRecordRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := recordinfra.NewMemoryRecordRepository()

	_, err := repo.FindByID(ctx, "missing")
	var e *errx.Error
	if !errx.As(err, &e) || e.Code != studentrecord.CodeRecordNotFound.Code {
		t.Fatalf("FindByID err = %v", err)
	}
	if err := repo.Delete(ctx, "missing"); err == nil {
		t.Fatal("Delete of missing record should fail")
	}
}
