package recordsrv_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/saenggibu/pkg/errx"
	"github.com/Abraxas-365/saenggibu/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/saenggibu/pkg/jobx"
	"github.com/Abraxas-365/saenggibu/pkg/jobx/jobxmem"
	"github.com/Abraxas-365/saenggibu/pkg/kernel"
	"github.com/Abraxas-365/saenggibu/pkg/ocr"
	"github.com/Abraxas-365/saenggibu/pkg/ocr/ocrtest"
	"github.com/Abraxas-365/saenggibu/pkg/studentrecord"
	"github.com/Abraxas-365/saenggibu/pkg/studentrecord/recordinfra"
	"github.com/Abraxas-365/saenggibu/pkg/studentrecord/recordsrv"
)

var samplePDF = []byte("%PDF-1.4\n% scanned record\n")

// fakeRecognizer serves canned pages by image name.
type fakeRecognizer struct {
	mu    sync.Mutex
	pages map[string]ocr.Page
	err   error
	calls int
}

func (f *fakeRecognizer) Recognize(ctx context.Context, img ocr.Image, opts ...ocr.Option) (*ocr.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if !ocr.ApplyOptions(opts...).EnableTables {
		return nil, errors.New("table detection not requested")
	}
	p := f.pages[img.Name]
	p.Name = img.Name
	return &p, nil
}

func twoPages(rs io.ReadSeeker) ([]ocr.Image, error) {
	return []ocr.Image{
		{Name: "page_1", Format: "jpg", Data: []byte{1}},
		{Name: "page_2", Format: "jpg", Data: []byte{2}},
	}, nil
}

func recordPages() map[string]ocr.Page {
	filler := strings.Repeat("실험 설계", 10)
	return map[string]ocr.Page{
		"page_1": {Tables: []ocr.Table{
			ocrtest.Grid(20,
				[]string{"학기", "교과", "과목", "단위수", "원점수", "석차등급"},
				[]string{"1", "국어", "국어", "4", "90", "2"},
				[]string{"1", "과학", "화학 Ⅰ", "3", "88", "1"},
			),
		}},
		"page_2": {Tables: []ocr.Table{
			ocrtest.Grid(100,
				[]string{"과목", "세부능력 및 특기사항"},
				[]string{"화학", "화학Ⅰ: " + filler},
			),
		}},
	}
}

type fixture struct {
	service    *recordsrv.RecordService
	repo       *recordinfra.MemoryRecordRepository
	client     *jobx.Client
	recognizer *fakeRecognizer
	files      *fsxlocal.LocalFileSystem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	files, err := fsxlocal.NewLocalFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("local fs: %v", err)
	}
	repo := recordinfra.NewMemoryRecordRepository()
	client := jobx.NewClient(jobxmem.NewMemoryQueue(),
		jobx.WithDequeueTimeout(10*time.Millisecond),
		jobx.WithDefaultRetryDelay(time.Hour),
	)
	recognizer := &fakeRecognizer{pages: recordPages()}

	service := recordsrv.NewRecordService(repo, files, client, recognizer,
		recordsrv.WithPageExtractor(twoPages),
		recordsrv.WithOCRWorkers(2),
	)
	service.RegisterJobs(client)

	return &fixture{service: service, repo: repo, client: client, recognizer: recognizer, files: files}
}

func (f *fixture) runJob(t *testing.T) {
	t.Helper()
	found, err := f.client.RunOnce(context.Background())
	if err != nil || !found {
		t.Fatalf("RunOnce = %v, %v", found, err)
	}
}

func errCode(err error) string {
	var e *errx.Error
	if errx.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestSubmit_ParsesInBackground(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.service.Submit(ctx, "student.PDF", samplePDF)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rec.Status != studentrecord.StatusPending || rec.JobID == "" {
		t.Fatalf("submitted record = %+v", rec)
	}
	if ok, _ := f.files.Exists(ctx, rec.PDFPath()); !ok {
		t.Fatal("upload was not stored")
	}

	f.runJob(t)

	got, err := f.service.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != studentrecord.StatusCompleted || got.PageCount != 2 {
		t.Fatalf("parsed record = %+v", got)
	}
	if got.Result == nil || len(got.Result.GradeRecords) != 1 {
		t.Fatalf("result = %+v", got.Result)
	}
	if len(got.Result.DetailAbility) != 1 || got.Result.DetailAbility[0].Subject != "화학I" {
		t.Errorf("detail ability = %+v", got.Result.DetailAbility)
	}
	if ok, _ := f.files.Exists(ctx, rec.OCRPath()); !ok {
		t.Error("OCR output was not stored")
	}

	job, err := f.client.GetJob(ctx, rec.JobID)
	if err != nil || job.Status != jobx.JobStatusCompleted {
		t.Errorf("job = %+v, %v", job, err)
	}
}

func TestSubmit_RejectsNonPDF(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"empty", "a.pdf", nil},
		{"extension", "a.png", samplePDF},
		{"header", "a.pdf", []byte("PK\x03\x04")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Submit(context.Background(), tt.file, tt.data)
			if errCode(err) != studentrecord.CodeInvalidUpload.Code {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestSubmit_WithoutRecognizer(t *testing.T) {
	files, _ := fsxlocal.NewLocalFileSystem(t.TempDir())
	service := recordsrv.NewRecordService(recordinfra.NewMemoryRecordRepository(), files,
		jobx.NewClient(jobxmem.NewMemoryQueue()), nil)

	_, err := service.Submit(context.Background(), "a.pdf", samplePDF)
	if errCode(err) != studentrecord.CodeOCRNotConfigured.Code {
		t.Fatalf("err = %v", err)
	}
}

func TestHandleParseJob_FailureMarksRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.recognizer.err = errors.New("provider down")

	rec, err := f.service.Submit(ctx, "a.pdf", samplePDF)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	f.runJob(t)

	got, _ := f.service.Get(ctx, rec.ID)
	if got.Status != studentrecord.StatusFailed || !strings.Contains(got.Error, "provider down") {
		t.Fatalf("record = %+v", got)
	}
	job, _ := f.client.GetJob(ctx, rec.JobID)
	if job.Status != jobx.JobStatusRetrying {
		t.Errorf("job status = %s", job.Status)
	}
}

func TestReparse_UsesStoredOCR(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, err := f.service.Submit(ctx, "a.pdf", samplePDF)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := f.service.Reparse(ctx, rec.ID); errCode(err) != studentrecord.CodeOCRNotAvailable.Code {
		t.Fatalf("reparse before OCR: %v", err)
	}

	f.runJob(t)
	calls := f.recognizer.calls

	again, err := f.service.Reparse(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Reparse: %v", err)
	}
	if again.Status != studentrecord.StatusCompleted || len(again.Result.GradeRecords) != 1 {
		t.Errorf("reparsed = %+v", again)
	}
	if f.recognizer.calls != calls {
		t.Error("reparse must not call the OCR provider")
	}
}

func TestDelete_RemovesFiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	rec, _ := f.service.Submit(ctx, "a.pdf", samplePDF)
	f.runJob(t)

	if err := f.service.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok, _ := f.files.Exists(ctx, rec.PDFPath()); ok {
		t.Error("upload still stored")
	}
	if _, err := f.service.Get(ctx, rec.ID); errCode(err) != studentrecord.CodeRecordNotFound.Code {
		t.Errorf("Get after delete: %v", err)
	}
}

func TestList_Paginates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for range 3 {
		if _, err := f.service.Submit(ctx, "a.pdf", samplePDF); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	page, err := f.service.List(ctx, kernel.PaginationOptions{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 2 || page.Page.Total != 3 || !page.HasNext() {
		t.Errorf("page = %+v", page.Page)
	}
}
