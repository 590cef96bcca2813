package recordsrv

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Abraxas-365/saenggibu/pkg/errx"
	"github.com/Abraxas-365/saenggibu/pkg/fsx"
	"github.com/Abraxas-365/saenggibu/pkg/jobx"
	"github.com/Abraxas-365/saenggibu/pkg/kernel"
	"github.com/Abraxas-365/saenggibu/pkg/logx"
	"github.com/Abraxas-365/saenggibu/pkg/ocr"
	"github.com/Abraxas-365/saenggibu/pkg/pdfpages"
	"github.com/Abraxas-365/saenggibu/pkg/pipeline"
	"github.com/Abraxas-365/saenggibu/pkg/studentrecord"
)

// ParseJobType is the job that OCRs and parses an uploaded record.
const ParseJobType = "record.parse"

// ParseJobPayload is the payload of a ParseJobType job.
type ParseJobPayload struct {
	RecordID  kernel.RecordID `json:"record_id"`
	RequestID string          `json:"request_id,omitempty"`
}

var pdfMagic = []byte("%PDF-")

// PageExtractor splits an uploaded file into page images.
type PageExtractor func(rs io.ReadSeeker) ([]ocr.Image, error)

type RecordService struct {
	repo       studentrecord.Repository
	files      fsx.FileSystem
	jobs       jobx.JobEnqueuer
	recognizer ocr.Recognizer

	extractPages PageExtractor
	workers      int
	ocrOpts      []ocr.Option
	queue        string
	now          func() time.Time
}

type Option func(*RecordService)

func WithPageExtractor(fn PageExtractor) Option {
	return func(s *RecordService) { s.extractPages = fn }
}

// WithOCRWorkers bounds concurrent OCR calls per record.
func WithOCRWorkers(n int) Option {
	return func(s *RecordService) { s.workers = n }
}

func WithOCROptions(opts ...ocr.Option) Option {
	return func(s *RecordService) { s.ocrOpts = append(s.ocrOpts, opts...) }
}

// WithQueue sets the queue parse jobs are sent to.
func WithQueue(queue string) Option {
	return func(s *RecordService) { s.queue = queue }
}

func WithClock(now func() time.Time) Option {
	return func(s *RecordService) { s.now = now }
}

// NewRecordService wires the service. recognizer may be nil, in which case
// only OCR JSON parsing and reparsing are available.
func NewRecordService(
	repo studentrecord.Repository,
	files fsx.FileSystem,
	jobs jobx.JobEnqueuer,
	recognizer ocr.Recognizer,
	opts ...Option,
) *RecordService {
	s := &RecordService{
		repo:         repo,
		files:        files,
		jobs:         jobs,
		recognizer:   recognizer,
		extractPages: pdfpages.Extract,
		workers:      ocr.DefaultWorkers,
		queue:        jobx.DefaultQueue,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RegisterJobs binds the parse job handler to the worker client.
func (s *RecordService) RegisterJobs(client *jobx.Client) {
	client.Register(ParseJobType, s.HandleParseJob)
}

// ParseOCR runs the extraction pipeline over an OCR document synchronously.
func (s *RecordService) ParseOCR(ctx context.Context, doc *ocr.Document) (*pipeline.Result, error) {
	if doc == nil {
		return nil, studentrecord.ErrInvalidDocument()
	}
	return pipeline.Run(ctx, doc)
}

// Submit stores an uploaded PDF, records it as pending and queues the
// parse job.
func (s *RecordService) Submit(ctx context.Context, fileName string, data []byte) (*studentrecord.ParsedRecord, error) {
	if err := validateUpload(fileName, data); err != nil {
		return nil, err
	}
	if s.recognizer == nil {
		return nil, studentrecord.ErrOCRNotConfigured()
	}

	rec := studentrecord.NewParsedRecord(filepath.Base(fileName), s.now())
	log := logx.WithFields(logx.Fields{
		"record_id":  rec.ID,
		"file_name":  rec.FileName,
		"request_id": kernel.RequestID(ctx),
	})

	if err := s.files.WriteFile(ctx, rec.PDFPath(), data); err != nil {
		return nil, errx.Wrap(err, "failed to store upload", errx.TypeInternal).
			WithDetail("record_id", rec.ID.String())
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}

	job, err := jobx.NewJob(ParseJobType, ParseJobPayload{RecordID: rec.ID, RequestID: kernel.RequestID(ctx)})
	if err != nil {
		return nil, err
	}
	job.Queue = s.queue

	jobID, err := s.jobs.Enqueue(ctx, job)
	if err != nil {
		log.WithError(err).Error("failed to enqueue parse job")
		rec.Fail(err, s.now())
		if saveErr := s.repo.Save(ctx, rec); saveErr != nil {
			log.WithError(saveErr).Warn("failed to mark record as failed")
		}
		return nil, err
	}

	rec.JobID = jobID
	rec.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}

	log.WithField("job_id", jobID).Info("record queued for parsing")
	return &rec, nil
}

// HandleParseJob OCRs every page of the stored PDF, keeps the merged OCR
// output next to it and saves the extraction result. Errors mark the
// record failed and are returned so the job is retried.
func (s *RecordService) HandleParseJob(ctx context.Context, job *jobx.JobInfo) (any, error) {
	var payload ParseJobPayload
	if err := job.Decode(&payload); err != nil {
		return nil, err
	}

	rec, err := s.repo.FindByID(ctx, payload.RecordID)
	if err != nil {
		return nil, err
	}

	log := logx.WithFields(logx.Fields{
		"record_id":  rec.ID,
		"job_id":     job.ID,
		"attempt":    job.Attempts,
		"request_id": payload.RequestID,
	})

	rec.MarkProcessing(s.now())
	if err := s.repo.Save(ctx, *rec); err != nil {
		return nil, err
	}

	doc, pages, err := s.recognize(ctx, *rec)
	if err != nil {
		return nil, s.fail(ctx, rec, err, log)
	}

	result, err := pipeline.Run(ctx, doc)
	if err != nil {
		return nil, s.fail(ctx, rec, err, log)
	}

	rec.Complete(result, pages, s.now())
	if err := s.repo.Save(ctx, *rec); err != nil {
		return nil, err
	}

	log.WithFields(logx.Fields{
		"pages":           pages,
		"detail_subjects": len(result.DetailAbility),
		"grade_years":     len(result.GradeRecords),
	}).Info("record parsed")

	return map[string]any{"record_id": rec.ID, "pages": pages}, nil
}

func (s *RecordService) recognize(ctx context.Context, rec studentrecord.ParsedRecord) (*ocr.Document, int, error) {
	if s.recognizer == nil {
		return nil, 0, studentrecord.ErrOCRNotConfigured()
	}

	data, err := s.files.ReadFile(ctx, rec.PDFPath())
	if err != nil {
		return nil, 0, errx.Wrap(err, "failed to read upload", errx.TypeInternal)
	}

	images, err := s.extractPages(bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}

	opts := append([]ocr.Option{ocr.WithTables()}, s.ocrOpts...)
	doc, err := ocr.RecognizeAll(ctx, s.recognizer, images, s.workers, opts...)
	if err != nil {
		return nil, 0, err
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, 0, errx.Wrap(err, "failed to encode OCR output", errx.TypeInternal)
	}
	if err := s.files.WriteFile(ctx, rec.OCRPath(), raw); err != nil {
		return nil, 0, errx.Wrap(err, "failed to store OCR output", errx.TypeInternal)
	}
	return doc, len(images), nil
}

func (s *RecordService) fail(ctx context.Context, rec *studentrecord.ParsedRecord, cause error, log *logx.Entry) error {
	log.WithError(cause).Warn("record parsing failed")
	rec.Fail(cause, s.now())
	if err := s.repo.Save(ctx, *rec); err != nil {
		log.WithError(err).Error("failed to mark record as failed")
	}
	return studentrecord.ErrProcessing(cause).WithDetail("record_id", rec.ID.String())
}

// Reparse re-runs extraction from the stored OCR output without calling the
// provider again.
func (s *RecordService) Reparse(ctx context.Context, id kernel.RecordID) (*studentrecord.ParsedRecord, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	raw, err := s.files.ReadFile(ctx, rec.OCRPath())
	if err != nil {
		if errx.Is(err, fsx.ErrNotFound) {
			return nil, studentrecord.ErrOCRNotAvailable().WithDetail("record_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to read OCR output", errx.TypeInternal)
	}

	var doc ocr.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, studentrecord.ErrInvalidDocument().WithDetail("record_id", id.String())
	}

	result, err := pipeline.Run(ctx, &doc)
	if err != nil {
		return nil, err
	}

	rec.Complete(result, len(doc.Images), s.now())
	if err := s.repo.Save(ctx, *rec); err != nil {
		return nil, err
	}

	logx.WithFields(logx.Fields{
		"record_id":  rec.ID,
		"request_id": kernel.RequestID(ctx),
	}).Info("record reparsed")
	return rec, nil
}

func (s *RecordService) Get(ctx context.Context, id kernel.RecordID) (*studentrecord.ParsedRecord, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *RecordService) List(ctx context.Context, opts kernel.PaginationOptions) (kernel.Paginated[studentrecord.ParsedRecord], error) {
	return s.repo.List(ctx, opts.Normalize())
}

// Delete removes the record and its stored files.
func (s *RecordService) Delete(ctx context.Context, id kernel.RecordID) error {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	for _, p := range []string{rec.PDFPath(), rec.OCRPath()} {
		if err := s.files.DeleteFile(ctx, p); err != nil && !errx.Is(err, fsx.ErrNotFound) {
			return errx.Wrap(err, "failed to delete stored file", errx.TypeInternal).WithDetail("path", p)
		}
	}
	return s.repo.Delete(ctx, id)
}

func validateUpload(fileName string, data []byte) error {
	if len(data) == 0 {
		return studentrecord.ErrInvalidUpload().WithDetail("reason", "empty file")
	}
	if ext := strings.ToLower(filepath.Ext(fileName)); ext != ".pdf" {
		return studentrecord.ErrInvalidUpload().WithDetail("reason", "extension must be .pdf")
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return studentrecord.ErrInvalidUpload().WithDetail("reason", "missing PDF header")
	}
	return nil
}
