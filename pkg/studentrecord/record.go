// Package studentrecord tracks uploaded student-record scans through OCR
// and table extraction.
package studentrecord

import (
	"time"

	"github.com/Abraxas-365/saenggibu/pkg/kernel"
	"github.com/Abraxas-365/saenggibu/pkg/pipeline"
)

// Status is the processing state of a ParsedRecord.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// ParsedRecord is one uploaded record file and, once processed, its
// extracted sections.
type ParsedRecord struct {
	ID        kernel.RecordID  `json:"id"`
	FileName  string           `json:"file_name"`
	Status    Status           `json:"status"`
	PageCount int              `json:"page_count"`
	JobID     string           `json:"job_id,omitempty"`
	Error     string           `json:"error,omitempty"`
	Result    *pipeline.Result `json:"result,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func NewParsedRecord(fileName string, now time.Time) ParsedRecord {
	return ParsedRecord{
		ID:        kernel.NewRecordID(),
		FileName:  fileName,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PDFPath is where the uploaded file is stored.
func (r ParsedRecord) PDFPath() string { return "uploads/" + r.ID.String() + ".pdf" }

// OCRPath is where the merged OCR document is stored.
func (r ParsedRecord) OCRPath() string { return "ocr/" + r.ID.String() + ".json" }

func (r *ParsedRecord) MarkProcessing(now time.Time) {
	r.Status = StatusProcessing
	r.Error = ""
	r.UpdatedAt = now
}

func (r *ParsedRecord) Complete(result *pipeline.Result, pageCount int, now time.Time) {
	r.Status = StatusCompleted
	r.Result = result
	r.PageCount = pageCount
	r.Error = ""
	r.UpdatedAt = now
}

func (r *ParsedRecord) Fail(err error, now time.Time) {
	r.Status = StatusFailed
	r.Error = err.Error()
	r.UpdatedAt = now
}

// IsFinished reports whether no more processing is expected.
func (r ParsedRecord) IsFinished() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}
