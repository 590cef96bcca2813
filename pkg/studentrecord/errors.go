package studentrecord

import (
	"net/http"

	"github.com/Abraxas-365/saenggibu/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("RECORD")

var (
	CodeRecordNotFound   = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Student record not found")
	CodeRecordExists     = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Student record already exists")
	CodeInvalidUpload    = ErrRegistry.Register("INVALID_UPLOAD", errx.TypeValidation, http.StatusBadRequest, "Upload must be a non-empty PDF file")
	CodeInvalidDocument  = ErrRegistry.Register("INVALID_OCR_DOCUMENT", errx.TypeValidation, http.StatusBadRequest, "Body is not a valid OCR document")
	CodeOCRNotAvailable  = ErrRegistry.Register("OCR_NOT_AVAILABLE", errx.TypeBusiness, http.StatusConflict, "No stored OCR output for this record")
	CodeOCRNotConfigured = ErrRegistry.Register("OCR_NOT_CONFIGURED", errx.TypeExternal, http.StatusServiceUnavailable, "OCR provider is not configured")
	CodeProcessing       = ErrRegistry.Register("PROCESSING_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Record processing failed")
)

func ErrRecordNotFound() *errx.Error   { return ErrRegistry.New(CodeRecordNotFound) }
func ErrRecordExists() *errx.Error     { return ErrRegistry.New(CodeRecordExists) }
func ErrInvalidUpload() *errx.Error    { return ErrRegistry.New(CodeInvalidUpload) }
func ErrInvalidDocument() *errx.Error  { return ErrRegistry.New(CodeInvalidDocument) }
func ErrOCRNotAvailable() *errx.Error  { return ErrRegistry.New(CodeOCRNotAvailable) }
func ErrOCRNotConfigured() *errx.Error { return ErrRegistry.New(CodeOCRNotConfigured) }

func ErrProcessing(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeProcessing, cause)
}
