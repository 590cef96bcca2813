package recordsrv

import (
	"context"
	"encoding/json"
	"io"

	"github.com/Abraxas-365/saenggibu/pkg/kernel"
	"github.com/Abraxas-365/saenggibu/pkg/ocr"
	"github.com/Abraxas-365/saenggibu/pkg/studentrecord"
	"github.com/gofiber/fiber/v2"
)

// RecordHandlers exposes RecordService over HTTP.
type RecordHandlers struct {
	service *RecordService
}

func NewRecordHandlers(service *RecordService) *RecordHandlers {
	return &RecordHandlers{service: service}
}

// RegisterRoutes mounts the record API under /api/v1/records.
func (h *RecordHandlers) RegisterRoutes(router fiber.Router) {
	records := router.Group("/api/v1/records")
	records.Post("/parse", h.ParseOCR)
	records.Post("/", h.Upload)
	records.Get("/", h.List)
	records.Get("/:id", h.Get)
	records.Post("/:id/reparse", h.Reparse)
	records.Delete("/:id", h.Delete)
}

// ParseOCR takes a provider OCR document as the body and returns the
// extracted sections.
func (h *RecordHandlers) ParseOCR(c *fiber.Ctx) error {
	var doc ocr.Document
	if err := json.Unmarshal(c.Body(), &doc); err != nil {
		return studentrecord.ErrInvalidDocument().WithDetail("reason", err.Error())
	}

	result, err := h.service.ParseOCR(requestContext(c), &doc)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// Upload accepts a multipart "file" field holding the record PDF.
func (h *RecordHandlers) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return studentrecord.ErrInvalidUpload().WithDetail("reason", "multipart field 'file' is required")
	}

	f, err := header.Open()
	if err != nil {
		return studentrecord.ErrInvalidUpload().WithDetail("reason", err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return studentrecord.ErrInvalidUpload().WithDetail("reason", err.Error())
	}

	rec, err := h.service.Submit(requestContext(c), header.Filename, data)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(rec)
}

func (h *RecordHandlers) List(c *fiber.Ctx) error {
	page, err := h.service.List(requestContext(c), kernel.PaginationOptions{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", kernel.DefaultPageSize),
	})
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *RecordHandlers) Get(c *fiber.Ctx) error {
	rec, err := h.service.Get(requestContext(c), kernel.RecordID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (h *RecordHandlers) Reparse(c *fiber.Ctx) error {
	rec, err := h.service.Reparse(requestContext(c), kernel.RecordID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (h *RecordHandlers) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(requestContext(c), kernel.RecordID(c.Params("id"))); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// requestContext carries the request id set by the requestid middleware.
func requestContext(c *fiber.Ctx) context.Context {
	id, _ := c.Locals("requestid").(string)
	if id == "" {
		id = c.Get(fiber.HeaderXRequestID)
	}
	return kernel.WithRequestID(c.UserContext(), id)
}
