package ocrclova

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Abraxas-365/saenggibu/pkg/errx"
	"github.com/Abraxas-365/saenggibu/pkg/ocr"
	"github.com/google/uuid"
)

const (
	apiVersion    = "V2"
	inferSuccess  = "SUCCESS"
	envInvokeURL  = "CLOVA_OCR_INVOKE_URL"
	envSecret     = "CLOVA_OCR_SECRET"
	defaultFormat = "jpg"
)

var supportedFormats = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "pdf": true, "tif": true, "tiff": true,
}

// Provider recognizes page images with CLOVA General OCR.
type Provider struct {
	invokeURL  string
	secret     string
	httpClient *http.Client
	client     *HTTPClient
	maxRetries int
	now        func() time.Time
}

var _ ocr.Recognizer = (*Provider)(nil)

// NewProvider creates a provider. Empty arguments fall back to
// CLOVA_OCR_INVOKE_URL and CLOVA_OCR_SECRET.
func NewProvider(invokeURL, secret string, opts ...ProviderOption) (*Provider, *errx.Error) {
	if invokeURL == "" {
		invokeURL = os.Getenv(envInvokeURL)
	}
	if secret == "" {
		secret = os.Getenv(envSecret)
	}
	if invokeURL == "" || secret == "" {
		return nil, errorRegistry.New(ErrMissingCredentials)
	}

	p := &Provider{
		invokeURL:  invokeURL,
		secret:     secret,
		maxRetries: MaxRetries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.client = NewHTTPClient(p.invokeURL, p.secret, p.httpClient)
	p.client.maxRetries = p.maxRetries

	return p, nil
}

// ============================================================================
// Wire Types
// ============================================================================

type request struct {
	Version              string         `json:"version"`
	RequestID            string         `json:"requestId"`
	Timestamp            int64          `json:"timestamp"`
	Lang                 string         `json:"lang,omitempty"`
	EnableTableDetection bool           `json:"enableTableDetection"`
	Images               []requestImage `json:"images"`
}

type requestImage struct {
	Format string `json:"format"`
	Name   string `json:"name"`
}

type response struct {
	Version   string     `json:"version"`
	RequestID string     `json:"requestId"`
	Timestamp int64      `json:"timestamp"`
	Images    []ocr.Page `json:"images"`
}

// ============================================================================
// Recognizer Implementation
// ============================================================================

// Recognize sends one page image and returns its fields and tables.
func (p *Provider) Recognize(ctx context.Context, image ocr.Image, opts ...ocr.Option) (*ocr.Page, error) {
	options := ocr.ApplyOptions(opts...)

	format := strings.ToLower(strings.TrimPrefix(image.Format, "."))
	if format == "" {
		format = defaultFormat
	}
	if !supportedFormats[format] {
		return nil, errorRegistry.New(ErrUnsupportedFormat).WithDetail("format", image.Format)
	}
	if len(image.Data) == 0 {
		return nil, errorRegistry.NewWithMessage(ErrInvalidInput, "image data is empty")
	}

	name := image.Name
	if name == "" {
		name = "page"
	}

	req := request{
		Version:              apiVersion,
		RequestID:            uuid.NewString(),
		Timestamp:            p.now().UnixMilli(),
		Lang:                 options.Lang,
		EnableTableDetection: options.EnableTables,
		Images:               []requestImage{{Format: format, Name: name}},
	}
	message, err := json.Marshal(req)
	if err != nil {
		return nil, WrapError(err, ErrInvalidInput)
	}

	body, apiErr := p.client.PostImage(ctx, message, name+"."+format, image.Data)
	if apiErr != nil {
		return nil, apiErr.WithDetail("page", name)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, WrapError(err, ErrAPIResponse).
			WithDetail("error", "failed to decode OCR response")
	}
	if len(resp.Images) == 0 {
		return nil, errorRegistry.NewWithMessage(ErrAPIResponse, "response carries no images").
			WithDetail("request_id", resp.RequestID)
	}

	page := resp.Images[0]
	if page.InferResult != "" && page.InferResult != inferSuccess {
		return nil, errorRegistry.New(ErrInferenceFailed).
			WithDetail("page", name).
			WithDetail("infer_result", page.InferResult).
			WithDetail("message", page.Message)
	}
	if page.Name == "" {
		page.Name = name
	}
	return &page, nil
}
