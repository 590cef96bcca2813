package ocrclova

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/Abraxas-365/saenggibu/pkg/errx"
)

const (
	DefaultTimeout = 2 * time.Minute
	MaxRetries     = 3

	secretHeader = "X-OCR-SECRET"
)

// HTTPClient sends multipart OCR requests to a CLOVA invoke URL.
type HTTPClient struct {
	invokeURL  string
	secret     string
	httpClient *http.Client
	maxRetries int
}

// NewHTTPClient creates a client for the given invoke URL.
func NewHTTPClient(invokeURL, secret string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: DefaultTimeout,
		}
	}

	return &HTTPClient{
		invokeURL:  invokeURL,
		secret:     secret,
		httpClient: httpClient,
		maxRetries: MaxRetries,
	}
}

// PostImage sends the JSON message and the image bytes as a multipart form.
func (c *HTTPClient) PostImage(ctx context.Context, message []byte, fileName string, image []byte) ([]byte, *errx.Error) {
	body, contentType, err := encodeMultipart(message, fileName, image)
	if err != nil {
		return nil, WrapError(err, ErrInvalidInput).
			WithDetail("error", "failed to encode multipart body")
	}

	var lastErr *errx.Error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, WrapError(ctx.Err(), ErrAPIRequest).
					WithDetail("error", "context cancelled during retry")
			}
		}

		resp, err := c.doRequest(ctx, body, contentType)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !c.shouldRetry(err) {
			break
		}
	}

	return nil, lastErr
}

func encodeMultipart(message []byte, fileName string, image []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("message", string(message)); err != nil {
		return nil, "", err
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (c *HTTPClient) doRequest(ctx context.Context, body []byte, contentType string) ([]byte, *errx.Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.invokeURL, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(err, ErrAPIRequest).
			WithDetail("error", "failed to create HTTP request")
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set(secretHeader, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, WrapError(err, ErrAPIRequest).
			WithDetail("error", "HTTP request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError(err, ErrAPIResponse).
			WithDetail("error", "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ParseAPIError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

// shouldRetry retries rate limits and 5xx responses only.
func (c *HTTPClient) shouldRetry(err *errx.Error) bool {
	if err.Code == ErrAPIRateLimit.Code {
		return true
	}

	if err.Type == errx.TypeValidation || err.Type == errx.TypeAuthorization {
		return false
	}

	if statusCode, ok := err.Details["status_code"].(int); ok {
		return statusCode >= 500 && statusCode < 600
	}

	return false
}
