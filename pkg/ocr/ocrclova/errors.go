package ocrclova

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Abraxas-365/saenggibu/pkg/errx"
)

var (
	// Error registry for the CLOVA OCR provider
	errorRegistry = errx.NewRegistry("CLOVA")

	// API Errors
	ErrAPIRequest = errorRegistry.Register(
		"API_REQUEST_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Failed to make request to CLOVA OCR",
	)

	ErrAPIResponse = errorRegistry.Register(
		"API_RESPONSE_INVALID",
		errx.TypeExternal,
		http.StatusBadGateway,
		"Invalid response from CLOVA OCR",
	)

	ErrAPIUnauthorized = errorRegistry.Register(
		"API_UNAUTHORIZED",
		errx.TypeAuthorization,
		http.StatusUnauthorized,
		"Invalid or missing OCR secret",
	)

	ErrAPIRateLimit = errorRegistry.Register(
		"API_RATE_LIMIT",
		errx.TypeExternal,
		http.StatusTooManyRequests,
		"CLOVA OCR rate limit exceeded",
	)

	// Input Errors
	ErrInvalidInput = errorRegistry.Register(
		"INVALID_INPUT",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Invalid input parameters",
	)

	ErrUnsupportedFormat = errorRegistry.Register(
		"UNSUPPORTED_FORMAT",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Unsupported image format",
	)

	// Processing Errors
	ErrInferenceFailed = errorRegistry.Register(
		"INFERENCE_FAILED",
		errx.TypeExternal,
		http.StatusBadGateway,
		"OCR inference failed for the page",
	)

	// Configuration Errors
	ErrMissingCredentials = errorRegistry.Register(
		"MISSING_CREDENTIALS",
		errx.TypeValidation,
		http.StatusBadRequest,
		"Missing CLOVA OCR invoke URL or secret",
	)
)

// APIError is the error body CLOVA returns on non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("CLOVA OCR error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
}

// ParseAPIError maps a non-2xx response to a registered error.
func ParseAPIError(statusCode int, body []byte) *errx.Error {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = string(body)
	}

	var baseErr *errx.ErrorCode
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		baseErr = ErrAPIUnauthorized
	case http.StatusTooManyRequests:
		baseErr = ErrAPIRateLimit
	case http.StatusBadRequest:
		baseErr = ErrInvalidInput
	default:
		baseErr = ErrAPIRequest
	}

	err := errorRegistry.NewWithMessage(baseErr, apiErr.Message)
	err.WithDetail("status_code", statusCode)
	if apiErr.Code != "" {
		err.WithDetail("clova_code", apiErr.Code)
	}
	return err
}

// WrapError wraps a standard error with a CLOVA error code.
func WrapError(err error, code *errx.ErrorCode) *errx.Error {
	if err == nil {
		return nil
	}

	var customErr *errx.Error
	if errx.As(err, &customErr) {
		return customErr
	}

	return errorRegistry.NewWithCause(code, err)
}
