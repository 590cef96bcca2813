package ocrclova

import (
	"net/http"
	"time"
)

// ProviderOption configures the CLOVA provider
type ProviderOption func(*Provider)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = client
	}
}

// WithTimeout sets the request timeout
func WithTimeout(timeout time.Duration) ProviderOption {
	return func(p *Provider) {
		if p.httpClient == nil {
			p.httpClient = &http.Client{}
		}
		p.httpClient.Timeout = timeout
	}
}

// WithMaxRetries sets the maximum number of retries
func WithMaxRetries(maxRetries int) ProviderOption {
	return func(p *Provider) {
		p.maxRetries = maxRetries
	}
}

// WithClock replaces time.Now for request ids and timestamps
func WithClock(now func() time.Time) ProviderOption {
	return func(p *Provider) {
		p.now = now
	}
}
