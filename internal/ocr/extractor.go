// Package ocr abstracts the external text-extraction collaborator. The core
// never invokes extraction itself; it only consumes the ordered text lines
// an Extractor produces from an uploaded image.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sourishdey2005/fraud--detection/internal/domain"
)

// Extractor turns an uploaded image into the ordered sequence of recognized
// text lines.
type Extractor interface {
	ExtractText(ctx context.Context, image []byte) ([]string, error)
}

// HTTPExtractor calls a remote extraction service over HTTP. The service
// accepts the raw image bytes and responds with {"lines": [...]}.
type HTTPExtractor struct {
	endpoint string
	client   *http.Client
}

// NewHTTPExtractor creates an extractor for the configured service.
// Returns nil when no endpoint is configured; callers treat a nil extractor
// as "image verification disabled".
func NewHTTPExtractor(cfg domain.OCRConfig) *HTTPExtractor {
	if cfg.Endpoint == "" {
		return nil
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPExtractor{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type extractResponse struct {
	Lines []string `json:"lines"`
}

// ExtractText posts the image to the extraction service and returns the
// recognized lines in reading order.
func (e *HTTPExtractor) ExtractText(ctx context.Context, image []byte) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction service returned status %d", resp.StatusCode)
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}
	return out.Lines, nil
}

// Static is a fixed-output extractor for tests and local development.
type Static struct {
	Lines []string
	Err   error
}

// ExtractText returns the configured lines regardless of input.
func (s *Static) ExtractText(ctx context.Context, image []byte) ([]string, error) {
	return s.Lines, s.Err
}
