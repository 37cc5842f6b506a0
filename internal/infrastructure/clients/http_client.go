package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPResponse is a fully-read upstream response.
type HTTPResponse struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
}

// IsSuccess reports whether the status code is 2xx.
func (r *HTTPResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// UnmarshalJSON decodes the body into dest.
func (r *HTTPResponse) UnmarshalJSON(dest interface{}) error {
	return json.Unmarshal(r.Body, dest)
}

// HTTPClient is the outbound HTTP interface used by upstream clients.
type HTTPClient interface {
	// Post sends a JSON body and reads the full response.
	Post(ctx context.Context, url string, body interface{}, headers map[string]string) (*HTTPResponse, error)

	// Get reads the full response of a GET request.
	Get(ctx context.Context, url string, headers map[string]string) (*HTTPResponse, error)
}

type httpClientImpl struct {
	client *http.Client
}

// NewHTTPClient creates an HTTP client with the given overall timeout.
func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &httpClientImpl{
		client: &http.Client{Timeout: timeout},
	}
}

func (c *httpClientImpl) Post(ctx context.Context, url string, body interface{}, headers map[string]string) (*HTTPResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return c.do(req)
}

func (c *httpClientImpl) Get(ctx context.Context, url string, headers map[string]string) (*HTTPResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return c.do(req)
}

func (c *httpClientImpl) do(req *http.Request) (*HTTPResponse, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}
