package tensor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Config holds the configuration for the model server client
type Config struct {
	BaseURL       string
	Model         string
	Signature     string
	Timeout       time.Duration
	Threads       int
	RetryCount    int
	RetryBackoff  time.Duration
	Dimension     int
	MaxRetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:8501",
		Model:         "facenet",
		Signature:     "serving_default",
		Timeout:       30 * time.Second,
		Threads:       4,
		RetryCount:    0,
		RetryBackoff:  time.Second,
		Dimension:     512,
		MaxRetryDelay: 30 * time.Second,
	}
}

// Client is the HTTP client for a TensorFlow Serving compatible REST API
type Client struct {
	httpClient *http.Client
	config     Config
}

// NewClient creates a new model server client
func NewClient(config Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
	}
}

// StatusError is returned when the model server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model server returned status %d: %s", e.StatusCode, e.Body)
}

// Predict calls POST /v1/models/{model}:predict
func (c *Client) Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error) {
	if req.SignatureName == "" {
		req.SignatureName = c.config.Signature
	}

	path := fmt.Sprintf("/v1/models/%s:predict", c.config.Model)

	var resp PredictResponse
	if err := c.doRequestWithRetry(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// ModelStatus calls GET /v1/models/{model} and reports whether any version is AVAILABLE.
func (c *Client) ModelStatus(ctx context.Context) (bool, error) {
	var resp ModelStatusResponse
	if err := c.doRequest(ctx, http.MethodGet, "/v1/models/"+c.config.Model, nil, &resp); err != nil {
		return false, err
	}

	for _, v := range resp.ModelVersionStatus {
		if v.State == "AVAILABLE" {
			return true, nil
		}
	}
	return false, nil
}

// calculateBackoff returns base, 2*base, 4*base, ... capped at limit
func calculateBackoff(base, limit time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if attempt <= 1 {
		return base
	}
	d := base
	for i := 1; i < attempt && d < limit; i++ {
		d *= 2
	}
	if limit > 0 && d > limit {
		d = limit
	}
	return d
}

// doRequestWithRetry executes HTTP request with retry logic
func (c *Client) doRequestWithRetry(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 0 {
			backoff := calculateBackoff(c.config.RetryBackoff, c.config.MaxRetryDelay, attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = c.doRequest(ctx, method, path, body, result)
		if lastErr == nil {
			return nil
		}

		// Don't retry on context errors
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// Only server errors (5xx) and transport failures are retried
		if isClientError(lastErr) || errors.Is(lastErr, ErrInvalidResponse) {
			return lastErr
		}
	}

	if c.config.RetryCount == 0 {
		return fmt.Errorf("%w: %v", ErrModelServerUnavailable, lastErr)
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrModelServerUnavailable, c.config.RetryCount+1, lastErr)
}

// isClientError checks if the error is a 4xx client error
func isClientError(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode >= 400 && statusErr.StatusCode < 500
}

// doRequest executes a single HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	url := c.config.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}

	return nil
}
