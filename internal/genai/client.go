package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"
)

const (
	// DefaultMaxAttempts bounds the number of network calls per invocation.
	DefaultMaxAttempts = 3
	// DefaultBaseDelay is the backoff unit: attempt i waits baseDelay * 2^i.
	DefaultBaseDelay = time.Second

	maxJitter = 250 * time.Millisecond
)

// APIError is a non-success response from the generation API. It carries the
// status and body as diagnostic payload.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("generation API returned %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the error is expected to resolve on retry.
// 429 and 5xx are retried; every other status fails immediately.
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client calls the generation API with bounded retry and exponential backoff.
// Zero-value fields fall back to defaults, so Client{Endpoint: u, APIKey: k}
// is ready to use.
type Client struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client

	MaxAttempts int
	BaseDelay   time.Duration

	// Sleep is the backoff wait; overridable in tests. nil means a real,
	// context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Generate sends the request and returns the generated text. Transient
// failures (429, 5xx, transport errors) are retried up to MaxAttempts with
// exponentially growing, jittered delays; any other failure status aborts
// immediately. A success response with no usable text yields FallbackText
// and a nil error.
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal generation request: %w", err)
	}

	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	baseDelay := c.BaseDelay
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		text, err := c.doCall(ctx, body)
		if err == nil {
			return text, nil
		}

		if apiErr, ok := err.(*APIError); ok && !apiErr.Transient() {
			return "", apiErr
		}
		lastErr = err

		if i == attempts-1 {
			break
		}
		wait := baseDelay*(1<<uint(i)) + time.Duration(rand.Int63n(int64(maxJitter)))
		if err := c.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func (c *Client) doCall(ctx context.Context, body []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("x-goog-api-key", c.APIKey)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generation API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read generation response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed GenerateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		// Malformed success body degrades to the fallback message
		return FallbackText, nil
	}
	return parsed.Text(), nil
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
