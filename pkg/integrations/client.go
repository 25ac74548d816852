package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/spritetag/pkg/buildinfo"
	"github.com/matzehuels/spritetag/pkg/httputil"
	"github.com/matzehuels/spritetag/pkg/observability"
)

// Client provides shared HTTP functionality for service API clients.
// It handles retry logic, status mapping, common request headers and the
// HTTP observability hooks.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client with the given default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string) *Client {
	return &Client{
		http:    NewHTTPClient(),
		headers: headers,
	}
}

// WithHTTPClient replaces the underlying http.Client, e.g. for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// PostJSON sends body as JSON and decodes the JSON response into v.
// Transient failures (network errors, 5xx and 429 responses) are retried with
// exponential backoff. Request-specific headers override client defaults.
func (c *Client) PostJSON(ctx context.Context, rawURL string, headers map[string]string, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return httputil.RetryWithBackoff(ctx, func() error {
		resp, err := c.do(ctx, http.MethodPost, rawURL, headers, payload)
		if err != nil {
			return err
		}
		defer resp.Close()
		if err := json.NewDecoder(io.LimitReader(resp, maxResponseBytes)).Decode(v); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

func (c *Client) do(ctx context.Context, method, rawURL string, headers map[string]string, payload []byte) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(rawURL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &httputil.RetryableError{Err: fmt.Errorf("%w: %v", ErrNetwork, err)}
	}
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

// checkStatus maps a non-2xx response to a sentinel error, including a
// short excerpt of the body for diagnosis.
func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := fmt.Sprintf("status %d", code)
	if len(bytes.TrimSpace(excerpt)) > 0 {
		detail += ": " + string(bytes.TrimSpace(excerpt))
	}

	switch {
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, detail)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
	case code == http.StatusTooManyRequests:
		return &httputil.RetryableError{
			Err:   fmt.Errorf("%w: %s", ErrRateLimited, detail),
			After: ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	case code == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, detail)
	case code >= 500:
		return &httputil.RetryableError{Err: fmt.Errorf("%w: %s", ErrNetwork, detail)}
	default:
		return fmt.Errorf("%w: %s", ErrNetwork, detail)
	}
}

func hostPath(rawURL string) (string, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ""
	}
	return u.Host, u.Path
}
