package integrations

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// httpTimeout bounds one request. Vision requests routinely take several
// seconds, so this is well above what a metadata API would need.
const httpTimeout = 60 * time.Second

// maxResponseBytes caps decoded response bodies.
const maxResponseBytes = 10 << 20

var (
	// ErrNotFound is returned when the requested model or resource doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned for missing or rejected credentials (401, 403).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is returned when the service throttles requests (429).
	ErrRateLimited = errors.New("rate limited")

	// ErrBadRequest is returned when the service rejects the request payload (400).
	ErrBadRequest = errors.New("bad request")
)

// NewHTTPClient creates an HTTP client with a standard timeout for service requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// ParseRetryAfter interprets a Retry-After header given in seconds or as an
// HTTP date. It returns 0 when the header is absent or unparseable.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}

// Truncate shortens s to at most n bytes for log and error messages,
// marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
