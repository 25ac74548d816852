package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/spritetag/pkg/httputil"
)

type echo struct {
	Message string `json:"message"`
}

func TestNewClient(t *testing.T) {
	headers := map[string]string{"x-goog-api-key": "secret"}
	client := NewClient(headers)

	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.headers["x-goog-api-key"] != "secret" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if got := r.Header.Get("X-Default"); got != "d" {
			t.Errorf("default header = %q", got)
		}
		if got := r.Header.Get("X-Request"); got != "r" {
			t.Errorf("request header = %q", got)
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "spritetag/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		var in echo
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(echo{Message: "re: " + in.Message})
	}))
	defer server.Close()

	client := NewClient(map[string]string{"X-Default": "d"}).WithHTTPClient(server.Client())

	var out echo
	err := client.PostJSON(context.Background(), server.URL, map[string]string{"X-Request": "r"}, echo{Message: "hi"}, &out)
	if err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if out.Message != "re: hi" {
		t.Errorf("message = %q", out.Message)
	}
}

func TestPostJSONStatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		want      error
		retryable bool
	}{
		{http.StatusBadRequest, ErrBadRequest, false},
		{http.StatusUnauthorized, ErrUnauthorized, false},
		{http.StatusForbidden, ErrUnauthorized, false},
		{http.StatusNotFound, ErrNotFound, false},
		{http.StatusConflict, ErrNetwork, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"nope"}}`))
			}))
			defer server.Close()

			client := NewClient(nil).WithHTTPClient(server.Client())
			err := client.PostJSON(context.Background(), server.URL, nil, struct{}{}, &echo{})
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if !strings.Contains(err.Error(), "nope") {
				t.Errorf("error should include the body excerpt: %v", err)
			}
			if httputil.IsRetryable(err) != tt.retryable {
				t.Errorf("retryable = %v, want %v", httputil.IsRetryable(err), tt.retryable)
			}
			if calls.Load() != 1 {
				t.Errorf("non-retryable status was attempted %d times", calls.Load())
			}
		})
	}
}

func TestPostJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(echo{Message: "ok"})
	}))
	defer server.Close()

	client := NewClient(nil).WithHTTPClient(server.Client())
	var out echo
	if err := client.PostJSON(context.Background(), server.URL, nil, struct{}{}, &out); err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if calls.Load() != 2 || out.Message != "ok" {
		t.Errorf("calls = %d, message = %q", calls.Load(), out.Message)
	}
}

func TestPostJSONMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>"))
	}))
	defer server.Close()

	client := NewClient(nil).WithHTTPClient(server.Client())
	err := client.PostJSON(context.Background(), server.URL, nil, struct{}{}, &echo{})
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Errorf("error = %v, want decode failure", err)
	}
}

func TestPostJSONCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := NewClient(nil).WithHTTPClient(server.Client())
	err := client.PostJSON(ctx, server.URL, nil, struct{}{}, &echo{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate short = %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello…" {
		t.Errorf("Truncate long = %q", got)
	}
}
