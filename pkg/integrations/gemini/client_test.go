package gemini

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/spritetag/pkg/errors"
	"github.com/matzehuels/spritetag/pkg/httputil"
	"github.com/matzehuels/spritetag/pkg/integrations"
)

func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	c := NewClient("test-key", "")
	c.baseURL = server.URL
	c.WithHTTPClient(server.Client())
	return c
}

func answerResponse(text, finish string) map[string]any {
	return map[string]any{
		"candidates": []any{map[string]any{
			"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
			"finishReason": finish,
		}},
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient("k", "")
	if c.Model() != DefaultModel {
		t.Errorf("Model() = %q, want %q", c.Model(), DefaultModel)
	}
	if c := NewClient("k", "gemini-custom"); c.Model() != "gemini-custom" {
		t.Errorf("Model() = %q", c.Model())
	}
}

func TestDescribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/"+DefaultModel+":generateContent" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get(apiKeyHeader); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		if r.URL.Query().Get("key") != "" {
			t.Error("api key must not be sent in the query")
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if len(req.Contents) != 1 {
			t.Errorf("contents = %d, want 1", len(req.Contents))
			return
		}
		parts := req.Contents[0].Parts
		if len(parts) != 2 {
			t.Errorf("parts = %d, want image + text", len(parts))
			return
		}
		if parts[0].InlineData == nil || parts[0].InlineData.MimeType != "image/png" || parts[0].InlineData.Data != "QUJD" {
			t.Errorf("image part = %+v", parts[0].InlineData)
		}
		if parts[1].Text != "describe it" {
			t.Errorf("text part = %q", parts[1].Text)
		}
		if req.GenerationConfig.ResponseMimeType != "application/json" {
			t.Errorf("responseMimeType = %q", req.GenerationConfig.ResponseMimeType)
		}
		if s := req.GenerationConfig.ResponseSchema; s == nil || len(s.Required) != 2 {
			t.Errorf("responseSchema = %+v", s)
		}

		json.NewEncoder(w).Encode(answerResponse(`{"title":"Home","keywords":["house","main"]}`, "STOP"))
	}))
	defer server.Close()

	answer, err := testClient(t, server).Describe(context.Background(), "QUJD", "describe it")
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	if answer.Title != "Home" || len(answer.Keywords) != 2 {
		t.Errorf("answer = %+v", answer)
	}
}

func TestDescribeEmptyResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     any
		wantText string
	}{
		{"no candidates", map[string]any{"promptFeedback": map[string]any{"blockReason": "SAFETY"}}, "Unknown, blocked: SAFETY"},
		{"blank text", answerResponse("  ", "MAX_TOKENS"), "MAX_TOKENS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(tt.body)
			}))
			defer server.Close()

			_, err := testClient(t, server).Describe(context.Background(), "QUJD", "p")
			if !errors.Is(err, errors.ErrCodeEmptyResponse) {
				t.Fatalf("error = %v, want EMPTY_RESPONSE", err)
			}
			if !strings.Contains(err.Error(), tt.wantText) {
				t.Errorf("error %q should mention %q", err, tt.wantText)
			}
		})
	}
}

func TestDescribeMalformedAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(answerResponse("Here is a house icon", "STOP"))
	}))
	defer server.Close()

	_, err := testClient(t, server).Describe(context.Background(), "QUJD", "p")
	if !errors.Is(err, errors.ErrCodeInvalidResponse) {
		t.Errorf("error = %v, want INVALID_RESPONSE", err)
	}
}

func TestDescribeUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := testClient(t, server).Describe(context.Background(), "QUJD", "p")
	if !stderrors.Is(err, integrations.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestDescribeEmptyPayload(t *testing.T) {
	_, err := NewClient("k", "").Describe(context.Background(), "", "p")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestDescribeErrorCodes(t *testing.T) {
	tests := []struct {
		status int
		want   errors.Code
	}{
		{http.StatusUnauthorized, errors.ErrCodeUnauthorized},
		{http.StatusForbidden, errors.ErrCodeUnauthorized},
		{http.StatusNotFound, errors.ErrCodeNotFound},
		{http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{http.StatusTeapot, errors.ErrCodeNetwork},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := testClient(t, server).Describe(context.Background(), "QUJD", "p")
			if !errors.Is(err, tt.want) {
				t.Errorf("code = %q, want %q (%v)", errors.GetCode(err), tt.want, err)
			}
		})
	}
}

func TestClassifyRateLimited(t *testing.T) {
	c := NewClient("k", "m")
	cause := &httputil.RetryableError{
		Err:   fmt.Errorf("%w: status 429", integrations.ErrRateLimited),
		After: 30 * time.Second,
	}

	err := c.classify(cause)
	if !errors.Is(err, errors.ErrCodeRateLimited) {
		t.Fatalf("code = %q, want RATE_LIMITED", errors.GetCode(err))
	}
	var rl *errors.RateLimitedError
	if !stderrors.As(err, &rl) || rl.RetryAfter != 30 {
		t.Errorf("RetryAfter = %+v", rl)
	}
	if !stderrors.Is(err, integrations.ErrRateLimited) {
		t.Error("sentinel should stay reachable")
	}

	if got := c.classify(context.Canceled); got != context.Canceled {
		t.Errorf("classify(Canceled) = %v", got)
	}
}
