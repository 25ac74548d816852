package gemini

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/matzehuels/spritetag/pkg/errors"
	"github.com/matzehuels/spritetag/pkg/httputil"
	"github.com/matzehuels/spritetag/pkg/integrations"
)

// DefaultModel is the vision model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	apiKeyHeader   = "x-goog-api-key"
	pngMimeType    = "image/png"
)

// Answer is the structured reply requested from the model. Fields are
// returned as the model produced them; defaults for missing values are the
// caller's concern.
type Answer struct {
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}

// Client calls the generateContent endpoint of one model.
// It is safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
	model   string
	apiKey  string
}

// NewClient creates a Gemini client. An empty model selects [DefaultModel].
// A missing apiKey is not rejected here; requests then fail with
// [integrations.ErrUnauthorized].
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		Client:  integrations.NewClient(nil),
		baseURL: defaultBaseURL,
		model:   model,
		apiKey:  apiKey,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Describe sends a base64 PNG payload (without the data URI prefix) and the
// prompt, and decodes the model's JSON answer.
func (c *Client) Describe(ctx context.Context, pngBase64, prompt string) (*Answer, error) {
	if pngBase64 == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty image payload")
	}

	req := generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{MimeType: pngMimeType, Data: pngBase64}},
				{Text: prompt},
			},
		}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   answerSchema,
		},
	}

	var resp generateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	headers := map[string]string{apiKeyHeader: c.apiKey}
	if err := c.PostJSON(ctx, url, headers, req, &resp); err != nil {
		return nil, c.classify(err)
	}

	text := resp.text()
	if strings.TrimSpace(text) == "" {
		reason := resp.finishReason()
		if reason == "" {
			reason = "Unknown"
		}
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			reason += ", blocked: " + resp.PromptFeedback.BlockReason
		}
		return nil, errors.New(errors.ErrCodeEmptyResponse, "model returned an empty response. Reason: %s", reason)
	}

	var answer Answer
	if err := json.Unmarshal([]byte(text), &answer); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidResponse, err, "parse model answer %q", integrations.Truncate(text, 200))
	}
	return &answer, nil
}

// classify attaches an error code to a transport failure. The sentinel
// errors of package integrations stay reachable through errors.Is.
func (c *Client) classify(err error) error {
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	case stderrors.Is(err, integrations.ErrRateLimited):
		rl := &errors.RateLimitedError{Message: c.model, Cause: err}
		var re *httputil.RetryableError
		if stderrors.As(err, &re) {
			rl.RetryAfter = int(re.After.Seconds())
		}
		return rl
	case stderrors.Is(err, integrations.ErrUnauthorized):
		return errors.Wrap(errors.ErrCodeUnauthorized, err, "check the API key")
	case stderrors.Is(err, integrations.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, err, "model %q", c.model)
	case stderrors.Is(err, integrations.ErrBadRequest):
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "request rejected")
	default:
		return errors.Wrap(errors.ErrCodeNetwork, err, "call %s", c.model)
	}
}

// answerSchema constrains the model output to {title, keywords}.
var answerSchema = &schema{
	Type: "OBJECT",
	Properties: map[string]*schema{
		"title": {
			Type:        "STRING",
			Description: "A short, descriptive title for the icon (2-4 words max).",
		},
		"keywords": {
			Type:        "ARRAY",
			Description: "An array of 5-7 relevant keywords for searching this icon.",
			Items: &schema{
				Type:        "STRING",
				Description: "A relevant keyword.",
			},
		},
	},
	Required: []string{"title", "keywords"},
}
