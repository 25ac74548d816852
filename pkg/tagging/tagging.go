package tagging

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spritetag/pkg/datauri"
	"github.com/matzehuels/spritetag/pkg/errors"
	"github.com/matzehuels/spritetag/pkg/integrations/gemini"
)

// Title and keywords used when a description cannot be produced or the
// model left a field out.
const (
	FailedTitle   = "Analysis Failed"
	FailedKeyword = "error"
	UntitledTitle = "Untitled Icon"
)

// Description is a title and keyword set for one icon.
type Description struct {
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}

// FailedDescription returns the sentinel reported for any failure.
func FailedDescription() Description {
	return Description{Title: FailedTitle, Keywords: []string{FailedKeyword}}
}

// Failed reports whether d is the failure sentinel.
func (d Description) Failed() bool {
	return d.Title == FailedTitle && slices.Equal(d.Keywords, []string{FailedKeyword})
}

// Describer describes a PNG data URI. Implementations never return an
// error; failures are expressed as [FailedDescription].
type Describer interface {
	Describe(ctx context.Context, rasterURI, hint string) Description
}

// Service is the vision model behind a [Tagger].
type Service interface {
	Describe(ctx context.Context, pngBase64, prompt string) (*gemini.Answer, error)
}

// Tagger describes rasters through a [Service].
type Tagger struct {
	Service Service
	Logger  *log.Logger
}

// NewTagger creates a Tagger. A nil service is allowed; every call then
// reports the failure sentinel. A nil logger uses the default logger.
func NewTagger(svc Service, logger *log.Logger) *Tagger {
	return &Tagger{Service: svc, Logger: logger}
}

// Describe asks the service for a title and keywords. The returned
// Description always has a non-empty title and a non-nil keyword list.
func (t *Tagger) Describe(ctx context.Context, rasterURI, hint string) Description {
	d, err := t.describe(ctx, rasterURI, hint)
	if err != nil {
		t.logger().Error("failed to analyze icon", "err", err)
		return FailedDescription()
	}
	return d
}

func (t *Tagger) describe(ctx context.Context, rasterURI, hint string) (Description, error) {
	if t.Service == nil {
		return Description{}, errors.New(errors.ErrCodeUnsupported, "no description service configured")
	}
	payload := datauri.Payload(rasterURI)
	if payload == "" {
		return Description{}, errors.New(errors.ErrCodeInvalidDataURI, "invalid PNG data URI provided")
	}

	answer, err := t.Service.Describe(ctx, payload, BuildPrompt(hint))
	if err != nil {
		return Description{}, err
	}
	if answer == nil {
		return Description{}, errors.New(errors.ErrCodeEmptyResponse, "service returned no answer")
	}

	d := Description{Title: answer.Title, Keywords: answer.Keywords}
	if d.Title == "" {
		d.Title = UntitledTitle
	}
	if d.Keywords == nil {
		d.Keywords = []string{}
	}
	return d, nil
}

func (t *Tagger) logger() *log.Logger {
	if t.Logger == nil {
		return log.Default()
	}
	return t.Logger
}
