// Package pipeline provides the tagging pipeline for spritetag.
//
// This package turns one uploaded sprite into a set of tagged icons and is
// shared by the CLI and the HTTP server so both behave the same way.
//
// # Architecture
//
// One session runs through these states:
//
//	Idle → Extracting → Tagging(i/N) → Done → Idle
//	             └─────→ Empty ──(delay)──→ Idle
//
// The work itself has two stages:
//
//  1. Extract: decompose the sprite into standalone icons
//  2. Tag: for each icon, strictly one after another, rasterize it and ask
//     the describer for a title and keywords
//
// Every completed icon is published as an [Event] right away, so consumers
// can show partial results while later icons are still processing. A failing
// icon is still published, marked with its own ID as title and the keywords
// "failed" and "error".
//
// # Usage
//
//	runner := pipeline.NewRunner(decomposer, projector, tagger, logger)
//	catalog := pipeline.NewCatalog()
//	icons, err := runner.Process(ctx, pipeline.Upload{Name: "icons.svg", Content: src}, catalog)
//
//	catalog.SetQuery("arrow")
//	for _, icon := range catalog.Displayed() {
//	    fmt.Println(icon.ID, icon.Title)
//	}
package pipeline

import (
	"slices"
	"time"

	"github.com/matzehuels/spritetag/pkg/sprite"
	"github.com/matzehuels/spritetag/pkg/tagging"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultRecoverDelay is how long an empty or critical status stays
	// visible before the session returns to Idle.
	DefaultRecoverDelay = 4 * time.Second

	// DefaultRasterSize is the edge length of the square PNG sent for tagging.
	DefaultRasterSize = 128
)

// Status messages published to consumers.
const (
	MsgExtracting = "Analyzing SVG structure..."
	MsgTagging    = "Analyzing icon %d of %d with AI..."
	MsgEmpty      = "Analysis complete, but no distinct icons were found. This can happen with empty or non-standard SVG structures."
	MsgCritical   = "A critical error occurred during processing. The file might be corrupted."
	MsgCancelled  = "Processing was cancelled."
)

// Keywords attached to an icon whose processing failed.
var FailedKeywords = []string{"failed", "error"}

// =============================================================================
// States
// =============================================================================

// State is the lifecycle state of a session.
type State string

const (
	StateIdle       State = "idle"
	StateExtracting State = "extracting"
	StateTagging    State = "tagging"
	StateDone       State = "done"
	StateEmpty      State = "empty"
)

// Busy reports whether processing is in progress.
func (s State) Busy() bool {
	return s == StateExtracting || s == StateTagging
}

// Progress describes where a session is. Index is 1-based while tagging.
type Progress struct {
	State   State  `json:"state"`
	Index   int    `json:"index,omitempty"`
	Total   int    `json:"total,omitempty"`
	Message string `json:"message,omitempty"`
}

// =============================================================================
// Icons and Uploads
// =============================================================================

// TaggedIcon is an extracted icon together with its description.
type TaggedIcon struct {
	sprite.Icon
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}

// FailedIcon marks icon as failed: its ID becomes the title.
func FailedIcon(icon sprite.Icon) TaggedIcon {
	return TaggedIcon{
		Icon:     icon,
		Title:    icon.ID,
		Keywords: append([]string(nil), FailedKeywords...),
	}
}

// Failed reports whether t carries one of the failure markers: the one set by
// the runner when rasterizing fails, or the description service's sentinel.
func (t TaggedIcon) Failed() bool {
	if t.Title == t.ID && slices.Equal(t.Keywords, FailedKeywords) {
		return true
	}
	return tagging.Description{Title: t.Title, Keywords: t.Keywords}.Failed()
}

// Upload is one source file handed to the pipeline.
type Upload struct {
	Name    string
	Content string
}

// =============================================================================
// Events
// =============================================================================

// EventKind identifies the type of an [Event].
type EventKind string

const (
	// EventReset starts a new session; consumers drop earlier icons.
	EventReset EventKind = "reset"
	// EventStatus carries a progress update without a new icon.
	EventStatus EventKind = "status"
	// EventIcon carries one completed icon.
	EventIcon EventKind = "icon"
	// EventDone follows the last icon.
	EventDone EventKind = "done"
	// EventEmpty reports that nothing could be extracted.
	EventEmpty EventKind = "empty"
	// EventCritical reports an unexpected failure of the whole session.
	EventCritical EventKind = "critical"
)

// Event is one observable step of a session.
type Event struct {
	Kind     EventKind   `json:"kind"`
	Progress Progress    `json:"progress"`
	Icon     *TaggedIcon `json:"icon,omitempty"`
}

// Publisher receives session events in order. Publish is called from the
// goroutine running the session and should not block for long.
type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a function to [Publisher].
type PublisherFunc func(Event)

// Publish calls f(ev).
func (f PublisherFunc) Publish(ev Event) { f(ev) }

// Publishers fans events out to several publishers, in argument order.
// Nil entries are skipped.
func Publishers(ps ...Publisher) Publisher {
	return PublisherFunc(func(ev Event) {
		for _, p := range ps {
			if p != nil {
				p.Publish(ev)
			}
		}
	})
}
