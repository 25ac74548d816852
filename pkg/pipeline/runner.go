package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spritetag/pkg/errors"
	"github.com/matzehuels/spritetag/pkg/observability"
	"github.com/matzehuels/spritetag/pkg/sprite"
	"github.com/matzehuels/spritetag/pkg/tagging"
)

// Decomposer splits a sprite into icons. [sprite.Decomposer] implements it.
type Decomposer interface {
	Decompose(ctx context.Context, src, name string) (sprite.Result, error)
}

// Projector rasterizes an SVG data URI into a PNG data URI.
// [raster.Projector] implements it.
type Projector interface {
	Rasterize(ctx context.Context, vectorURI string, width, height int) (string, error)
}

// Runner executes sessions. It holds no per-session state, so one Runner
// may process several uploads concurrently; each session itself is strictly
// sequential.
type Runner struct {
	Decomposer Decomposer
	Projector  Projector
	Tagger     tagging.Describer
	Logger     *log.Logger

	// RecoverDelay is how long empty and critical statuses are held
	// before returning to Idle.
	RecoverDelay time.Duration

	// RasterSize is the edge length of the PNG sent to the tagger.
	RasterSize int
}

// NewRunner creates a runner with default delay and raster size.
// If logger is nil, the default logger is used.
func NewRunner(d Decomposer, p Projector, t tagging.Describer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Decomposer:   d,
		Projector:    p,
		Tagger:       t,
		Logger:       logger,
		RecoverDelay: DefaultRecoverDelay,
		RasterSize:   DefaultRasterSize,
	}
}

// Process runs one session and returns the tagged icons in publication order.
//
// Failures of single icons never end the session. The returned error is
// non-nil only when ctx was cancelled (the icons tagged so far are returned)
// or when an unexpected failure aborted the session; in both cases the
// matching status has already been published and the session is Idle again.
func (r *Runner) Process(ctx context.Context, up Upload, pub Publisher) (icons []TaggedIcon, err error) {
	if pub == nil {
		pub = PublisherFunc(func(Event) {})
	}
	start := time.Now()
	final := StateDone
	icons = []TaggedIcon{}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger().Error("error during SVG processing", "file", up.Name, "panic", rec)
			err = errors.New(errors.ErrCodeInternal, "processing %s: %v", up.Name, rec)
			final = StateIdle
			r.hold(ctx, pub, EventCritical, MsgCritical)
		}
		observability.Pipeline().OnSessionComplete(ctx, up.Name, string(final), len(icons), time.Since(start))
	}()

	pub.Publish(Event{Kind: EventReset, Progress: Progress{State: StateIdle}})
	pub.Publish(Event{Kind: EventStatus, Progress: Progress{State: StateExtracting, Message: MsgExtracting}})

	res, err := r.Decomposer.Decompose(ctx, up.Content, up.Name)
	if err != nil {
		final = StateIdle
		if ctx.Err() != nil {
			r.cancelled(pub)
			return icons, ctx.Err()
		}
		r.logger().Error("error during SVG processing", "file", up.Name, "err", err)
		r.hold(ctx, pub, EventCritical, MsgCritical)
		return icons, err
	}
	if res.Empty() {
		final = StateEmpty
		r.logger().Warn("no icons found", "file", up.Name)
		r.hold(ctx, pub, EventEmpty, MsgEmpty)
		return icons, nil
	}

	total := len(res.Icons)
	r.logger().Info("extracted icons", "file", up.Name, "strategy", res.Strategy, "count", total)

	for i, icon := range res.Icons {
		if ctx.Err() != nil {
			final = StateIdle
			r.cancelled(pub)
			return icons, ctx.Err()
		}
		pub.Publish(Event{Kind: EventStatus, Progress: Progress{
			State:   StateTagging,
			Index:   i + 1,
			Total:   total,
			Message: fmt.Sprintf(MsgTagging, i+1, total),
		}})

		tagged := r.tagOne(ctx, icon)
		icons = append(icons, tagged)
		pub.Publish(Event{Kind: EventIcon, Icon: &tagged, Progress: Progress{
			State: StateTagging,
			Index: i + 1,
			Total: total,
		}})
	}

	pub.Publish(Event{Kind: EventDone, Progress: Progress{State: StateDone, Total: total}})
	pub.Publish(Event{Kind: EventStatus, Progress: Progress{State: StateIdle}})
	return icons, nil
}

// tagOne rasterizes and describes one icon. Any failure, including a panic
// in a collaborator, yields the failed marker for that icon.
func (r *Runner) tagOne(ctx context.Context, icon sprite.Icon) (tagged TaggedIcon) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger().Error("failed to process icon", "id", icon.ID, "panic", rec)
			tagged = FailedIcon(icon)
		}
	}()

	hooks := observability.Pipeline()
	size := r.RasterSize
	if size <= 0 {
		size = DefaultRasterSize
	}

	start := time.Now()
	png, err := r.Projector.Rasterize(ctx, icon.DataURI, size, size)
	hooks.OnRasterizeComplete(ctx, icon.ID, time.Since(start), err)
	if err != nil {
		r.logger().Error("failed to process icon", "id", icon.ID, "err", err)
		return FailedIcon(icon)
	}

	start = time.Now()
	desc := r.Tagger.Describe(ctx, png, icon.AltText)
	hooks.OnTagComplete(ctx, icon.ID, time.Since(start), desc.Failed())

	keywords := desc.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return TaggedIcon{Icon: icon, Title: desc.Title, Keywords: keywords}
}

// hold publishes a terminal status, keeps it visible for RecoverDelay and
// then returns the session to Idle. Cancellation cuts the wait short.
func (r *Runner) hold(ctx context.Context, pub Publisher, kind EventKind, msg string) {
	state := StateIdle
	if kind == EventEmpty {
		state = StateEmpty
	}
	pub.Publish(Event{Kind: kind, Progress: Progress{State: state, Message: msg}})

	if r.RecoverDelay > 0 {
		timer := time.NewTimer(r.RecoverDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}
	pub.Publish(Event{Kind: EventStatus, Progress: Progress{State: StateIdle}})
}

func (r *Runner) cancelled(pub Publisher) {
	r.logger().Warn("processing cancelled")
	pub.Publish(Event{Kind: EventStatus, Progress: Progress{State: StateIdle, Message: MsgCancelled}})
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}
