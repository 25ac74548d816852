package pipeline

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	spriteerrors "github.com/matzehuels/spritetag/pkg/errors"
	"github.com/matzehuels/spritetag/pkg/sprite"
	"github.com/matzehuels/spritetag/pkg/tagging"
)

const threeSymbols = `<svg xmlns="http://www.w3.org/2000/svg">
  <symbol id="a" viewBox="0 0 10 10"><title>Alpha</title><rect width="10" height="10"/></symbol>
  <symbol id="b" viewBox="0 0 10 10"><circle r="5" cx="5" cy="5"/></symbol>
  <symbol id="c" viewBox="0 0 10 10"><path d="M0 0L10 10"/></symbol>
</svg>`

type fakeProjector struct {
	fail map[string]bool
	mu   sync.Mutex
	seen []string
}

func (p *fakeProjector) Rasterize(ctx context.Context, uri string, w, h int) (string, error) {
	p.mu.Lock()
	p.seen = append(p.seen, uri)
	p.mu.Unlock()
	for frag := range p.fail {
		if strings.Contains(uri, frag) {
			return "", spriteerrors.New(spriteerrors.ErrCodeDecode, "cannot decode")
		}
	}
	return "data:image/png;base64,UE5H", nil
}

type fakeTagger struct {
	fn    func(hint string) tagging.Description
	hints []string
}

func (f *fakeTagger) Describe(ctx context.Context, uri, hint string) tagging.Description {
	f.hints = append(f.hints, hint)
	if f.fn != nil {
		return f.fn(hint)
	}
	return tagging.Description{Title: "Icon " + hint, Keywords: []string{"kw"}}
}

type decomposeFunc func(ctx context.Context, src, name string) (sprite.Result, error)

func (f decomposeFunc) Decompose(ctx context.Context, src, name string) (sprite.Result, error) {
	return f(ctx, src, name)
}

type recorder struct {
	events []Event
}

func (r *recorder) Publish(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) kinds() []EventKind {
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func testRunner(d Decomposer, p Projector, t tagging.Describer) *Runner {
	logger := log.New(io.Discard)
	if d == nil {
		d = sprite.NewDecomposer(nil, logger)
	}
	r := NewRunner(d, p, t, logger)
	r.RecoverDelay = 0
	return r
}

func TestProcessTagsIconsInOrder(t *testing.T) {
	tagger := &fakeTagger{}
	runner := testRunner(nil, &fakeProjector{}, tagger)
	rec := &recorder{}
	catalog := NewCatalog()

	icons, err := runner.Process(context.Background(), Upload{Name: "icons.svg", Content: threeSymbols}, Publishers(rec, catalog))
	if err != nil {
		t.Fatalf("Process() error: %v", err)
	}

	var ids []string
	for _, icon := range icons {
		ids = append(ids, icon.ID)
	}
	if !slices.Equal(ids, []string{"a", "b", "c"}) {
		t.Errorf("ids = %v, want [a b c]", ids)
	}
	if icons[0].Title != "Icon Alpha" {
		t.Errorf("title = %q, hint not passed", icons[0].Title)
	}
	if !slices.Equal(tagger.hints, []string{"Alpha", "", ""}) {
		t.Errorf("hints = %q", tagger.hints)
	}
	if catalog.Len() != 3 {
		t.Errorf("catalog holds %d icons, want 3", catalog.Len())
	}

	want := []EventKind{
		EventReset, EventStatus,
		EventStatus, EventIcon,
		EventStatus, EventIcon,
		EventStatus, EventIcon,
		EventDone, EventStatus,
	}
	if !slices.Equal(rec.kinds(), want) {
		t.Errorf("events = %v, want %v", rec.kinds(), want)
	}
	if msg := rec.events[1].Progress.Message; msg != MsgExtracting {
		t.Errorf("first status = %q", msg)
	}
	if msg := rec.events[4].Progress.Message; msg != "Analyzing icon 2 of 3 with AI..." {
		t.Errorf("tagging status = %q", msg)
	}
	if last := rec.events[len(rec.events)-1].Progress; last.State != StateIdle || last.Message != "" {
		t.Errorf("final progress = %+v, want idle without message", last)
	}
}

func TestProcessStatusPrecedesIcon(t *testing.T) {
	runner := testRunner(nil, &fakeProjector{}, &fakeTagger{})
	var tagged int
	pub := PublisherFunc(func(ev Event) {
		switch ev.Kind {
		case EventStatus:
			if ev.Progress.State == StateTagging && ev.Progress.Index != tagged+1 {
				t.Errorf("status for icon %d published after %d icons", ev.Progress.Index, tagged)
			}
		case EventIcon:
			tagged++
		}
	})
	runner.Process(context.Background(), Upload{Name: "x.svg", Content: threeSymbols}, pub)
	if tagged != 3 {
		t.Errorf("tagged = %d", tagged)
	}
}

func TestProcessFailingTaggerKeepsAllIcons(t *testing.T) {
	tagger := &fakeTagger{fn: func(string) tagging.Description { return tagging.FailedDescription() }}
	runner := testRunner(nil, &fakeProjector{}, tagger)

	icons, err := runner.Process(context.Background(), Upload{Name: "x.svg", Content: threeSymbols}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(icons) != 3 {
		t.Fatalf("icons = %d, want 3", len(icons))
	}
	for _, icon := range icons {
		if !slices.Equal(icon.Keywords, []string{"error"}) {
			t.Errorf("%s keywords = %v", icon.ID, icon.Keywords)
		}
	}
}

func TestProcessRasterFailureMarksIcon(t *testing.T) {
	projector := &fakeProjector{fail: map[string]bool{}}
	runner := testRunner(nil, projector, &fakeTagger{})

	// Fail every raster: each icon must still be published with the marker.
	runner.Projector = projectorFunc(func(context.Context, string, int, int) (string, error) {
		return "", errors.New("no canvas")
	})

	icons, err := runner.Process(context.Background(), Upload{Name: "x.svg", Content: threeSymbols}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(icons) != 3 {
		t.Fatalf("icons = %d, want 3", len(icons))
	}
	for _, icon := range icons {
		if icon.Title != icon.ID || !slices.Equal(icon.Keywords, FailedKeywords) {
			t.Errorf("icon %s = %q %v, want failed marker", icon.ID, icon.Title, icon.Keywords)
		}
	}
}

type projectorFunc func(ctx context.Context, uri string, w, h int) (string, error)

func (f projectorFunc) Rasterize(ctx context.Context, uri string, w, h int) (string, error) {
	return f(ctx, uri, w, h)
}

func TestProcessPanickingTaggerMarksIcon(t *testing.T) {
	calls := 0
	tagger := &fakeTagger{fn: func(hint string) tagging.Description {
		calls++
		if calls == 2 {
			panic("boom")
		}
		return tagging.Description{Title: "ok", Keywords: []string{}}
	}}
	runner := testRunner(nil, &fakeProjector{}, tagger)

	icons, err := runner.Process(context.Background(), Upload{Name: "x.svg", Content: threeSymbols}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(icons) != 3 || icons[1].Title != "b" || icons[2].Title != "ok" {
		t.Errorf("icons = %+v", icons)
	}
}

func TestProcessEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not svg", "<html/>"},
		{"malformed", "<svg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			runner := testRunner(nil, &fakeProjector{}, &fakeTagger{})
			icons, err := runner.Process(context.Background(), Upload{Name: "x.svg", Content: tt.content}, rec)
			if err != nil {
				t.Fatalf("Process() error: %v", err)
			}
			if len(icons) != 0 {
				t.Errorf("icons = %d", len(icons))
			}
			want := []EventKind{EventReset, EventStatus, EventEmpty, EventStatus}
			if !slices.Equal(rec.kinds(), want) {
				t.Errorf("events = %v, want %v", rec.kinds(), want)
			}
			if rec.events[2].Progress.Message != MsgEmpty {
				t.Errorf("empty message = %q", rec.events[2].Progress.Message)
			}
		})
	}
}

func TestProcessCritical(t *testing.T) {
	d := decomposeFunc(func(context.Context, string, string) (sprite.Result, error) {
		panic("corrupt")
	})
	rec := &recorder{}
	runner := testRunner(d, &fakeProjector{}, &fakeTagger{})

	_, err := runner.Process(context.Background(), Upload{Name: "x.svg", Content: threeSymbols}, rec)
	if !spriteerrors.Is(err, spriteerrors.ErrCodeInternal) {
		t.Errorf("error = %v, want INTERNAL_ERROR", err)
	}
	kinds := rec.kinds()
	if kinds[len(kinds)-2] != EventCritical || rec.events[len(kinds)-2].Progress.Message != MsgCritical {
		t.Errorf("events = %v, want critical before idle", kinds)
	}
	if rec.events[len(kinds)-1].Progress.State != StateIdle {
		t.Error("session should return to idle")
	}
}

func TestProcessCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tagger := &fakeTagger{fn: func(string) tagging.Description {
		cancel()
		return tagging.Description{Title: "t", Keywords: []string{}}
	}}
	runner := testRunner(nil, &fakeProjector{}, tagger)

	icons, err := runner.Process(ctx, Upload{Name: "x.svg", Content: threeSymbols}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if len(icons) != 1 {
		t.Errorf("icons = %d, want the one finished before cancellation", len(icons))
	}
}

func TestFilter(t *testing.T) {
	icons := []TaggedIcon{
		{Icon: sprite.Icon{ID: "home-icon"}, Title: "House", Keywords: []string{"building", "Residence"}},
		{Icon: sprite.Icon{ID: "trash"}, Title: "Delete Item", Keywords: []string{"bin", "remove"}},
		{Icon: sprite.Icon{ID: "user"}, Title: "User Profile", Keywords: []string{"person"}},
	}

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"empty", "", []string{"home-icon", "trash", "user"}},
		{"blank", "   ", []string{"home-icon", "trash", "user"}},
		{"title", "delete", []string{"trash"}},
		{"id", "HOME", []string{"home-icon"}},
		{"keyword only", "residence", []string{"home-icon"}},
		{"keyword substring", "mov", []string{"trash"}},
		{"shared", "e", []string{"home-icon", "trash", "user"}},
		{"untrimmed term", " profile", []string{"user"}},
		{"no match", "zebra", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, icon := range Filter(icons, tt.term) {
				got = append(got, icon.ID)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.term, got, tt.want)
			}
		})
	}
}

func TestCatalog(t *testing.T) {
	c := NewCatalog()
	c.Publish(Event{Kind: EventIcon, Icon: &TaggedIcon{Icon: sprite.Icon{ID: "a"}, Title: "Arrow"}})
	c.Publish(Event{Kind: EventIcon, Icon: &TaggedIcon{Icon: sprite.Icon{ID: "b"}, Title: "Bell"}})

	c.SetQuery("bell")
	if got := c.Displayed(); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Displayed() = %+v", got)
	}
	if len(c.All()) != 2 {
		t.Errorf("All() = %d icons", len(c.All()))
	}

	c.Publish(Event{Kind: EventIcon, Icon: &TaggedIcon{Icon: sprite.Icon{ID: "c"}, Title: "Bell Off"}})
	if got := c.Displayed(); len(got) != 2 {
		t.Errorf("new matching icon should be displayed, got %d", len(got))
	}

	c.Publish(Event{Kind: EventReset})
	if c.Len() != 0 || c.Query() != "" {
		t.Errorf("Reset left %d icons and query %q", c.Len(), c.Query())
	}
}

func TestFailedIcon(t *testing.T) {
	icon := FailedIcon(sprite.NewIcon("x-1", "<svg/>", ""))
	if icon.Title != "x-1" || !slices.Equal(icon.Keywords, []string{"failed", "error"}) {
		t.Errorf("FailedIcon() = %+v", icon)
	}
	icon.Keywords[0] = "changed"
	if FailedKeywords[0] != "failed" {
		t.Error("FailedIcon must not alias FailedKeywords")
	}
}

func TestTaggedIconFailed(t *testing.T) {
	base := sprite.NewIcon("x-1", "<svg/>", "")
	tests := []struct {
		name string
		icon TaggedIcon
		want bool
	}{
		{"raster failure", FailedIcon(base), true},
		{"description failure", TaggedIcon{Icon: base, Title: tagging.FailedTitle, Keywords: []string{tagging.FailedKeyword}}, true},
		{"tagged", TaggedIcon{Icon: base, Title: "Arrow", Keywords: []string{"arrow"}}, false},
		{"id title only", TaggedIcon{Icon: base, Title: "x-1", Keywords: []string{"x"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.icon.Failed(); got != tt.want {
				t.Errorf("Failed() = %v, want %v", got, tt.want)
			}
		})
	}
}
