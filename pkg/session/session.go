// Package session tracks upload sessions served by the HTTP API.
//
// A [Session] is created for every uploaded sprite. The pipeline publishes
// its events into the session, which keeps the current progress and the
// tagged icons, and fans the events out to subscribers such as SSE streams.
//
// # Architecture
//
// Sessions live in memory only; there is no persisted state. The [Store]
// interface supports:
//   - Get/Put/Delete operations
//   - Listing for diagnostics
//   - Cleanup of finished sessions older than a TTL
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess := session.New("icons.svg")
//	store.Put(ctx, sess)
//
//	go func() {
//	    runner.Process(ctx, upload, sess)
//	    sess.Finish()
//	}()
//
//	events, cancel := sess.Subscribe()
//	defer cancel()
//	for ev := range events {
//	    // icons already published are replayed first
//	}
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/spritetag/pkg/pipeline"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")
)

// Default durations.
const (
	// DefaultTTL is how long a finished session is kept.
	DefaultTTL = time.Hour
)

// subscriberBuffer bounds the events queued for one subscriber. A
// subscriber that falls further behind is disconnected.
const subscriberBuffer = 256

// EventOverflow is the last event a subscriber receives before being
// disconnected for falling behind. The session itself keeps running; the
// subscriber should resubscribe to get a fresh replay.
const EventOverflow pipeline.EventKind = "overflow"

// Session is one upload and its tagging progress. It implements
// [pipeline.Publisher] and is safe for concurrent use.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	catalog *pipeline.Catalog

	mu         sync.Mutex
	progress   pipeline.Progress
	finished   bool
	finishedAt time.Time
	subs       map[int]chan pipeline.Event
	nextSub    int
	cancel     context.CancelFunc
}

// New creates a session for an upload named name.
func New(name string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
		catalog:   pipeline.NewCatalog(),
		progress:  pipeline.Progress{State: pipeline.StateIdle},
		subs:      make(map[int]chan pipeline.Event),
	}
}

// Catalog returns the session's icons.
func (s *Session) Catalog() *pipeline.Catalog { return s.catalog }

// Progress returns the latest published progress.
func (s *Session) Progress() pipeline.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Finished reports whether processing has ended.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Publish records ev and forwards it to all subscribers.
func (s *Session) Publish(ev pipeline.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}

	s.catalog.Publish(ev)
	if ev.Kind != pipeline.EventIcon {
		s.progress = ev.Progress
	}
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			overflow(ch)
			delete(s.subs, id)
		}
	}
}

// Bind returns a context derived from parent that is cancelled when the
// session finishes. Processing of the session should run under it.
func (s *Session) Bind(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		cancel()
		return ctx
	}
	s.cancel = cancel
	return ctx
}

// overflow replaces the oldest queued event of a full subscriber channel
// with an [EventOverflow] marker and closes it. Callers hold s.mu, so no
// other send can take the freed slot.
func overflow(ch chan pipeline.Event) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- pipeline.Event{Kind: EventOverflow}:
	default:
	}
	close(ch)
}

// Finish marks processing as ended, cancels the bound context and closes
// all subscriber channels. Later events are ignored.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.finished = true
	s.finishedAt = time.Now()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

// Subscribe returns a channel that first replays the current progress and
// every icon published so far, then delivers live events until the session
// finishes or cancel is called. For a finished session the channel is
// closed right after the replay.
func (s *Session) Subscribe() (<-chan pipeline.Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	icons := s.catalog.All()
	ch := make(chan pipeline.Event, len(icons)+1+subscriberBuffer)
	ch <- pipeline.Event{Kind: pipeline.EventStatus, Progress: s.progress}
	for i := range icons {
		ch <- pipeline.Event{Kind: pipeline.EventIcon, Icon: &icons[i], Progress: pipeline.Progress{
			State: s.progress.State,
			Index: i + 1,
			Total: s.progress.Total,
		}}
	}

	if s.finished {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
		})
	}
}

// expired reports whether the session finished more than ttl ago.
func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished && now.Sub(s.finishedAt) > ttl
}
