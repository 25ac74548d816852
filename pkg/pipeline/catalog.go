package pipeline

import (
	"slices"
	"strings"
	"sync"
)

// Catalog holds the icons of one session and the current search term.
// The displayed collection is always Filter(All(), Query()).
//
// Catalog implements [Publisher]: feeding it session events keeps it in
// sync with the runner. It is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	all   []TaggedIcon
	query string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{all: []TaggedIcon{}}
}

// Reset clears the icons and the search term.
func (c *Catalog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = []TaggedIcon{}
	c.query = ""
}

// Append adds icons at the end of the collection.
func (c *Catalog) Append(icons ...TaggedIcon) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all = append(c.all, icons...)
}

// SetQuery replaces the search term.
func (c *Catalog) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = q
}

// Query returns the search term.
func (c *Catalog) Query() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query
}

// Len returns the number of icons in the collection.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.all)
}

// All returns a copy of the authoritative collection.
func (c *Catalog) All() []TaggedIcon {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.all)
}

// Displayed returns the icons matching the current search term.
func (c *Catalog) Displayed() []TaggedIcon {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Filter(c.all, c.query)
}

// Publish applies a session event.
func (c *Catalog) Publish(ev Event) {
	switch ev.Kind {
	case EventReset:
		c.Reset()
	case EventIcon:
		if ev.Icon != nil {
			c.Append(*ev.Icon)
		}
	}
}

// Filter returns the icons whose title, ID or any keyword contains term,
// ignoring case. A term that is blank after trimming matches every icon.
// Order is preserved and the result is a new slice.
func Filter(icons []TaggedIcon, term string) []TaggedIcon {
	if strings.TrimSpace(term) == "" {
		return slices.Clone(icons)
	}
	q := strings.ToLower(term)
	out := make([]TaggedIcon, 0, len(icons))
	for _, icon := range icons {
		if Matches(icon, q) {
			out = append(out, icon)
		}
	}
	return out
}

// Matches reports whether icon matches the lower-cased term q.
func Matches(icon TaggedIcon, q string) bool {
	if strings.Contains(strings.ToLower(icon.Title), q) || strings.Contains(strings.ToLower(icon.ID), q) {
		return true
	}
	for _, kw := range icon.Keywords {
		if strings.Contains(strings.ToLower(kw), q) {
			return true
		}
	}
	return false
}
