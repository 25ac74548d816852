package cache

// ScopedKeyer wraps a Keyer with a prefix so unrelated deployments can
// share one cache backend without seeing each other's entries.
//
// Example usage:
//
//	// Keys in a shared Redis database
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "spritetag:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// TagKey generates a prefixed key for description caching.
func (k *ScopedKeyer) TagKey(rasterHash string, opts TagKeyOpts) string {
	return k.prefix + k.inner.TagKey(rasterHash, opts)
}
