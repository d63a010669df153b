package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// Useful when several projects share one Redis instance and their
// assembly runs must not collide.
//
// Example usage:
//
//	// Per-project keys
//	projectKeyer := NewScopedKeyer(NewDefaultKeyer(), "project:mof5:")
//
//	// Global keys for shared built-in runs
//	globalKeyer := NewDefaultKeyer()
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

// SelectionKey generates a prefixed key for selection caching.
func (k *ScopedKeyer) SelectionKey(topologyName string, opts SelectionKeyOpts) string {
	return k.prefix + k.inner.SelectionKey(topologyName, opts)
}

// FrameworkKey generates a prefixed key for framework caching.
func (k *ScopedKeyer) FrameworkKey(selectionHash string, opts FrameworkKeyOpts) string {
	return k.prefix + k.inner.FrameworkKey(selectionHash, opts)
}
