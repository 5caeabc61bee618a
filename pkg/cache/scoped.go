package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful in server deployments where different users or sessions
// need separate cache namespaces.
//
// Example usage:
//
//	// User-specific keys for private domain trees
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
//
//	// Global keys for shared topic trees
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

// ResolveKey generates a prefixed key for a resolved child-name list.
func (k *ScopedKeyer) ResolveKey(name string, opts ResolveKeyOpts) string {
	return k.prefix + k.inner.ResolveKey(name, opts)
}

// LayoutKey generates a prefixed key for a computed layout.
func (k *ScopedKeyer) LayoutKey(center string, itemsHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(center, itemsHash, opts)
}

// SnapshotKey generates a prefixed key for a session snapshot.
func (k *ScopedKeyer) SnapshotKey(id string) string {
	return k.prefix + k.inner.SnapshotKey(id)
}
