package cache

// ScopedKeyer wraps a Keyer with a prefix, giving callers that share one
// backend separate namespaces.
//
// Example usage:
//
//	// Keys for one deployment of the HTTP server
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// MaskKey generates a prefixed key for mask caching.
func (k *ScopedKeyer) MaskKey(opts MaskKeyOpts) string {
	return k.prefix + k.inner.MaskKey(opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(maskHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(maskHash, opts)
}
