package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis without colliding. The prefix comes from configuration.
//
// Example usage:
//
//	// Staging console
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "staging:")
//
//	// Production console
//	keyer := cache.NewDefaultKeyer()
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

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(treeHash, opts)
}
