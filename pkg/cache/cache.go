// Package cache stores rendered procedure artifacts.
//
// Rendering a procedure graph to SVG runs Graphviz in-process, which is the
// expensive step of the console's read path. Artifacts are keyed by the
// sha256 of the serialized tree plus the render options, so any edit to a
// procedure naturally invalidates its artifacts - nothing is ever purged by
// content, only by expiry.
//
// Three backends implement the same [Cache] interface:
//   - file: entries as JSON files under a directory, for the CLI and
//     single-node deployments
//   - redis: shared cache for multi-instance console deployments
//   - null: caching disabled
//
// # Usage
//
// Look up an artifact, render on miss:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.ArtifactKey(cache.Hash(treeData), cache.ArtifactKeyOpts{
//		Format: "svg",
//	})
//	if data, hit, err := c.Get(ctx, key); err == nil && hit {
//		return data, nil
//	}
//	data, err := render(...)
//	if err != nil {
//		return nil, err
//	}
//	_ = c.Set(ctx, key, data, cache.TTLArtifact)
package cache

import (
	"context"
	"time"
)

// TTLs per entry class.
const (
	// TTLArtifact is how long rendered SVG/DOT artifacts stay valid.
	TTLArtifact = 24 * time.Hour

	// TTLDefault is used for entries with no better class.
	TTLDefault = time.Hour
)

// Cache is the interface for artifact cache backends.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was present
	// and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries. Backends that expire entries
	// natively (Redis) make this a no-op; the server janitor calls it on a
	// schedule for the ones that don't.
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// ArtifactKeyOpts are the render options that shape an artifact.
type ArtifactKeyOpts struct {
	// Format is the output format ("svg" or "dot").
	Format string `json:"format"`

	// Pinned reports whether the render used the nodes' stored canvas
	// positions instead of a fresh Graphviz layout.
	Pinned bool `json:"pinned"`

	// Detailed reports whether node labels carried descriptions and
	// statuses.
	Detailed bool `json:"detailed"`
}

// Keyer generates cache keys.
type Keyer interface {
	// ArtifactKey generates the key for a rendered artifact of the tree
	// with the given content hash.
	ArtifactKey(treeHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", treeHash, opts)
}
