// Package cache stores generated masks and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: stores nothing, for --no-cache
//
// # Keys
//
// A [Keyer] derives keys from everything that affects an entry: a mask key
// covers the grid and every generator option, an artifact key covers the
// mask's content hash and the encoding options. Keys embed a version so
// entries written by an incompatible build are never read back.
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries. Masks are deterministic in their options, so they
// only expire to bound disk use.
const (
	TTLMask     = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// keyVersion changes whenever the generator's output for the same options
// changes.
const keyVersion = "v1"

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the entry stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the entry under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// MaskKeyOpts holds every option that affects a generated mask.
type MaskKeyOpts struct {
	Dims          []int   `json:"dims"`
	Sigma         float64 `json:"sigma"`
	SeedFraction  float64 `json:"seed_fraction"`
	Seed          uint64  `json:"seed"`
	MaxIterations int     `json:"max_iterations"`
}

// ArtifactKeyOpts holds every option that affects an encoded artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Depth  int     `json:"depth"`
	Level  float64 `json:"level"`
}

// Keyer derives cache keys.
type Keyer interface {
	MaskKey(opts MaskKeyOpts) string
	ArtifactKey(maskHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// MaskKey returns the key of a generated mask.
func (DefaultKeyer) MaskKey(opts MaskKeyOpts) string {
	return hashKey("mask", keyVersion, opts)
}

// ArtifactKey returns the key of an encoded artifact of the mask with the
// given content hash.
func (DefaultKeyer) ArtifactKey(maskHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", keyVersion, maskHash, opts)
}

var _ Keyer = DefaultKeyer{}
