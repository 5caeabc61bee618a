// Package cache provides caching for layout results, resolved child names,
// and session snapshots.
//
// The Cache interface abstracts the storage backend (file-based for CLI
// usage, Redis for server deployments, or null for disabled caching). The
// Keyer interface generates deterministic cache keys from domain inputs so
// identical requests hit the same entry across processes.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Default TTLs per entry kind. Layouts are pure functions of their inputs
// and could live forever; they still expire so tuning changes roll out.
const (
	// TTLResolve is the expiration for resolved child-name lists.
	TTLResolve = 24 * time.Hour

	// TTLLayout is the expiration for computed layouts.
	TTLLayout = 7 * 24 * time.Hour

	// TTLSnapshot is the expiration for session snapshots kept in cache.
	TTLSnapshot = 30 * 24 * time.Hour
)

// Cache is the storage backend interface.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present; absence is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ResolveKeyOpts captures the inputs that change a resolve result.
type ResolveKeyOpts struct {
	Ancestors []string `json:"ancestors"`
	Limit     int      `json:"limit"`
}

// LayoutKeyOpts captures the tuning inputs that change a layout result.
type LayoutKeyOpts struct {
	Iterations   int     `json:"iterations"`
	PairMargin   float64 `json:"pair_margin"`
	CenterMargin float64 `json:"center_margin"`
	Pull         float64 `json:"pull"`
	Seed         uint64  `json:"seed"`
}

// Keyer generates cache keys from domain inputs.
type Keyer interface {
	// ResolveKey generates a key for a resolved child-name list.
	ResolveKey(name string, opts ResolveKeyOpts) string

	// LayoutKey generates a key for a computed layout. itemsHash is a
	// digest of the item set (ids, names, seed positions).
	LayoutKey(center string, itemsHash string, opts LayoutKeyOpts) string

	// SnapshotKey generates a key for a session snapshot.
	SnapshotKey(id string) string
}

// DefaultKeyer is the standard key generator.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard key generator.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ResolveKey generates a key for a resolved child-name list.
func (k *DefaultKeyer) ResolveKey(name string, opts ResolveKeyOpts) string {
	return hashKey("resolve", name, opts)
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(center string, itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", center, itemsHash, opts)
}

// SnapshotKey generates a key for a session snapshot.
func (k *DefaultKeyer) SnapshotKey(id string) string {
	return "snapshot:" + id
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)

// hashKey builds a "<kind>:<sha256>" key from the kind prefix and the
// JSON encoding of parts. The kind prefix stays readable so backends
// can group entries by what they hold; the digest carries the identity.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return kind + ":" + hex.EncodeToString(sum[:])
}

// Hash digests data to a 64-character hex string. Callers use it to
// fold variable-size inputs (item lists, trees) into a fixed key part.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NullCache discards writes and misses every read. It backs the
// "none" config backend and keeps call sites free of nil checks.
type NullCache struct{}

// NewNullCache creates a cache that never stores anything.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (NullCache) Delete(ctx context.Context, key string) error { return nil }

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
