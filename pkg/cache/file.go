package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache keeps layouts, resolved child lists, and snapshots warm
// between CLI invocations. Entries live under one subdirectory per
// entry kind (layout/, resolve/, snapshot/), so the cache directory
// stays inspectable and `orbit cache clear` reports what it removed.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-backed cache rooted at dir, creating it
// if needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// fileEntry is the on-disk envelope around a cached payload.
type fileEntry struct {
	Kind      string    `json:"kind"`
	Payload   []byte    `json:"payload"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Get reads the entry for key. Expired or unreadable entries are
// removed and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Payload, true, nil
}

// Set writes the entry for key. A zero TTL stores it without expiry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{
		Kind:     entryKind(key),
		Payload:  data,
		StoredAt: time.Now(),
	}
	if ttl > 0 {
		entry.ExpiresAt = entry.StoredAt.Add(ttl)
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0644)
}

// Delete removes the entry for key. A missing entry is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close is a no-op; files need no teardown.
func (c *FileCache) Close() error {
	return nil
}

// entryKind maps a cache key to its kind subdirectory. Keys carry a
// readable kind prefix (see hashKey); anything else lands in misc.
func entryKind(key string) string {
	switch kind, _, _ := strings.Cut(key, ":"); kind {
	case "layout", "resolve", "snapshot":
		return kind
	default:
		return "misc"
	}
}

// path places the entry under its kind directory, named by the key's
// digest so arbitrary key characters never reach the filesystem.
func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, entryKind(key), Hash([]byte(key))+".json")
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
