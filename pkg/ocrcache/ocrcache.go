// Package ocrcache stores external API responses on disk, addressed by a
// content hash of the request that produced them.
//
// Keys are derived from the request parameters plus the document chunk's
// content hash, so a cache entry is reused only for the exact same call
// against the exact same bytes. Entries are written through a temporary
// file and renamed into place, keeping at most one file per key even under
// concurrent writers.
package ocrcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Cache is an on-disk response cache rooted at a directory. The zero value
// and a cache with an empty directory are both disabled: every lookup
// misses and writes are dropped.
type Cache struct {
	dir string
}

// New returns a cache rooted at dir. An empty dir disables caching.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Key hashes the given request parameters into a cache key.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached entry for name, or ok=false on a miss. Unreadable
// entries count as misses.
func (c *Cache) Get(name string) ([]byte, bool) {
	if c == nil || c.dir == "" {
		return nil, false
	}
	path := filepath.Join(c.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	logrus.Debugf("Loaded from cache: %s", path)
	return data, true
}

// Put stores data under name. The write is atomic: concurrent writers for
// the same key leave exactly one entry behind.
func (c *Cache) Put(name string, data []byte) error {
	if c == nil || c.dir == "" {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, name+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create cache temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cache temp file: %w", err)
	}

	path := filepath.Join(c.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	logrus.Debugf("Saved to cache: %s", path)
	return nil
}
