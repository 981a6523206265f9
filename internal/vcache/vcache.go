// Package vcache is a content-addressable cache of persisted vector
// indexes. The cache key is the SHA-256 hash of the exact text that was
// embedded, so identical chapter content never triggers a second round
// of embedding work.
//
// No locking is applied: two concurrent misses for the same content may
// both build and both write, but each write is a complete overwrite of
// the same key, so the store never holds a corrupt entry.
package vcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/focal-dev/focal/internal/logger"
	"github.com/focal-dev/focal/internal/vecindex"
)

// ErrNotCached is returned by Load when no complete index exists for the
// content.
var ErrNotCached = errors.New("no cached index for content")

// indexFile is the serialized index inside each key directory.
const indexFile = "index.db"

// Cache stores one subdirectory per content hash under root.
type Cache struct {
	root string
}

// New creates the cache root directory if needed.
func New(root string) (*Cache, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &Cache{root: root}, nil
}

// Key returns the hex-encoded SHA-256 hash of content.
func (c *Cache) Key(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.root, key)
}

// Exists reports whether a complete persisted index exists for content.
func (c *Cache) Exists(content string) bool {
	_, err := os.Stat(filepath.Join(c.entryPath(c.Key(content)), indexFile))
	return err == nil
}

// Load deserializes the persisted index for content. Returns ErrNotCached
// when no entry exists.
func (c *Cache) Load(content string) (*vecindex.Index, error) {
	key := c.Key(content)
	path := filepath.Join(c.entryPath(key), indexFile)
	if _, err := os.Stat(path); err != nil {
		return nil, ErrNotCached
	}

	ix, err := vecindex.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load cached index %s: %w", key[:16], err)
	}
	logger.Debug("cache hit for key %s...", key[:16])
	return ix, nil
}

// Save persists the index under the content's key. The index is written
// to a temporary directory first and renamed into place, so a partially
// written entry is never observed under the key.
func (c *Cache) Save(content string, ix *vecindex.Index) error {
	key := c.Key(content)

	tmp, err := os.MkdirTemp(c.root, key[:16]+"-tmp-")
	if err != nil {
		return fmt.Errorf("create temp entry: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := ix.SaveTo(filepath.Join(tmp, indexFile)); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	final := c.entryPath(key)
	if err := os.RemoveAll(final); err != nil {
		return fmt.Errorf("replace entry: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("commit entry: %w", err)
	}

	logger.Debug("cached index under key %s...", key[:16])
	return nil
}

// BuildFunc computes a fresh index for content on a cache miss.
type BuildFunc func(ctx context.Context) (*vecindex.Index, error)

// GetOrCreate returns the cached index for content, building and
// persisting a fresh one on a miss. The build function is invoked only
// on a miss. A failed save is logged and otherwise ignored: the caller
// already holds the in-memory index.
func (c *Cache) GetOrCreate(ctx context.Context, content string, build BuildFunc) (*vecindex.Index, bool, error) {
	ix, err := c.Load(content)
	if err == nil {
		return ix, true, nil
	}
	if !errors.Is(err, ErrNotCached) {
		logger.Warn("cache load failed, rebuilding: %v", err)
	}

	ix, err = build(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := c.Save(content, ix); err != nil {
		logger.Warn("cache save failed (continuing with in-memory index): %v", err)
	}

	return ix, false, nil
}

// isKey reports whether name is a hex-encoded SHA-256 key. Anything
// else under root (a temp directory orphaned by a crashed Save, a stray
// file) is not a cache entry.
func isKey(name string) bool {
	if len(name) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(name)
	return err == nil
}

// Clear removes cache entries. With maxAgeDays <= 0 every entry is
// removed; otherwise only entries whose directory is older than
// maxAgeDays. Orphaned temp directories are swept but not counted.
// Returns the number of entries removed.
func (c *Cache) Clear(maxAgeDays int) (int, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return 0, fmt.Errorf("read cache dir: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if !isKey(e.Name()) {
			if err := os.RemoveAll(filepath.Join(c.root, e.Name())); err != nil {
				logger.Warn("failed to sweep stale dir %s: %v", e.Name(), err)
			}
			continue
		}
		if maxAgeDays > 0 {
			info, err := e.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
		}
		if err := os.RemoveAll(filepath.Join(c.root, e.Name())); err != nil {
			logger.Warn("failed to remove cache entry %s: %v", e.Name(), err)
			continue
		}
		removed++
	}

	logger.Info("cache cleared: %d entries removed", removed)
	return removed, nil
}

// Stats describes the cache contents.
type Stats struct {
	Root      string `json:"root"`
	Entries   int    `json:"entries"`
	SizeBytes int64  `json:"size_bytes"`
}

// Stats walks the cache and reports entry count and total size.
func (c *Cache) Stats() (*Stats, error) {
	st := &Stats{Root: c.root}

	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("read cache dir: %w", err)
	}

	for _, e := range entries {
		if !e.IsDir() || !isKey(e.Name()) {
			continue
		}
		st.Entries++
		filepath.WalkDir(filepath.Join(c.root, e.Name()), func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if info, err := d.Info(); err == nil {
				st.SizeBytes += info.Size()
			}
			return nil
		})
	}

	return st, nil
}
