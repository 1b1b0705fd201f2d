// Package diskcache implements the disk-backed TTL cache.
//
// Every entry lives in its own file inside a dedicated directory, so
// the cache survives process death and relaunch. The cache is strictly
// best-effort: reads degrade to misses, writes degrade to no-ops, and
// no operation ever returns an error to the caller.
package diskcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/schema"
)

// entryExt is the extension for cache entry files.
const entryExt = ".json"

// FileCache is a disk-backed key/value cache with per-entry expiry.
// Expiry is lazy: entries self-expire when read, with SweepExpired as a
// belt-and-suspenders cleanup for keys that are never read again.
type FileCache struct {
	mu  sync.Mutex // single owner serializes all mutations
	dir string
	now func() time.Time
}

var _ contract.Cache = &FileCache{} // Compile-time check

// New creates a cache rooted at dir, creating the directory if needed.
func New(dir string) *FileCache {
	return NewWithClock(dir, time.Now)
}

// NewWithClock creates a cache with an injected time source so tests
// can simulate the passage of time.
func NewWithClock(dir string, now func() time.Time) *FileCache {
	// Best-effort: if the directory cannot be created, every read is a
	// miss and every write a no-op, which callers must tolerate anyway.
	_ = os.MkdirAll(dir, 0o755)
	return &FileCache{dir: dir, now: now}
}

// entryPath maps a caller-supplied key to its storage location. Keys
// are sanitized first so arbitrary strings cannot escape the directory.
func (c *FileCache) entryPath(key string) string {
	return filepath.Join(c.dir, contract.SanitizeKey(key)+entryExt)
}

// Get reads the persisted entry for key. Absent, unreadable,
// undecodable and expired entries all report a miss; the latter two are
// deleted on the way out so they cannot poison later reads.
func (c *FileCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.entryPath(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry schema.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Corrupt entry, likely a partial write. Treat as a miss and
		// delete it so the next read does not trip over it again.
		_ = os.Remove(path)
		return nil, false
	}

	if entry.Expired(c.now()) {
		_ = os.Remove(path)
		return nil, false
	}
	return entry.Value, true
}

// Set writes {value, now, ttl} for key, fully replacing any prior
// entry. Write failures are swallowed: the cache is an optimization,
// never a source of truth, and callers must tolerate misses.
func (c *FileCache) Set(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := schema.CacheEntry{
		Value:    value,
		StoredAt: c.now(),
		TTL:      ttl,
	}
	raw, err := json.Marshal(&entry)
	if err != nil {
		return
	}
	// Deliberately discarded: a failed write just means a future miss.
	_ = os.WriteFile(c.entryPath(key), raw, 0o644)
}

// Invalidate removes one entry; no-op if absent.
func (c *FileCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = os.Remove(c.entryPath(key))
}

// InvalidatePrefix removes every entry whose key starts with prefix.
// Used to bulk-expire a category (e.g. all search results) without
// tracking individual keys. Sanitization is character-wise, so a key
// prefix always maps to a filename prefix.
func (c *FileCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sanitized := contract.SanitizeKey(prefix)
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}
	for _, ent := range entries {
		name := ent.Name()
		if !strings.HasSuffix(name, entryExt) {
			continue
		}
		if strings.HasPrefix(strings.TrimSuffix(name, entryExt), sanitized) {
			_ = os.Remove(filepath.Join(c.dir, name))
		}
	}
}

// InvalidateAll removes every entry and recreates an empty backing store.
func (c *FileCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = os.RemoveAll(c.dir)
	_ = os.MkdirAll(c.dir, 0o755)
}

// SweepExpired scans all entries and deletes those past their TTL,
// returning a count. Corrupt entries are removed and counted as well.
// Intended to run opportunistically (e.g. on app start); reads
// self-expire lazily either way.
func (c *FileCache) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0
	}

	now := c.now()
	removed := 0
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() || !strings.HasSuffix(name, entryExt) {
			continue
		}
		path := filepath.Join(c.dir, name)
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var entry schema.CacheEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			if os.Remove(path) == nil {
				removed++
			}
			continue
		}
		if entry.Expired(now) {
			if os.Remove(path) == nil {
				removed++
			}
		}
	}
	return removed
}

// Entries lists per-entry metadata for diagnostics, newest first.
// Entries that fail to decode are skipped rather than deleted; the
// sweep handles those.
func (c *FileCache) Entries() []schema.CacheEntryInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil
	}

	now := c.now()
	var infos []schema.CacheEntryInfo
	for _, ent := range dirEntries {
		name := ent.Name()
		if ent.IsDir() || !strings.HasSuffix(name, entryExt) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(c.dir, name))
		if err != nil {
			continue
		}
		var entry schema.CacheEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		info := schema.CacheEntryInfo{
			Key:       strings.TrimSuffix(name, entryExt),
			StoredAt:  entry.StoredAt,
			TTL:       entry.TTL,
			SizeBytes: int64(len(raw)),
		}
		if entry.TTL > 0 {
			info.AgeRatio = float64(now.Sub(entry.StoredAt)) / float64(entry.TTL)
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].StoredAt.After(infos[j].StoredAt)
	})
	return infos
}

// Status returns entry count and total bytes on disk, for diagnostics only.
func (c *FileCache) Status() schema.CacheStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := schema.CacheStatus{Directory: c.dir}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return status
	}
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), entryExt) {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		status.TotalEntries++
		status.TotalSizeBytes += info.Size()
		mod := info.ModTime()
		if status.LastEntryTime.IsZero() || mod.After(status.LastEntryTime) {
			status.LastEntryTime = mod
		}
		if status.OldestEntryTime.IsZero() || mod.Before(status.OldestEntryTime) {
			status.OldestEntryTime = mod
		}
	}
	return status
}
