package status

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is how long a cached status stays trustworthy. Registration
// listings are slow (the CLI health-checks every server), so five minutes
// of staleness is an acceptable trade.
const DefaultTTL = 300 * time.Second

// Key builds the cache key for one unit/CLI pair.
func Key(unitName, cliTool string) string {
	return unitName + ":" + cliTool
}

type cacheEntry struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

type cacheFile struct {
	Statuses map[string]cacheEntry `json:"statuses"`
}

// Cache persists statuses to a single JSON file. It is a convenience
// cache, not a source of truth: any read can fail to a cold cache and the
// caller recomputes. Concurrent writers race last-writer-wins, which only
// costs a redundant external check.
type Cache struct {
	path string
	ttl  time.Duration
	log  *zap.Logger
	now  func() time.Time
}

func NewCache(path string, log *zap.Logger) *Cache {
	return NewCacheTTL(path, DefaultTTL, log)
}

// NewCacheTTL is the test seam for the staleness bound.
func NewCacheTTL(path string, ttl time.Duration, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{path: path, ttl: ttl, log: log.Named("cache"), now: time.Now}
}

// Get returns the cached status for key, or false when the file is
// missing, unreadable, unparsable, the entry is unknown, names no valid
// status, or is older than the TTL. It never returns an error: a broken
// cache is just a cold cache.
func (c *Cache) Get(key string) (Status, bool) {
	entry, ok := c.read().Statuses[key]
	if !ok {
		return "", false
	}
	if c.now().Unix()-entry.Timestamp > int64(c.ttl.Seconds()) {
		return "", false
	}
	return Parse(entry.Status)
}

// Set upserts key with the current timestamp.
func (c *Cache) Set(key string, s Status) {
	data := c.read()
	data.Statuses[key] = cacheEntry{Status: string(s), Timestamp: c.now().Unix()}
	c.write(data)
}

// Invalidate removes a single entry. Missing keys are a no-op.
func (c *Cache) Invalidate(key string) {
	data := c.read()
	if _, ok := data.Statuses[key]; !ok {
		return
	}
	delete(data.Statuses, key)
	c.write(data)
}

// InvalidateAll clears every entry.
func (c *Cache) InvalidateAll() {
	c.write(cacheFile{Statuses: map[string]cacheEntry{}})
}

func (c *Cache) read() cacheFile {
	data := cacheFile{Statuses: map[string]cacheEntry{}}

	raw, err := os.ReadFile(c.path)
	if err != nil {
		return data
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		c.log.Debug("unreadable status cache, treating as empty",
			zap.String("path", c.path), zap.Error(err))
		return cacheFile{Statuses: map[string]cacheEntry{}}
	}
	if data.Statuses == nil {
		data.Statuses = map[string]cacheEntry{}
	}
	return data
}

// write replaces the cache file atomically so a concurrent reader never
// sees a half-written document.
func (c *Cache) write(data cacheFile) {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		c.log.Warn("cannot create cache directory", zap.Error(err))
		return
	}

	tmp := fmt.Sprintf("%s.tmp.%d", c.path, os.Getpid())
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		c.log.Warn("cannot write status cache", zap.Error(err))
		return
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		c.log.Warn("cannot replace status cache", zap.Error(err))
	}
}
