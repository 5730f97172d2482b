// Package incremental tracks source modification times between builds so
// unchanged pages can be skipped on re-export.
//
// The cache is a flat JSON object mapping absolute source paths to
// modification timestamps in seconds. It is human-inspectable and safe to
// delete to force a full rebuild.
package incremental

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/mdexport/internal/fsutil"
)

// Cache holds last-seen modification timestamps for one build. A single build
// process owns the cache; no cross-process locking is provided.
type Cache struct {
	path    string
	entries map[string]float64
	logger  *slog.Logger
}

// NewCache creates an empty cache persisted at path.
func NewCache(path string) *Cache {
	return &Cache{
		path:    path,
		entries: make(map[string]float64),
		logger:  slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (c *Cache) WithLogger(logger *slog.Logger) *Cache {
	c.logger = logger
	return c
}

// Load reads the persisted cache. A missing file yields an empty cache; a
// corrupt file is logged as a warning and treated as empty (full rebuild for
// this run). Load never fails the build.
func (c *Cache) Load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("Failed to read incremental cache, starting empty", "file", c.path, "error", err)
		}
		c.entries = make(map[string]float64)
		return
	}

	entries := make(map[string]float64)
	if err := json.Unmarshal(data, &entries); err != nil {
		c.logger.Warn("Failed to parse incremental cache, starting empty", "file", c.path, "error", err)
		c.entries = make(map[string]float64)
		return
	}

	c.entries = entries
	c.logger.Debug("Loaded incremental cache", "file", c.path, "entries", len(entries))
}

// Save persists the cache atomically. Failure is logged as a warning and
// swallowed: losing incremental state costs performance, not correctness.
func (c *Cache) Save() {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		c.logger.Warn("Failed to serialize incremental cache", "error", err)
		return
	}
	if err := fsutil.WriteFileAtomic(c.path, data, 0o644); err != nil {
		c.logger.Warn("Failed to save incremental cache", "file", c.path, "error", err)
		return
	}
	c.logger.Debug("Saved incremental cache", "file", c.path, "entries", len(c.entries))
}

// ShouldExport reports whether the source at absPath needs re-exporting: true
// when the file's current modification time is newer than the cached value,
// or when the file cannot be stat'ed (export and let the write surface any
// real error).
func (c *Cache) ShouldExport(absPath string) bool {
	info, err := os.Stat(absPath)
	if err != nil {
		return true
	}
	return mtimeSeconds(info.ModTime()) > c.entries[absPath]
}

// Update records the source's current modification time. Called only after a
// successful export.
func (c *Cache) Update(absPath string) error {
	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", absPath, err)
	}
	c.entries[absPath] = mtimeSeconds(info.ModTime())
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return len(c.entries) }

// Entries returns a copy of the cached mapping.
func (c *Cache) Entries() map[string]float64 {
	out := make(map[string]float64, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

func mtimeSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
