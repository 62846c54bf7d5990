// Package httpcache caches downloaded documents in memory, optionally
// snapshotting them to disk, and fetches them with retries.
package httpcache

import (
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

const snapshotName = "tzgrid-cache.gob"

// Entry is a cached response body.
type Entry struct {
	ExpiresAt time.Time
	ETag      string
	Data      []byte
}

// OtterCache holds response bodies keyed by URL.
type OtterCache struct {
	cache      *otter.Cache[string, Entry]
	logger     *slog.Logger
	saveCancel context.CancelFunc
	dir        string
	saveWg     sync.WaitGroup
	ttl        time.Duration
	mu         sync.Mutex
}

func newCache(ttl time.Duration, logger *slog.Logger) *OtterCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &OtterCache{
		cache: otter.Must(&otter.Options[string, Entry]{
			MaximumSize:      1_000,
			InitialCapacity:  16,
			ExpiryCalculator: otter.ExpiryWriting[string, Entry](ttl),
		}),
		ttl:    ttl,
		logger: logger,
	}
}

// NewMemoryOnlyCache returns a cache that is never written to disk.
func NewMemoryOnlyCache(ttl time.Duration, logger *slog.Logger) *OtterCache {
	return newCache(ttl, logger)
}

// NewOtterCache returns a cache persisted under dir. Entries saved by a
// previous run are loaded if they have not expired, and the cache is saved
// periodically until ctx is done or Close is called.
func NewOtterCache(ctx context.Context, dir string, ttl time.Duration, logger *slog.Logger) (*OtterCache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	c := newCache(ttl, logger)
	c.dir = dir

	if err := c.loadFromDisk(); err != nil {
		c.logger.Warn("failed to load cache from disk", "error", err)
	}
	c.logger.Info("cache initialized", "dir", dir, "entries_loaded", c.cache.EstimatedSize())

	c.startPeriodicSave(ctx)
	return c, nil
}

func key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

// Get returns the cached body and ETag for url.
func (c *OtterCache) Get(url string) (data []byte, etag string, ok bool) {
	k := key(url)
	entry, found := c.cache.GetIfPresent(k)
	if !found {
		c.logger.Debug("cache miss", "url", url)
		return nil, "", false
	}
	if time.Now().After(entry.ExpiresAt) {
		c.logger.Debug("cache miss", "url", url, "reason", "expired", "expired_at", entry.ExpiresAt)
		c.cache.Invalidate(k)
		return nil, "", false
	}
	return entry.Data, entry.ETag, true
}

// Set stores a body for url.
func (c *OtterCache) Set(url string, data []byte, etag string) {
	entry := Entry{Data: data, ETag: etag, ExpiresAt: time.Now().Add(c.ttl)}
	c.cache.Set(key(url), entry)
	c.logger.Debug("cache set", "url", url, "expires_at", entry.ExpiresAt, "size", len(data))
}

// Len reports the approximate number of cached entries.
func (c *OtterCache) Len() int {
	return c.cache.EstimatedSize()
}

func (c *OtterCache) snapshotPath() string {
	return filepath.Join(c.dir, snapshotName)
}

func (c *OtterCache) loadFromDisk() error {
	file, err := os.Open(c.snapshotPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening cache file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			c.logger.Debug("failed to close cache file", "error", err)
		}
	}()

	var entries map[string]Entry
	if err := gob.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("decoding cache file: %w", err)
	}

	now := time.Now()
	valid := 0
	for k, entry := range entries {
		if now.Before(entry.ExpiresAt) {
			c.cache.Set(k, entry)
			valid++
		}
	}
	c.logger.Debug("loaded cache from disk", "total_entries", len(entries), "valid_entries", valid)
	return nil
}

func (c *OtterCache) saveToDisk() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.snapshotPath()
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	defer func() {
		if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
			c.logger.Debug("failed to remove temp file", "error", err)
		}
	}()

	entries := make(map[string]Entry)
	now := time.Now()
	for k, entry := range c.cache.All() {
		if now.Before(entry.ExpiresAt) {
			entries[k] = entry
		}
	}

	if err := gob.NewEncoder(file).Encode(entries); err != nil {
		_ = file.Close() //nolint:errcheck // already failing
		return fmt.Errorf("encoding cache to file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}

	c.logger.Debug("cache saved to disk", "entries", len(entries), "path", path)
	return nil
}

func (c *OtterCache) startPeriodicSave(ctx context.Context) {
	saveCtx, cancel := context.WithCancel(ctx)
	c.saveCancel = cancel

	c.saveWg.Add(1)
	go func() {
		defer c.saveWg.Done()

		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-saveCtx.Done():
				return
			case <-ticker.C:
				if err := c.saveToDisk(); err != nil {
					c.logger.Error("periodic cache save failed", "error", err)
				}
			}
		}
	}()
}

// Close stops periodic saving and writes a final snapshot.
// It is a no-op for memory-only caches.
func (c *OtterCache) Close() error {
	if c.dir == "" {
		return nil
	}
	if c.saveCancel != nil {
		c.saveCancel()
	}
	c.saveWg.Wait()

	if err := c.saveToDisk(); err != nil {
		return fmt.Errorf("final cache save: %w", err)
	}
	return nil
}
