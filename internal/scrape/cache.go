package scrape

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/domain"
)

const cacheFileName = "scrape_cache.json"

type cacheEntry struct {
	Data      *domain.ScrapedData `json:"data"`
	Timestamp int64               `json:"timestamp"`
}

// Cache is a JSON-file cache of scraped product data keyed by SKU, so
// unchanged products are not re-scraped every cycle.
type Cache struct {
	path    string
	entries map[string]cacheEntry
	logger  *zap.Logger

	now func() time.Time // overridable in tests
}

// NewCache loads the cache from dir, starting fresh if the file is missing
// or corrupt.
func NewCache(dir string, logger *zap.Logger) *Cache {
	c := &Cache{
		path:    filepath.Join(dir, cacheFileName),
		entries: map[string]cacheEntry{},
		logger:  logger,
		now:     time.Now,
	}
	c.load()
	return c
}

func (c *Cache) load() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("Failed to read scrape cache, starting fresh", zap.Error(err))
		}
		return
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		c.logger.Warn("Failed to parse scrape cache, starting fresh", zap.Error(err))
		c.entries = map[string]cacheEntry{}
		return
	}

	c.logger.Info("Loaded scrape cache", zap.Int("entries", len(c.entries)))
}

// Save writes the cache atomically (temp file + rename).
func (c *Cache) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scrape cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), "scrape_cache*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	c.logger.Debug("Saved scrape cache", zap.Int("entries", len(c.entries)))
	return nil
}

// Get returns the cached scrape data for a SKU, nil if not cached.
func (c *Cache) Get(sku string) *domain.ScrapedData {
	entry, ok := c.entries[sku]
	if !ok {
		return nil
	}
	return entry.Data
}

// Set stores scrape data for a SKU with the current timestamp.
func (c *Cache) Set(sku string, data *domain.ScrapedData) {
	c.entries[sku] = cacheEntry{
		Data:      data,
		Timestamp: c.now().Unix(),
	}
}

// IsStale reports whether the entry is missing or older than maxAge.
func (c *Cache) IsStale(sku string, maxAge time.Duration) bool {
	entry, ok := c.entries[sku]
	if !ok {
		return true
	}
	age := c.now().Sub(time.Unix(entry.Timestamp, 0))
	return age > maxAge
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}
