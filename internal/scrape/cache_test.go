package scrape

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Triple-C-BE/wimood/internal/domain"
)

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir, zap.NewNop())

	assert.Nil(t, c.Get("W1"))
	assert.True(t, c.IsStale("W1", time.Hour))

	c.Set("W1", &domain.ScrapedData{
		Description: "<p>desc</p>",
		Images:      []string{"a.jpg"},
		Specs:       map[string]string{"color": "black"},
	})
	require.NoError(t, c.Save())

	// A fresh cache instance reads the saved file.
	reloaded := NewCache(dir, zap.NewNop())
	assert.Equal(t, 1, reloaded.Len())
	data := reloaded.Get("W1")
	require.NotNil(t, data)
	assert.Equal(t, "<p>desc</p>", data.Description)
	assert.Equal(t, []string{"a.jpg"}, data.Images)
	assert.False(t, reloaded.IsStale("W1", time.Hour))
}

func TestCacheStaleness(t *testing.T) {
	c := NewCache(t.TempDir(), zap.NewNop())

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("W1", &domain.ScrapedData{Description: "old"})

	c.now = func() time.Time { return now.Add(8 * 24 * time.Hour) }
	assert.True(t, c.IsStale("W1", 7*24*time.Hour))

	c.now = func() time.Time { return now.Add(6 * 24 * time.Hour) }
	assert.False(t, c.IsStale("W1", 7*24*time.Hour))
}

func TestCacheCorruptFileStartsFresh(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, cacheFileName), []byte("{not json"), 0o644))

	c := NewCache(dir, zap.NewNop())
	assert.Equal(t, 0, c.Len())

	// And saving over the corrupt file works.
	c.Set("W1", &domain.ScrapedData{Description: "x"})
	require.NoError(t, c.Save())
	assert.Equal(t, 1, NewCache(dir, zap.NewNop()).Len())
}

func TestCacheSaveCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	c := NewCache(dir, zap.NewNop())
	c.Set("W1", &domain.ScrapedData{Description: "x"})
	require.NoError(t, c.Save())

	_, err := os.Stat(filepath.Join(dir, cacheFileName))
	assert.NoError(t, err)
}
