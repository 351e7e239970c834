package epl

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samonide/epl-prediction/internal/logger"
)

// Cache stores parsed source payloads between runs. The datasource takes
// any implementation so tests can swap in the in-memory one.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, data []byte) error
}

// FileCache keeps entries as files under the configured cache directory,
// expiring them after the TTL. A zero TTL keeps entries forever.
type FileCache struct {
	Dir string
	TTL time.Duration
}

// NewFileCache builds a cache rooted at the config cache path
func NewFileCache(ttl time.Duration) *FileCache {
	return &FileCache{Dir: Config.CachePath, TTL: ttl}
}

func (c *FileCache) path(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(c.Dir, safe)
}

func (c *FileCache) Get(key string) ([]byte, bool) {
	p := c.path(key)
	info, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	if c.TTL > 0 && time.Since(info.ModTime()) > c.TTL {
		logger.Debug("Cache entry expired", key)
		os.Remove(p)
		return nil, false
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *FileCache) Put(key string, data []byte) error {
	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(c.path(key), data, 0644)
}

// MemoryCache is the test double for FileCache
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string][]byte{}}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.entries[key]
	return data, ok
}

func (c *MemoryCache) Put(key string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}
