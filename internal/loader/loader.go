// Package loader reads the files a scene references: images decoded to
// RGB8 and OBJ text. Relative paths are searched in a list of root
// directories, last added first, and file contents are cached.
package loader

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/mjscene/internal/logger"
	"github.com/Faultbox/mjscene/pkg/encoding"
)

// ErrNotFound is returned when no root holds the requested file.
var ErrNotFound = errors.New("file not found")

// Image is a decoded image in RGB8, row-major, 3 bytes per pixel.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// Manager loads files from root directories.
type Manager struct {
	roots []string
	cache *Cache
	mu    sync.RWMutex
	log   *zap.Logger
}

// NewManager creates a manager whose cache holds at most cacheEntries
// files. Zero or less disables the bound.
func NewManager(cacheEntries int) *Manager {
	return &Manager{
		cache: NewCache(cacheEntries),
		log:   logger.Named("loader"),
	}
}

// AddRoot adds a directory to search.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(dir string) error {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrapf(err, "adding root %s", dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return errors.Wrapf(err, "adding root %s", dir)
	}
	if !info.IsDir() {
		return errors.Errorf("adding root %s: not a directory", dir)
	}

	m.mu.Lock()
	m.roots = append(m.roots, dir)
	m.mu.Unlock()
	return nil
}

// Roots returns the search directories in the order they were added.
func (m *Manager) Roots() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.roots...)
}

// Resolve returns the file a scene path refers to. Absolute paths are
// used as-is.
func (m *Manager) Resolve(path string) (string, error) {
	p := filepath.FromSlash(encoding.NormalizePath(path))
	if filepath.IsAbs(p) {
		if _, err := os.Stat(p); err != nil {
			return "", errors.Wrapf(ErrNotFound, "%s", path)
		}
		return p, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.roots) - 1; i >= 0; i-- {
		full := filepath.Join(m.roots[i], p)
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			return full, nil
		}
	}
	return "", errors.Wrapf(ErrNotFound, "%s", path)
}

// Read returns a file's bytes, from the cache when possible.
func (m *Manager) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := m.Resolve(path)
	if err != nil {
		return nil, err
	}
	if data, ok := m.cache.Get(full); ok {
		return data, nil
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	m.cache.Set(full, data)
	m.log.Debug("loaded file", zap.String("path", full), zap.Int("bytes", len(data)))
	return data, nil
}

// LoadText returns a text file as UTF-8. A UTF-16 BOM is honoured.
func (m *Manager) LoadText(ctx context.Context, path string) (string, error) {
	data, err := m.Read(ctx, path)
	if err != nil {
		return "", err
	}
	return string(encoding.ToUTF8(data)), nil
}

// LoadImage decodes an image file to RGB8.
func (m *Manager) LoadImage(ctx context.Context, path string) (*Image, error) {
	data, err := m.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	img, format, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	m.log.Debug("decoded image",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height))
	return img, nil
}

// Invalidate drops a file from the cache so the next read hits disk.
func (m *Manager) Invalidate(path string) {
	if full, err := m.Resolve(path); err == nil {
		m.cache.Delete(full)
	}
	m.cache.Delete(path)
}

// Cache returns the manager's cache.
func (m *Manager) Cache() *Cache { return m.cache }

// Close drops every root and cached file.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roots = nil
	m.cache.Clear()
}

// Cache is an in-memory file cache. When full, the oldest entry is
// evicted first.
type Cache struct {
	data  map[string][]byte
	order []string
	limit int
	mu    sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a cache holding at most limit entries; zero or less
// means unbounded.
func NewCache(limit int) *Cache {
	return &Cache{
		data:  make(map[string][]byte),
		limit: limit,
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[key]; !ok {
		c.order = append(c.order, key)
	}
	c.data[key] = data
	for c.limit > 0 && len(c.order) > c.limit {
		delete(c.data, c.order[0])
		c.order = c.order[1:]
	}
}

// Delete removes an item.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[key]; !ok {
		return
	}
	delete(c.data, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of cached items.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.order = nil
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
