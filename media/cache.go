package media

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lalibi/rodi-kremastos/logging"
	"github.com/pkg/errors"
)

// Cache keeps discovered sections in memory with a TTL.
type Cache struct {
	mu      sync.RWMutex
	lib     *Library
	ttl     time.Duration
	entries map[Section]cacheEntry
}

type cacheEntry struct {
	items   []Item
	fetched time.Time
}

// NewCache creates a Cache backed by lib.
func NewCache(lib *Library, ttl time.Duration) *Cache {
	return &Cache{lib: lib, ttl: ttl, entries: make(map[Section]cacheEntry)}
}

func (c *Cache) lookup(section Section) ([]Item, bool) {
	e, ok := c.entries[section]
	if !ok || time.Since(e.fetched) >= c.ttl {
		return nil, false
	}
	return e.items, true
}

// Items returns the section gallery, discovering it again once the entry has
// expired. It tries a read lock first; only takes a write lock to reload.
func (c *Cache) Items(ctx context.Context, section Section) ([]Item, error) {
	c.mu.RLock()
	items, ok := c.lookup(section)
	c.mu.RUnlock()
	if ok {
		return items, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if items, ok := c.lookup(section); ok {
		return items, nil
	}
	items, err := c.lib.Discover(ctx, section)
	if err != nil {
		return nil, err
	}
	c.entries[section] = cacheEntry{items: items, fetched: time.Now()}
	return items, nil
}

// Invalidate clears the cache so the next read triggers a fresh discovery.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[Section]cacheEntry)
	c.mu.Unlock()
}

// Watch invalidates the cache whenever a file under the library root
// changes. It blocks until ctx is done.
func (c *Cache) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating media watcher")
	}
	defer watcher.Close()

	dirs := []string{c.lib.Root}
	for _, sec := range Sections {
		dirs = append(dirs, filepath.Join(c.lib.Root, string(sec)))
	}
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return errors.Wrapf(err, "watching %s", dir)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			logging.Debug("media changed", "path", event.Name, "op", event.Op.String())
			if event.Has(fsnotify.Create) && c.isSectionDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					logging.Warn("watching new section", "dir", event.Name, "err", err)
				}
			}
			c.Invalidate()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("media watcher", "err", err)
		}
	}
}

func (c *Cache) isSectionDir(name string) bool {
	if filepath.Clean(filepath.Dir(name)) != filepath.Clean(c.lib.Root) {
		return false
	}
	if _, err := ParseSection(filepath.Base(name)); err != nil {
		return false
	}
	info, err := os.Stat(name)
	return err == nil && info.IsDir()
}
