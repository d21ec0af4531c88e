package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Module is one loaded set of plugin paths.
type Module struct {
	Key         string
	Paths       []string
	Descriptors []Descriptor
}

// Cache memoizes loaded modules by their canonical path set. Concurrent requests
// for the same set share one load.
type Cache struct {
	loader Loader

	mu      sync.Mutex
	modules map[string]*Module
	group   singleflight.Group
}

func NewCache(loader Loader) *Cache {
	return &Cache{loader: loader, modules: map[string]*Module{}}
}

var defaultCache = NewCache(SharedObjectLoader{})

// Default is the process wide cache backed by SharedObjectLoader. Go plugins can
// only be opened once per process.
func Default() *Cache {
	return defaultCache
}

// CanonicalPaths makes paths absolute and clean, drops duplicates and sorts them.
func CanonicalPaths(paths []string) ([]string, error) {
	canonical := make([]string, 0, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve plugin path %s: %w", path, err)
		}
		canonical = append(canonical, filepath.Clean(abs))
	}
	slices.Sort(canonical)
	return slices.Compact(canonical), nil
}

func Key(paths []string) (string, error) {
	canonical, err := CanonicalPaths(paths)
	if err != nil {
		return "", err
	}
	return strings.Join(canonical, string(os.PathListSeparator)), nil
}

func (c *Cache) lookup(key string) (*Module, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	module, ok := c.modules[key]
	return module, ok
}

// Get returns the module for paths, loading it on first use. Failed loads are not cached.
func (c *Cache) Get(paths []string) (*Module, error) {
	canonical, err := CanonicalPaths(paths)
	if err != nil {
		return nil, err
	}
	key := strings.Join(canonical, string(os.PathListSeparator))
	if module, ok := c.lookup(key); ok {
		return module, nil
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		if module, ok := c.lookup(key); ok {
			return module, nil
		}
		descriptors, err := c.loader.Load(canonical)
		if err != nil {
			return nil, err
		}
		module := &Module{Key: key, Paths: canonical, Descriptors: descriptors}
		c.mu.Lock()
		c.modules[key] = module
		c.mu.Unlock()
		return module, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*Module), nil
}
