package framework

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheSize bounds the detection cache when the caller passes zero.
const defaultCacheSize = 128

// Cache memoizes framework detection per project root. Editor integrations
// re-check files on every keystroke; reading package.json each time would
// dominate the analysis cost.
type Cache struct {
	entries *lru.Cache[string, string]
}

// NewCache builds a detection cache with the given capacity; zero or negative
// capacity falls back to the default.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = defaultCacheSize
	}

	entries, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}

	return &Cache{entries: entries}, nil
}

// Get returns the cached framework for a project root.
func (c *Cache) Get(root string) (string, bool) {
	return c.entries.Get(root)
}

// Set records the framework for a project root.
func (c *Cache) Set(root, name string) {
	c.entries.Add(root, name)
}

// Clear drops every cached entry. Editor integrations call this when
// package.json changes on disk.
func (c *Cache) Clear() {
	c.entries.Purge()
}

// Detect resolves the framework for the project containing dir, consulting
// the cache by project root.
func (c *Cache) Detect(dir string) string {
	root := ProjectRoot(dir)
	if root == "" {
		return Unknown
	}

	if name, ok := c.entries.Get(root); ok {
		return name
	}

	name, _ := DetectRoot(dir)
	c.entries.Add(root, name)

	return name
}
