package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// fileFingerprint returns a string that changes whenever the file's content
// changes on disk (modification time + size), or "missing" when it is absent.
func fileFingerprint(path string) string {
	st, err := os.Stat(path)
	if err != nil {
		return "missing"
	}
	return fmt.Sprintf("%d-%d", st.ModTime().UnixNano(), st.Size())
}

// DirFingerprint combines the fingerprints of all three source files, so a
// change to any of them (including the optional index) invalidates the load.
func DirFingerprint(dir string) string {
	parts := []string{
		fileFingerprint(filepath.Join(dir, PlaysFile)),
		fileFingerprint(filepath.Join(dir, PlayersFile)),
		fileFingerprint(filepath.Join(dir, IndexFile)),
	}
	return strings.Join(parts, "|")
}

type cacheEntry struct {
	fingerprint string
	tables      *Tables
}

// Cache memoizes LoadDir results keyed by directory. An entry is served only
// while the directory fingerprint is unchanged; Invalidate drops everything.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

func (c *Cache) LoadDir(dir string) (*Tables, error) {
	fp := DirFingerprint(dir)

	c.mu.Lock()
	if e, ok := c.entries[dir]; ok && e.fingerprint == fp {
		c.mu.Unlock()
		return e.tables, nil
	}
	c.mu.Unlock()

	// Parse outside the lock; loads are idempotent so a racing duplicate load
	// is harmless.
	tables, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[dir] = &cacheEntry{fingerprint: fp, tables: tables}
	c.mu.Unlock()
	return tables, nil
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}
