package dataset

import (
	"fmt"
	"sync"
)

const (
	ModeFolder = "folder"
	ModeUpload = "upload"
)

// Service tracks the active data source: a directory of CSVs served through
// the fingerprint cache, or an uploaded in-memory override. Refresh drops both
// the cache and the override.
type Service struct {
	mu       sync.RWMutex
	dir      string
	cache    *Cache
	override *Tables
}

func NewService(dir string) *Service {
	return &Service{dir: dir, cache: NewCache()}
}

func (s *Service) Tables() (*Tables, error) {
	s.mu.RLock()
	override := s.override
	s.mu.RUnlock()

	if override != nil {
		return override, nil
	}
	return s.cache.LoadDir(s.dir)
}

// SetUpload installs parsed upload tables as the active source.
func (s *Service) SetUpload(t *Tables) {
	s.mu.Lock()
	s.override = t
	s.mu.Unlock()
}

// Refresh clears the memoized load and any upload override; the next Tables
// call re-reads the directory.
func (s *Service) Refresh() {
	s.mu.Lock()
	s.override = nil
	s.mu.Unlock()
	s.cache.Invalidate()
}

func (s *Service) Mode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.override != nil {
		return ModeUpload
	}
	return ModeFolder
}

func (s *Service) Dir() string {
	return s.dir
}

// Fingerprint identifies the current source content; the reload poller
// broadcasts when it changes.
func (s *Service) Fingerprint() string {
	s.mu.RLock()
	override := s.override
	s.mu.RUnlock()

	if override != nil {
		return fmt.Sprintf("upload-%d", override.LoadedAt.UnixNano())
	}
	return DirFingerprint(s.dir)
}
