package store

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// entry is a single stored item: a blob or a directory marker.
type entry struct {
	mode fs.FileMode
	dir  bool
	data []byte
}

// MemoryStore keeps all entries in a map. It is the simplest Store and the
// usual base layer for an OverlayStore.
type MemoryStore struct {
	entries map[string]entry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry)}
}

func (s *MemoryStore) ReadContent(p string) ([]byte, error) {
	e, ok := s.entries[path.Clean(p)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchFile, p)
	}
	if e.dir {
		return nil, fmt.Errorf("%w: %s", ErrIsDirectory, p)
	}
	return e.data, nil
}

func (s *MemoryStore) FileMode(p string) (fs.FileMode, error) {
	e, ok := s.entries[path.Clean(p)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoSuchFile, p)
	}
	return e.mode, nil
}

func (s *MemoryStore) IterSubpaths(p string) ([]string, error) {
	p = path.Clean(p)
	var subs []string
	for key := range s.entries {
		if isSubpath(p, key) {
			subs = append(subs, key)
		}
	}
	sort.Strings(subs)
	return subs, nil
}

func (s *MemoryStore) WriteContent(p string, mode fs.FileMode, data []byte) error {
	s.entries[path.Clean(p)] = entry{mode: mode, data: append([]byte(nil), data...)}
	return nil
}

func (s *MemoryStore) Mkdir(p string, mode fs.FileMode) error {
	s.entries[path.Clean(p)] = entry{mode: mode, dir: true}
	return nil
}

func (s *MemoryStore) Rename(oldPath, newPath string) error {
	oldPath = path.Clean(oldPath)
	newPath = path.Clean(newPath)
	if _, ok := s.entries[oldPath]; !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchFile, oldPath)
	}
	moved := make(map[string]entry)
	for key, e := range s.entries {
		if isSubpath(oldPath, key) {
			moved[rebase(key, oldPath, newPath)] = e
			delete(s.entries, key)
		}
	}
	for key, e := range moved {
		s.entries[key] = e
	}
	return nil
}

func (s *MemoryStore) Rmtree(p string) error {
	p = path.Clean(p)
	for key := range s.entries {
		if isSubpath(p, key) {
			delete(s.entries, key)
		}
	}
	return nil
}

// ReadonlyVersion returns a Reader view of the store. The view shares the
// underlying entries, so later writes through the store remain visible.
func (s *MemoryStore) ReadonlyVersion() Reader {
	return readonlyStore{s}
}

// readonlyStore narrows a Store to its Reader half.
type readonlyStore struct {
	Reader
}
