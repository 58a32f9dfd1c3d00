package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/swe-arena/pr-miner/internal/core/domain"
	"github.com/swe-arena/pr-miner/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// ObjectStore is an in-memory implementation of driven.ObjectStore for
// testing.
type ObjectStore struct {
	mu    sync.RWMutex
	repos map[string]map[string][]byte
}

// NewObjectStore creates a new in-memory object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{repos: make(map[string]map[string][]byte)}
}

// ListFiles returns all file paths in a repo, sorted.
func (s *ObjectStore) ListFiles(_ context.Context, repo string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := s.repos[repo]
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// Download returns the contents of one blob.
func (s *ObjectStore) Download(_ context.Context, repo, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.repos[repo][path]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", repo, path, domain.ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Upload replaces one blob.
func (s *ObjectStore) Upload(_ context.Context, repo, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repos[repo] == nil {
		s.repos[repo] = make(map[string][]byte)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	s.repos[repo][path] = stored
	return nil
}
