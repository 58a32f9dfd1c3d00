// Package fs implements the ObjectStore port on a local directory tree.
// Each repo is a subdirectory and each blob a file; uploads are atomic
// single-file replaces via a temp file and rename.
package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/swe-arena/pr-miner/internal/core/domain"
	"github.com/swe-arena/pr-miner/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

// ObjectStore stores blobs under root/{repo}/{path}.
type ObjectStore struct {
	root string
}

// NewObjectStore creates a store rooted at dir.
func NewObjectStore(dir string) *ObjectStore {
	return &ObjectStore{root: dir}
}

// ListFiles returns the slash-separated relative paths of every file in
// the repo. A repo that does not exist yet lists as empty.
func (s *ObjectStore) ListFiles(_ context.Context, repo string) ([]string, error) {
	base := filepath.Join(s.root, repo)
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(base, p)
		if relErr != nil {
			return relErr
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", base, err)
	}
	return paths, nil
}

// Download returns the contents of one blob.
func (s *ObjectStore) Download(_ context.Context, repo, path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, repo, filepath.FromSlash(path)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s/%s: %w", repo, path, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", repo, path, err)
	}
	return data, nil
}

// Upload replaces one blob atomically.
func (s *ObjectStore) Upload(_ context.Context, repo, path string, data []byte) error {
	full := filepath.Join(s.root, repo, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s/%s: %w", repo, path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("temp file for %s/%s: %w", repo, path, err)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err == nil {
		err = tmp.Close()
	} else {
		tmp.Close()
	}
	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s/%s: %w", repo, path, err)
	}

	if err := os.Rename(tmpName, full); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s/%s: %w", repo, path, err)
	}
	return nil
}
