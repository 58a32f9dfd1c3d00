package driven

import "context"

// ObjectStore is an eventually-consistent external key-value blob store,
// addressed by dataset repo and file path. Missing blobs are reported as
// domain.ErrNotFound.
type ObjectStore interface {
	// ListFiles returns all file paths in a repo.
	ListFiles(ctx context.Context, repo string) ([]string, error)

	// Download returns the contents of one blob.
	Download(ctx context.Context, repo, path string) ([]byte, error)

	// Upload replaces one blob in a single write.
	Upload(ctx context.Context, repo, path string, data []byte) error
}
