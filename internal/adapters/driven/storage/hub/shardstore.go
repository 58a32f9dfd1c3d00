package hub

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/swe-arena/pr-miner/internal/core/domain"
	"github.com/swe-arena/pr-miner/internal/core/ports/driven"
	"github.com/swe-arena/pr-miner/internal/logger"
)

// Ensure ShardStore implements the interface.
var _ driven.MetadataStore = (*ShardStore)(nil)

// ShardStore merge-upserts day-sharded metadata records into the dataset
// store. Each affected shard is read, merged by URL and written back in
// one replace. The mining pipeline is a single sequential writer; no
// cross-process locking is attempted and concurrent writers to the same
// shard race last-write-wins.
type ShardStore struct {
	store      driven.ObjectStore
	repo       string
	writeToken string
}

// NewShardStore creates a shard store over repo. The write token is
// required by the dataset store for uploads; reads work without it.
func NewShardStore(store driven.ObjectStore, repo, writeToken string) *ShardStore {
	return &ShardStore{store: store, repo: repo, writeToken: writeToken}
}

// Upsert merges records into the agent's day shards. Records without a
// usable creation time cannot be day-keyed and are skipped with a warning.
// A failing shard is reported and the remaining shards still proceed.
func (s *ShardStore) Upsert(ctx context.Context, identifier string, records []domain.MetadataRecord) error {
	if s.writeToken == "" {
		return fmt.Errorf("upsert %s: %w", identifier, domain.ErrMissingCredential)
	}

	grouped := make(map[string][]domain.MetadataRecord)
	paths := make([]string, 0)
	for _, r := range records {
		if r.CreatedAt.IsZero() {
			logger.Warn("upsert %s: record %s has no creation time, not persisted", identifier, r.URL)
			continue
		}
		path := shardPath(identifier, r.CreatedAt.UTC())
		if _, ok := grouped[path]; !ok {
			paths = append(paths, path)
		}
		grouped[path] = append(grouped[path], r)
	}
	sort.Strings(paths)

	var errs []error
	for _, path := range paths {
		if err := s.upsertShard(ctx, path, grouped[path]); err != nil {
			logger.Warn("upsert %s: shard %s: %v", identifier, path, err)
			errs = append(errs, fmt.Errorf("shard %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// upsertShard merges new records into one shard, new overwriting existing
// on URL collision, and replaces the whole shard in a single write.
func (s *ShardStore) upsertShard(ctx context.Context, path string, records []domain.MetadataRecord) error {
	existing, err := s.readShard(ctx, path)
	if err != nil {
		return err
	}

	byURL := make(map[string]domain.MetadataRecord, len(existing)+len(records))
	for _, r := range existing {
		if r.URL != "" {
			byURL[r.URL] = r
		}
	}
	for _, r := range records {
		if r.URL != "" {
			byURL[r.URL] = r
		}
	}

	merged := make([]domain.MetadataRecord, 0, len(byURL))
	for _, r := range byURL {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.Before(merged[j].CreatedAt)
		}
		return merged[i].URL < merged[j].URL
	})

	data, err := encodeShard(merged)
	if err != nil {
		return err
	}
	if err := s.store.Upload(ctx, s.repo, path, data); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	logger.Debug("shard %s: wrote %d records", path, len(merged))
	return nil
}

// readShard loads one shard, treating a missing blob as empty.
func (s *ShardStore) readShard(ctx context.Context, path string) ([]domain.MetadataRecord, error) {
	data, err := s.store.Download(ctx, s.repo, path)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	return decodeShard(path, data), nil
}

// ReadPeriod returns every record from shards of the given calendar year,
// keyed by the owning agent. A shard that fails to load is skipped with a
// warning and never aborts the rest of the period.
func (s *ShardStore) ReadPeriod(ctx context.Context, year int) (map[string][]domain.MetadataRecord, error) {
	files, err := s.store.ListFiles(ctx, s.repo)
	if err != nil {
		return nil, fmt.Errorf("list shards: %w", err)
	}

	prefix := fmt.Sprintf("%04d.", year)
	result := make(map[string][]domain.MetadataRecord)
	for _, f := range files {
		identifier, name, ok := splitShardPath(f)
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		records, readErr := s.readShard(ctx, f)
		if readErr != nil {
			logger.Warn("read period %d: %s: %v", year, f, readErr)
			continue
		}
		result[identifier] = append(result[identifier], records...)
	}
	return result, nil
}

// LatestCreatedAt scans all of the agent's shards and returns the maximum
// created_at found. ok is false when the agent has no parseable history.
func (s *ShardStore) LatestCreatedAt(ctx context.Context, identifier string) (time.Time, bool, error) {
	files, err := s.store.ListFiles(ctx, s.repo)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("list shards: %w", err)
	}

	var latest time.Time
	prefix := identifier + "/"
	for _, f := range files {
		if !strings.HasPrefix(f, prefix) || !strings.HasSuffix(f, ".jsonl") {
			continue
		}
		records, readErr := s.readShard(ctx, f)
		if readErr != nil {
			logger.Warn("watermark %s: %s: %v", identifier, f, readErr)
			continue
		}
		for _, r := range records {
			if r.CreatedAt.After(latest) {
				latest = r.CreatedAt
			}
		}
	}
	return latest, !latest.IsZero(), nil
}

// splitShardPath splits "{identifier}/{YYYY}.{MM}.{DD}.jsonl" into its
// parts, rejecting anything with a different shape.
func splitShardPath(path string) (identifier, name string, ok bool) {
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || !strings.HasSuffix(parts[1], ".jsonl") || strings.Contains(parts[1], "/") {
		return "", "", false
	}
	return parts[0], parts[1], true
}
