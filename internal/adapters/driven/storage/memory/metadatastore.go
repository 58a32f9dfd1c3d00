package memory

import (
	"context"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/swe-arena/pr-miner/internal/core/domain"
	"github.com/swe-arena/pr-miner/internal/core/ports/driven"
)

// Ensure MetadataStore implements the interface.
var _ driven.MetadataStore = (*MetadataStore)(nil)

// MetadataStore keeps merged records per agent in process memory. It backs
// debug mode, where nothing may reach the durable store, and discards
// everything at process exit.
type MetadataStore struct {
	cache *gocache.Cache
}

// NewMetadataStore creates an empty in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{cache: gocache.New(gocache.NoExpiration, 0)}
}

// Upsert merges records into the agent's set keyed by URL, new records
// overwriting existing ones.
func (s *MetadataStore) Upsert(_ context.Context, identifier string, records []domain.MetadataRecord) error {
	existing := s.records(identifier)

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

	s.cache.Set(identifier, merged, gocache.NoExpiration)
	return nil
}

// ReadPeriod returns records created in the given year, keyed by agent.
// Records without a usable creation time stay visible to stats.
func (s *MetadataStore) ReadPeriod(_ context.Context, year int) (map[string][]domain.MetadataRecord, error) {
	result := make(map[string][]domain.MetadataRecord)
	for identifier, item := range s.cache.Items() {
		records, ok := item.Object.([]domain.MetadataRecord)
		if !ok {
			continue
		}
		for _, r := range records {
			if r.CreatedAt.IsZero() || r.CreatedAt.UTC().Year() == year {
				result[identifier] = append(result[identifier], r)
			}
		}
	}
	return result, nil
}

// LatestCreatedAt returns the maximum created_at across the agent's
// records. ok is false when none carry a usable creation time.
func (s *MetadataStore) LatestCreatedAt(_ context.Context, identifier string) (time.Time, bool, error) {
	var latest time.Time
	for _, r := range s.records(identifier) {
		if r.CreatedAt.After(latest) {
			latest = r.CreatedAt
		}
	}
	return latest, !latest.IsZero(), nil
}

func (s *MetadataStore) records(identifier string) []domain.MetadataRecord {
	if item, ok := s.cache.Get(identifier); ok {
		if records, ok := item.([]domain.MetadataRecord); ok {
			return records
		}
	}
	return nil
}
