package memory

import (
	"context"
	"strconv"

	gocache "github.com/patrickmn/go-cache"

	"github.com/swe-arena/pr-miner/internal/core/domain"
	"github.com/swe-arena/pr-miner/internal/core/ports/driven"
)

// Ensure LeaderboardStore implements the interface.
var _ driven.LeaderboardStore = (*LeaderboardStore)(nil)

// LeaderboardStore keeps the latest published snapshot per year in process
// memory. Used in debug mode instead of the durable store.
type LeaderboardStore struct {
	cache *gocache.Cache
}

// NewLeaderboardStore creates an empty in-memory leaderboard store.
func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{cache: gocache.New(gocache.NoExpiration, 0)}
}

// Publish replaces the snapshot for the year.
func (s *LeaderboardStore) Publish(_ context.Context, year int, entries []domain.LeaderboardEntry) error {
	snapshot := make([]domain.LeaderboardEntry, len(entries))
	copy(snapshot, entries)
	s.cache.Set(strconv.Itoa(year), snapshot, gocache.NoExpiration)
	return nil
}

// Snapshot returns the last published snapshot for the year, or nil.
func (s *LeaderboardStore) Snapshot(year int) []domain.LeaderboardEntry {
	if item, ok := s.cache.Get(strconv.Itoa(year)); ok {
		if entries, ok := item.([]domain.LeaderboardEntry); ok {
			return entries
		}
	}
	return nil
}
