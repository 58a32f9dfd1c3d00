package services

import (
	"context"
	"fmt"
	"time"

	"github.com/swe-arena/pr-miner/internal/core/ports/driven"
)

// SyncPlanner derives each agent's incremental fetch watermark from the
// persisted shard set. The watermark is never stored independently.
type SyncPlanner struct {
	store driven.MetadataStore
}

// NewSyncPlanner creates a planner over the given metadata store.
func NewSyncPlanner(store driven.MetadataStore) *SyncPlanner {
	return &SyncPlanner{store: store}
}

// NextSince returns the start of the agent's next fetch window: one second
// past the latest persisted created_at. Nil when the agent has no history,
// in which case the miner falls back to its lookback floor. A steady-state
// cycle with no upstream changes therefore produces zero new records.
func (p *SyncPlanner) NextSince(ctx context.Context, identifier string) (*time.Time, error) {
	latest, ok, err := p.store.LatestCreatedAt(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("resolve watermark for %s: %w", identifier, err)
	}
	if !ok {
		return nil, nil
	}
	next := latest.Add(time.Second)
	return &next, nil
}
