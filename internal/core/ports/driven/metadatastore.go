package driven

import (
	"context"
	"time"

	"github.com/swe-arena/pr-miner/internal/core/domain"
)

// MetadataStore persists minimal PR metadata, day-sharded per agent.
type MetadataStore interface {
	// Upsert merges records into the agent's shards keyed by URL. New
	// records overwrite existing ones on key collision. Shard-level
	// failures are reported but never abort the remaining shards.
	Upsert(ctx context.Context, identifier string, records []domain.MetadataRecord) error

	// ReadPeriod returns every record whose shard falls in the given
	// calendar year, keyed by the owning agent identifier.
	ReadPeriod(ctx context.Context, year int) (map[string][]domain.MetadataRecord, error)

	// LatestCreatedAt returns the maximum created_at across all of the
	// agent's persisted records. ok is false when none exist.
	LatestCreatedAt(ctx context.Context, identifier string) (latest time.Time, ok bool, err error)
}
