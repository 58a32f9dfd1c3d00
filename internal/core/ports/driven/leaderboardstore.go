package driven

import (
	"context"

	"github.com/swe-arena/pr-miner/internal/core/domain"
)

// LeaderboardStore publishes the aggregated snapshot for one period.
// Publishing always writes the complete snapshot, overwriting any prior
// snapshot for the same period; never a diff or append.
type LeaderboardStore interface {
	Publish(ctx context.Context, year int, entries []domain.LeaderboardEntry) error
}
