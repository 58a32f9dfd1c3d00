package driven

import (
	"context"
	"time"

	"github.com/swe-arena/pr-miner/internal/core/domain"
)

// Miner reconstructs an agent's pull request history from the provider.
// since, when non-nil, bounds the fetch window start; implementations
// additionally clamp the window to their configured lookback floor.
// A partial result with a nil error is normal degradation: failed
// partitions simply yield fewer records, picked up on a later cycle.
type Miner interface {
	Mine(ctx context.Context, agent domain.Agent, since *time.Time) ([]domain.MetadataRecord, error)
}
