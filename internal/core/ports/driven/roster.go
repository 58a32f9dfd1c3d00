package driven

import (
	"context"

	"github.com/swe-arena/pr-miner/internal/core/domain"
)

// RosterStore supplies the tracked agents. Read-only to the core; fetched
// once per cycle.
type RosterStore interface {
	Agents(ctx context.Context) ([]domain.Agent, error)
}
