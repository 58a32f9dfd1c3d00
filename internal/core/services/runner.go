package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/swe-arena/pr-miner/internal/core/domain"
	"github.com/swe-arena/pr-miner/internal/core/ports/driven"
	"github.com/swe-arena/pr-miner/internal/logger"
)

// Runner executes one full mining cycle: roster load, then for each agent
// watermark resolution, mining, merge-upsert and aggregation, finishing
// with a snapshot publish. Agents are processed strictly sequentially; a
// failed agent never blocks the rest of the cycle.
type Runner struct {
	roster   driven.RosterStore
	metadata driven.MetadataStore
	board    driven.LeaderboardStore
	miner    driven.Miner
	planner  *SyncPlanner

	now func() time.Time
}

// CycleSummary reports the outcome of one cycle.
type CycleSummary struct {
	RunID     string
	Succeeded int
	Failed    int
	Skipped   int
	Published bool
}

// NewRunner creates a cycle runner over the given collaborators.
func NewRunner(roster driven.RosterStore, metadata driven.MetadataStore, board driven.LeaderboardStore, miner driven.Miner) *Runner {
	return &Runner{
		roster:   roster,
		metadata: metadata,
		board:    board,
		miner:    miner,
		planner:  NewSyncPlanner(metadata),
		now:      time.Now,
	}
}

// RunCycle performs one full pass over every roster agent and publishes
// the resulting leaderboard snapshot. The cycle always completes the pass
// regardless of individual failures; the summary reflects whichever agents
// succeeded. Only roster failures and cancellation abort the cycle.
func (r *Runner) RunCycle(ctx context.Context) (*CycleSummary, error) {
	summary := &CycleSummary{RunID: uuid.NewString()}
	logger.Info("cycle %s: starting", summary.RunID)

	agents, err := r.roster.Agents(ctx)
	if err != nil {
		return summary, fmt.Errorf("load roster: %w", err)
	}
	if len(agents) == 0 {
		return summary, domain.ErrEmptyRoster
	}

	year := r.now().UTC().Year()
	entries := make([]domain.LeaderboardEntry, 0, len(agents))

	for _, agent := range agents {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		if agent.Identifier == "" {
			logger.Warn("cycle %s: skipping roster entry without identifier (%q)", summary.RunID, agent.Name)
			summary.Skipped++
			continue
		}

		entry, agentErr := r.processAgent(ctx, agent, year)
		if agentErr != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			logger.Warn("cycle %s: agent %s failed: %v", summary.RunID, agent.Identifier, agentErr)
			summary.Failed++
			continue
		}

		entries = append(entries, *entry)
		summary.Succeeded++
		logger.Info("cycle %s: %s: %d PRs, %.2f%% acceptance",
			summary.RunID, agent.Identifier, entry.Total, entry.AcceptanceRate)
	}

	if len(entries) > 0 {
		sort.Slice(entries, func(i, j int) bool { return entries[i].Identifier < entries[j].Identifier })
		if pubErr := r.board.Publish(ctx, year, entries); pubErr != nil {
			logger.Warn("cycle %s: publish leaderboard: %v", summary.RunID, pubErr)
		} else {
			summary.Published = true
		}
	}

	logger.Info("cycle %s: done (%d succeeded, %d failed, %d skipped)",
		summary.RunID, summary.Succeeded, summary.Failed, summary.Skipped)
	return summary, nil
}

// processAgent runs the per-agent pipeline and builds the leaderboard row.
// Persistence failures are contained here: stats are recomputed from
// whatever the store currently holds, and the watermark picks up missed
// records on a later cycle.
func (r *Runner) processAgent(ctx context.Context, agent domain.Agent, year int) (*domain.LeaderboardEntry, error) {
	since, err := r.planner.NextSince(ctx, agent.Identifier)
	if err != nil {
		logger.Warn("agent %s: %v, falling back to the full lookback window", agent.Identifier, err)
		since = nil
	}
	if since != nil {
		logger.Info("agent %s: incremental fetch since %s", agent.Identifier, since.Format(time.RFC3339))
	} else {
		logger.Info("agent %s: no prior history, fetching the full lookback window", agent.Identifier)
	}

	records, err := r.miner.Mine(ctx, agent, since)
	if err != nil {
		return nil, fmt.Errorf("mine: %w", err)
	}

	if len(records) > 0 {
		if upsertErr := r.metadata.Upsert(ctx, agent.Identifier, records); upsertErr != nil {
			logger.Warn("agent %s: persist %d records: %v", agent.Identifier, len(records), upsertErr)
		}
	}

	period, err := r.metadata.ReadPeriod(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("read period %d: %w", year, err)
	}

	stats := ComputeStats(period[agent.Identifier])
	return &domain.LeaderboardEntry{
		Identifier:   agent.Identifier,
		Name:         agent.Name,
		Organization: agent.Organization,
		Stats:        stats,
	}, nil
}
