package hub

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"github.com/swe-arena/pr-miner/internal/core/domain"
	"github.com/swe-arena/pr-miner/internal/core/ports/driven"
	"github.com/swe-arena/pr-miner/internal/logger"
)

// Ensure Leaderboard implements the interface.
var _ driven.LeaderboardStore = (*Leaderboard)(nil)

// csvHeader is the snapshot column order.
var csvHeader = []string{"agent_name", "organization", "github_identifier", "total_prs", "merged", "acceptance_rate"}

// Leaderboard publishes the aggregated snapshot as one CSV file per year,
// overwriting any prior snapshot for the same period.
type Leaderboard struct {
	store      driven.ObjectStore
	repo       string
	writeToken string
}

// NewLeaderboard creates a leaderboard publisher over repo.
func NewLeaderboard(store driven.ObjectStore, repo, writeToken string) *Leaderboard {
	return &Leaderboard{store: store, repo: repo, writeToken: writeToken}
}

// Publish writes the complete snapshot for the year. Entries are sorted by
// identifier so unchanged snapshots re-encode byte-for-byte identical.
func (l *Leaderboard) Publish(ctx context.Context, year int, entries []domain.LeaderboardEntry) error {
	if l.writeToken == "" {
		return fmt.Errorf("publish leaderboard: %w", domain.ErrMissingCredential)
	}

	rows := make([]domain.LeaderboardEntry, len(entries))
	copy(rows, entries)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Identifier < rows[j].Identifier })

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range rows {
		record := []string{
			e.Name,
			e.Organization,
			e.Identifier,
			strconv.Itoa(e.Total),
			strconv.Itoa(e.Merged),
			strconv.FormatFloat(e.AcceptanceRate, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", e.Identifier, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}

	path := fmt.Sprintf("%d.csv", year)
	if err := l.store.Upload(ctx, l.repo, path, buf.Bytes()); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}

	logger.Info("leaderboard: published %s with %d entries", path, len(rows))
	return nil
}
