package services

import (
	"math"

	"github.com/swe-arena/pr-miner/internal/core/domain"
)

// ComputeStats recomputes acceptance statistics from a full record set.
// The acceptance rate is merged / decided * 100 rounded to two decimals;
// still-open records count towards Total but not towards the denominator.
// Always derived from scratch so a partial write in a prior cycle
// self-heals on the next read.
func ComputeStats(records []domain.MetadataRecord) domain.Stats {
	stats := domain.Stats{Total: len(records)}

	closedNotMerged := 0
	for _, r := range records {
		switch {
		case r.Merged():
			stats.Merged++
		case r.ClosedWithoutMerge():
			closedNotMerged++
		}
	}

	if decided := stats.Merged + closedNotMerged; decided > 0 {
		rate := float64(stats.Merged) / float64(decided) * 100
		stats.AcceptanceRate = math.Round(rate*100) / 100
	}

	return stats
}
