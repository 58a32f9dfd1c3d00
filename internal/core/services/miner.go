package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/swe-arena/pr-miner/internal/core/domain"
	"github.com/swe-arena/pr-miner/internal/core/ports/driven"
	"github.com/swe-arena/pr-miner/internal/logger"
)

const (
	// pageSize is the provider's maximum page size.
	pageSize = 100

	// maxPagesPerQuery is the provider's effective page ceiling: combined
	// with pageSize it caps any single query at ~1000 retrievable matches.
	maxPagesPerQuery = 10

	// searchResultCeiling is the provider's hard result window per query.
	searchResultCeiling = 1000

	// dateLayout is the calendar-day granularity of created: range clauses.
	dateLayout = "2006-01-02"

	// DefaultLookback is the trailing window floor. History older than this
	// is unreachable even on first sync.
	DefaultLookback = 180 * 24 * time.Hour

	// DefaultPatternPause is the pause between successive query patterns,
	// respecting informal request-rate budgets.
	DefaultPatternPause = time.Second
)

// MinerConfig tunes a PatternMiner. Zero values fall back to defaults,
// except PatternLimit where zero means unlimited.
type MinerConfig struct {
	// Lookback is the fixed trailing window floor, applied unconditionally
	// even for agents with no prior history.
	Lookback time.Duration

	// PatternPause is the pause inserted between query patterns.
	PatternPause time.Duration

	// PatternLimit caps newly added matches per pattern. Used to bound
	// cost in debug mode. Zero means unlimited.
	PatternLimit int
}

// Ensure PatternMiner implements the port.
var _ driven.Miner = (*PatternMiner)(nil)

// PatternMiner reconstructs an agent's pull request history by running a
// fixed set of search query patterns over a date range, bisecting ranges
// that overflow the provider's 1000-result window and deduplicating
// matches across patterns and sub-ranges by provider item id.
type PatternMiner struct {
	search       driven.SearchClient
	lookback     time.Duration
	patternPause time.Duration
	patternLimit int

	now   func() time.Time
	pause func(ctx context.Context, d time.Duration) error
}

// NewPatternMiner creates a miner over the given search client.
func NewPatternMiner(search driven.SearchClient, cfg MinerConfig) *PatternMiner {
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultLookback
	}
	if cfg.PatternPause <= 0 {
		cfg.PatternPause = DefaultPatternPause
	}
	return &PatternMiner{
		search:       search,
		lookback:     cfg.Lookback,
		patternPause: cfg.PatternPause,
		patternLimit: cfg.PatternLimit,
		now:          time.Now,
		pause:        pauseCtx,
	}
}

// queryPatterns returns the search patterns for one agent. No single
// search field captures every attribution path, so author matches,
// co-author trailers and branch-head prefixes are queried separately.
func queryPatterns(identifier string) []string {
	return []string{
		fmt.Sprintf("is:pr author:%s", identifier),
		fmt.Sprintf(`is:pr "co-authored-by: %s"`, identifier),
		fmt.Sprintf("is:pr head:%s/", identifier),
	}
}

// Mine fetches all matches for the agent in the window
// [max(since, now-lookback), now], deduplicates across patterns and
// returns minimal records ordered by creation time. Failed partitions
// degrade to partial results; only cancellation and an empty identifier
// are returned as errors.
func (m *PatternMiner) Mine(ctx context.Context, agent domain.Agent, since *time.Time) ([]domain.MetadataRecord, error) {
	if agent.Identifier == "" {
		return nil, fmt.Errorf("mine: agent identifier is empty: %w", domain.ErrInvalidInput)
	}

	end := m.now().UTC()
	start := end.Add(-m.lookback)
	if since != nil && since.After(start) {
		start = since.UTC()
	}

	// One dedup map for the whole pass, shared across patterns and
	// recursive sub-ranges.
	seen := make(map[int64]domain.RawMatch)

	for i, pattern := range queryPatterns(agent.Identifier) {
		if i > 0 {
			if err := m.pause(ctx, m.patternPause); err != nil {
				return nil, err
			}
		}
		added := m.fetchRange(ctx, pattern, start, end, seen, m.patternLimit)
		logger.Info("mine %s: pattern %q added %d new matches", agent.Identifier, pattern, added)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	records := make([]domain.MetadataRecord, 0, len(seen))
	for _, raw := range seen {
		records = append(records, raw.Record())
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.Before(records[j].CreatedAt)
		}
		return records[i].URL < records[j].URL
	})

	logger.Info("mine %s: %d unique matches in window %s..%s",
		agent.Identifier, len(records), start.Format(dateLayout), end.Format(dateLayout))
	return records, nil
}

// dateRange is one partition of the fetch window.
type dateRange struct {
	start, end time.Time
}

// fetchRange paginates the query over [start, end], bisecting on overflow.
// Bisection runs off an explicit LIFO worklist instead of recursing, so
// adversarial data density grows a slice, not the call stack. Returns the
// number of matches newly added to seen; a failed partition contributes
// its partial count and does not abort its siblings.
func (m *PatternMiner) fetchRange(ctx context.Context, pattern string, start, end time.Time, seen map[int64]domain.RawMatch, limit int) int {
	added := 0
	stack := []dateRange{{start: start, end: end}}

	for len(stack) > 0 {
		if limit > 0 && added >= limit {
			logger.Debug("pattern %q: reached limit of %d matches, stopping", pattern, limit)
			break
		}
		if ctx.Err() != nil {
			break
		}

		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n, overflow := m.fetchPartition(ctx, pattern, r, seen, limit, added)
		added += n

		if overflow {
			// A created: clause is day-granular, so a range already down to
			// one calendar day cannot shrink further. Accept the retrievable
			// window for that day instead of re-enqueuing it forever.
			if r.start.Format(dateLayout) == r.end.Format(dateLayout) {
				logger.Warn("pattern %q: day %s alone exceeds the %d-result window, keeping the %d retrievable matches",
					pattern, r.start.Format(dateLayout), searchResultCeiling, n)
				continue
			}

			mid := r.start.Add(r.end.Sub(r.start) / 2)
			logger.Warn("pattern %q: hit %d-result window in %s..%s, splitting at %s",
				pattern, searchResultCeiling,
				r.start.Format(dateLayout), r.end.Format(dateLayout), mid.Format(dateLayout))
			// Push the later half first so the earlier half is processed
			// next, keeping the walk depth-first and oldest-first.
			stack = append(stack,
				dateRange{start: mid.AddDate(0, 0, 1), end: r.end},
				dateRange{start: r.start, end: mid},
			)
		}
	}

	return added
}

// fetchPartition pages through one date range. It reports overflow when
// the provider's total exceeds the result window and the page ceiling was
// reached, signalling the caller to bisect. A failed page aborts only this
// partition, returning the count accumulated so far.
func (m *PatternMiner) fetchPartition(ctx context.Context, pattern string, r dateRange, seen map[int64]domain.RawMatch, limit, already int) (added int, overflow bool) {
	query := fmt.Sprintf("%s created:%s..%s", pattern, r.start.Format(dateLayout), r.end.Format(dateLayout))

	for page := 1; page <= maxPagesPerQuery; page++ {
		if limit > 0 && already+added >= limit {
			return added, false
		}

		result, err := m.search.SearchIssues(ctx, query, page, pageSize)
		if err != nil {
			logger.Warn("pattern %q: range %s..%s aborted at page %d: %v",
				pattern, r.start.Format(dateLayout), r.end.Format(dateLayout), page, err)
			return added, false
		}
		if len(result.Items) == 0 {
			return added, false
		}

		for _, item := range result.Items {
			if _, ok := seen[item.ID]; !ok {
				seen[item.ID] = item
				added++
			}
		}

		if result.TotalCount > searchResultCeiling && page == maxPagesPerQuery {
			return added, true
		}
		if len(result.Items) < pageSize {
			return added, false
		}
	}

	return added, false
}

func pauseCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
