package domain

// Stats are the per-agent acceptance statistics recomputed each cycle from
// the full current-period shard set.
type Stats struct {
	// Total counts every record, including still-open ones.
	Total int

	// Merged counts records with a merge timestamp.
	Merged int

	// AcceptanceRate is merged / decided * 100, rounded to two decimals.
	// Zero when no record has been decided yet.
	AcceptanceRate float64
}

// LeaderboardEntry is one snapshot row. Entries are fully derived each
// cycle, never incrementally updated.
type LeaderboardEntry struct {
	Identifier   string
	Name         string
	Organization string
	Stats
}
