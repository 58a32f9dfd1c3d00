package domain

import "time"

// RawMatch is a transient provider search result. It lives only within a
// single mining pass and is never persisted.
type RawMatch struct {
	// ID is the provider's numeric item id, used for cross-query dedup.
	ID int64

	// HTMLURL is the canonical web URL of the pull request.
	HTMLURL string

	CreatedAt time.Time
	ClosedAt  *time.Time

	// MergedAt comes from the pull request sub-object of the search item.
	MergedAt *time.Time
}

// MetadataRecord is the minimal persisted footprint of one pull request.
// Records are partitioned by agent and by the calendar day of CreatedAt.
//
// Invariant: when MergedAt is set, ClosedAt is always nil. Merging implies
// closure; the two are never independently true.
type MetadataRecord struct {
	// URL is the unique key within an agent's shard.
	URL string

	// CreatedAt is zero when the source timestamp was absent or could not
	// be parsed. Such records are excluded from day-grouping and
	// watermarking but still count towards stats.
	CreatedAt time.Time

	MergedAt *time.Time
	ClosedAt *time.Time
}

// NewMetadataRecord builds a record, enforcing the merge-implies-closed
// invariant at construction: a merged record drops its closed timestamp.
func NewMetadataRecord(url string, createdAt time.Time, mergedAt, closedAt *time.Time) MetadataRecord {
	if mergedAt != nil {
		closedAt = nil
	}
	return MetadataRecord{
		URL:       url,
		CreatedAt: createdAt,
		MergedAt:  mergedAt,
		ClosedAt:  closedAt,
	}
}

// Record extracts the persisted metadata from a raw search match.
func (m RawMatch) Record() MetadataRecord {
	return NewMetadataRecord(m.HTMLURL, m.CreatedAt, m.MergedAt, m.ClosedAt)
}

// Merged reports whether the record was merged.
func (r MetadataRecord) Merged() bool {
	return r.MergedAt != nil
}

// ClosedWithoutMerge reports whether the record was closed but not merged.
func (r MetadataRecord) ClosedWithoutMerge() bool {
	return r.MergedAt == nil && r.ClosedAt != nil
}

// Decided reports whether the record reached a terminal state. Still-open
// records are undecided.
func (r MetadataRecord) Decided() bool {
	return r.Merged() || r.ClosedWithoutMerge()
}
