package hub

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/swe-arena/pr-miner/internal/core/domain"
	"github.com/swe-arena/pr-miner/internal/logger"
)

// shardLine is the wire form of one metadata record, one JSON object per
// line.
type shardLine struct {
	HTMLURL   string  `json:"html_url"`
	CreatedAt *string `json:"created_at"`
	MergedAt  *string `json:"merged_at"`
	ClosedAt  *string `json:"closed_at"`
}

// shardPath returns the blob path for one agent's shard on one day:
// {identifier}/{YYYY}.{MM}.{DD}.jsonl.
func shardPath(identifier string, day time.Time) string {
	return fmt.Sprintf("%s/%04d.%02d.%02d.jsonl", identifier, day.Year(), int(day.Month()), day.Day())
}

// encodeShard serializes records to JSONL. Callers sort records first so
// that unchanged shards re-encode byte-for-byte identical.
func encodeShard(records []domain.MetadataRecord) ([]byte, error) {
	var buf bytes.Buffer
	for _, r := range records {
		line := shardLine{
			HTMLURL:   r.URL,
			CreatedAt: formatTime(r.CreatedAt),
			MergedAt:  formatTimePtr(r.MergedAt),
			ClosedAt:  formatTimePtr(r.ClosedAt),
		}
		data, err := json.Marshal(line)
		if err != nil {
			return nil, fmt.Errorf("encode record %s: %w", r.URL, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// decodeShard parses a JSONL shard. An unparsable line is skipped with a
// warning and never aborts the rest of the shard. A record whose
// created_at fails to parse is retained with a zero creation time, which
// excludes it from day-grouping and watermarking only.
func decodeShard(path string, data []byte) []domain.MetadataRecord {
	var records []domain.MetadataRecord

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}

		var line shardLine
		if err := json.Unmarshal(text, &line); err != nil {
			logger.Warn("shard %s: skipping invalid line: %v", path, err)
			continue
		}

		created, ok := parseTimePtr(line.CreatedAt)
		if !ok {
			logger.Warn("shard %s: record %s has unparsable created_at %q",
				path, line.HTMLURL, stringOrEmpty(line.CreatedAt))
		}
		merged, _ := parseOptionalTime(line.MergedAt)
		closed, _ := parseOptionalTime(line.ClosedAt)

		// The constructor re-enforces merge-implies-closed on load.
		records = append(records, domain.NewMetadataRecord(line.HTMLURL, created, merged, closed))
	}
	if err := scanner.Err(); err != nil {
		logger.Warn("shard %s: read truncated: %v", path, err)
	}

	return records
}

func formatTime(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// parseTimePtr parses a required timestamp. ok is false when the value is
// absent or unparsable; the zero time is returned in that case.
func parseTimePtr(s *string) (time.Time, bool) {
	if s == nil || *s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func parseOptionalTime(s *string) (*time.Time, bool) {
	t, ok := parseTimePtr(s)
	if !ok {
		return nil, false
	}
	return &t, true
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
