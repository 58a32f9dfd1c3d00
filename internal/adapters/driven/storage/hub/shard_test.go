package hub

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swe-arena/pr-miner/internal/core/domain"
)

func ts(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return parsed
}

func tsp(t *testing.T, s string) *time.Time {
	parsed := ts(t, s)
	return &parsed
}

func TestShardPath(t *testing.T) {
	day := ts(t, "2024-03-05T08:30:00Z")

	assert.Equal(t, "agent-x/2024.03.05.jsonl", shardPath("agent-x", day))
}

func TestShardCodec(t *testing.T) {
	t.Run("round trip preserves records", func(t *testing.T) {
		records := []domain.MetadataRecord{
			domain.NewMetadataRecord("https://github.com/o/r/pull/1", ts(t, "2024-01-01T10:00:00Z"), tsp(t, "2024-01-02T10:00:00Z"), nil),
			domain.NewMetadataRecord("https://github.com/o/r/pull/2", ts(t, "2024-01-01T11:00:00Z"), nil, tsp(t, "2024-01-03T10:00:00Z")),
			domain.NewMetadataRecord("https://github.com/o/r/pull/3", ts(t, "2024-01-01T12:00:00Z"), nil, nil),
		}

		data, err := encodeShard(records)
		require.NoError(t, err)

		decoded := decodeShard("agent-x/2024.01.01.jsonl", data)
		assert.Equal(t, records, decoded)
	})

	t.Run("unparsable line is skipped, rest of shard loads", func(t *testing.T) {
		data := strings.Join([]string{
			`{"html_url":"https://github.com/o/r/pull/1","created_at":"2024-01-01T10:00:00Z","merged_at":null,"closed_at":null}`,
			`{not json`,
			`{"html_url":"https://github.com/o/r/pull/2","created_at":"2024-01-01T11:00:00Z","merged_at":null,"closed_at":null}`,
		}, "\n")

		decoded := decodeShard("agent-x/2024.01.01.jsonl", []byte(data))

		require.Len(t, decoded, 2)
		assert.Equal(t, "https://github.com/o/r/pull/1", decoded[0].URL)
		assert.Equal(t, "https://github.com/o/r/pull/2", decoded[1].URL)
	})

	t.Run("unparsable created_at is retained with zero creation time", func(t *testing.T) {
		data := `{"html_url":"https://github.com/o/r/pull/1","created_at":"not-a-date","merged_at":null,"closed_at":"2024-01-02T10:00:00Z"}` + "\n"

		decoded := decodeShard("agent-x/2024.01.01.jsonl", []byte(data))

		require.Len(t, decoded, 1)
		assert.True(t, decoded[0].CreatedAt.IsZero())
		assert.NotNil(t, decoded[0].ClosedAt, "the record itself is kept")
	})

	t.Run("merge-implies-closed is enforced on load", func(t *testing.T) {
		// A hand-edited shard may violate the invariant; loading repairs it.
		data := `{"html_url":"https://github.com/o/r/pull/1","created_at":"2024-01-01T10:00:00Z","merged_at":"2024-01-02T10:00:00Z","closed_at":"2024-01-02T10:00:00Z"}` + "\n"

		decoded := decodeShard("agent-x/2024.01.01.jsonl", []byte(data))

		require.Len(t, decoded, 1)
		assert.NotNil(t, decoded[0].MergedAt)
		assert.Nil(t, decoded[0].ClosedAt)
	})
}
