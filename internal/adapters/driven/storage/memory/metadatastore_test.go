package memory

import (
	"context"
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

func TestMetadataStoreUpsert(t *testing.T) {
	ctx := context.Background()

	t.Run("merges by url, new over old", func(t *testing.T) {
		store := NewMetadataStore()
		open := domain.NewMetadataRecord("https://github.com/o/r/pull/1", ts(t, "2024-01-01T10:00:00Z"), nil, nil)
		merged := domain.NewMetadataRecord("https://github.com/o/r/pull/1", ts(t, "2024-01-01T10:00:00Z"), tsp(t, "2024-01-05T10:00:00Z"), nil)

		require.NoError(t, store.Upsert(ctx, "agent-a", []domain.MetadataRecord{open}))
		require.NoError(t, store.Upsert(ctx, "agent-a", []domain.MetadataRecord{merged}))

		period, err := store.ReadPeriod(ctx, 2024)
		require.NoError(t, err)
		require.Len(t, period["agent-a"], 1)
		assert.NotNil(t, period["agent-a"][0].MergedAt)
	})

	t.Run("agents do not share records", func(t *testing.T) {
		store := NewMetadataStore()
		require.NoError(t, store.Upsert(ctx, "agent-a", []domain.MetadataRecord{
			domain.NewMetadataRecord("https://github.com/o/r/pull/1", ts(t, "2024-01-01T10:00:00Z"), nil, nil),
		}))
		require.NoError(t, store.Upsert(ctx, "agent-b", []domain.MetadataRecord{
			domain.NewMetadataRecord("https://github.com/o/r/pull/2", ts(t, "2024-01-02T10:00:00Z"), nil, nil),
		}))

		period, err := store.ReadPeriod(ctx, 2024)
		require.NoError(t, err)
		assert.Len(t, period["agent-a"], 1)
		assert.Len(t, period["agent-b"], 1)
	})
}

func TestMetadataStoreReadPeriod(t *testing.T) {
	ctx := context.Background()

	t.Run("filters by creation year", func(t *testing.T) {
		store := NewMetadataStore()
		require.NoError(t, store.Upsert(ctx, "agent-a", []domain.MetadataRecord{
			domain.NewMetadataRecord("https://github.com/o/r/pull/1", ts(t, "2023-12-31T23:59:59Z"), nil, nil),
			domain.NewMetadataRecord("https://github.com/o/r/pull/2", ts(t, "2024-01-01T00:00:00Z"), nil, nil),
		}))

		period, err := store.ReadPeriod(ctx, 2024)

		require.NoError(t, err)
		require.Len(t, period["agent-a"], 1)
		assert.Equal(t, "https://github.com/o/r/pull/2", period["agent-a"][0].URL)
	})

	t.Run("records without creation time stay visible", func(t *testing.T) {
		store := NewMetadataStore()
		require.NoError(t, store.Upsert(ctx, "agent-a", []domain.MetadataRecord{
			{URL: "https://github.com/o/r/pull/1"},
		}))

		period, err := store.ReadPeriod(ctx, 2024)

		require.NoError(t, err)
		assert.Len(t, period["agent-a"], 1)
	})
}

func TestMetadataStoreLatestCreatedAt(t *testing.T) {
	ctx := context.Background()

	t.Run("reports the maximum creation time", func(t *testing.T) {
		store := NewMetadataStore()
		require.NoError(t, store.Upsert(ctx, "agent-a", []domain.MetadataRecord{
			domain.NewMetadataRecord("https://github.com/o/r/pull/1", ts(t, "2024-03-01T00:00:00Z"), nil, nil),
			domain.NewMetadataRecord("https://github.com/o/r/pull/2", ts(t, "2024-01-01T00:00:00Z"), nil, nil),
		}))

		latest, ok, err := store.LatestCreatedAt(ctx, "agent-a")

		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, ts(t, "2024-03-01T00:00:00Z"), latest)
	})

	t.Run("no usable history reports absent", func(t *testing.T) {
		store := NewMetadataStore()

		_, ok, err := store.LatestCreatedAt(ctx, "agent-a")

		require.NoError(t, err)
		assert.False(t, ok)
	})
}
