package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swe-arena/pr-miner/internal/core/domain"
)

func TestLeaderboardStore(t *testing.T) {
	ctx := context.Background()

	t.Run("publish replaces the snapshot for the year", func(t *testing.T) {
		store := NewLeaderboardStore()
		require.NoError(t, store.Publish(ctx, 2024, []domain.LeaderboardEntry{
			{Identifier: "agent-a", Stats: domain.Stats{Total: 1}},
			{Identifier: "agent-b", Stats: domain.Stats{Total: 2}},
		}))

		require.NoError(t, store.Publish(ctx, 2024, []domain.LeaderboardEntry{
			{Identifier: "agent-a", Stats: domain.Stats{Total: 3}},
		}))

		snapshot := store.Snapshot(2024)
		require.Len(t, snapshot, 1)
		assert.Equal(t, 3, snapshot[0].Total)
	})

	t.Run("years are independent", func(t *testing.T) {
		store := NewLeaderboardStore()
		require.NoError(t, store.Publish(ctx, 2023, []domain.LeaderboardEntry{{Identifier: "agent-a"}}))

		assert.Len(t, store.Snapshot(2023), 1)
		assert.Nil(t, store.Snapshot(2024))
	})
}
