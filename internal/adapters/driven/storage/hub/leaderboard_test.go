package hub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swe-arena/pr-miner/internal/adapters/driven/storage/memory"
	"github.com/swe-arena/pr-miner/internal/core/domain"
)

const boardRepo = "swe-arena/pr_leaderboard"

func testEntries() []domain.LeaderboardEntry {
	return []domain.LeaderboardEntry{
		{
			Identifier:   "agent-b",
			Name:         "Agent B",
			Organization: "OrgB",
			Stats:        domain.Stats{Total: 1, Merged: 0, AcceptanceRate: 0},
		},
		{
			Identifier:   "agent-a",
			Name:         "Agent A",
			Organization: "OrgA",
			Stats:        domain.Stats{Total: 3, Merged: 1, AcceptanceRate: 50},
		},
	}
}

func TestLeaderboardPublish(t *testing.T) {
	ctx := context.Background()

	t.Run("missing write token is fatal to publishing", func(t *testing.T) {
		board := NewLeaderboard(memory.NewObjectStore(), boardRepo, "")

		err := board.Publish(ctx, 2024, testEntries())

		assert.ErrorIs(t, err, domain.ErrMissingCredential)
	})

	t.Run("writes one sorted csv snapshot per year", func(t *testing.T) {
		objects := memory.NewObjectStore()
		board := NewLeaderboard(objects, boardRepo, "test-token")

		require.NoError(t, board.Publish(ctx, 2024, testEntries()))

		data, err := objects.Download(ctx, boardRepo, "2024.csv")
		require.NoError(t, err)
		want := "agent_name,organization,github_identifier,total_prs,merged,acceptance_rate\n" +
			"Agent A,OrgA,agent-a,3,1,50.00\n" +
			"Agent B,OrgB,agent-b,1,0,0.00\n"
		assert.Equal(t, want, string(data))
	})

	t.Run("republishing overwrites the prior snapshot", func(t *testing.T) {
		objects := memory.NewObjectStore()
		board := NewLeaderboard(objects, boardRepo, "test-token")
		require.NoError(t, board.Publish(ctx, 2024, testEntries()))

		require.NoError(t, board.Publish(ctx, 2024, testEntries()[:1]))

		data, err := objects.Download(ctx, boardRepo, "2024.csv")
		require.NoError(t, err)
		want := "agent_name,organization,github_identifier,total_prs,merged,acceptance_rate\n" +
			"Agent B,OrgB,agent-b,1,0,0.00\n"
		assert.Equal(t, want, string(data))
	})

	t.Run("publishing is byte-for-byte idempotent", func(t *testing.T) {
		objects := memory.NewObjectStore()
		board := NewLeaderboard(objects, boardRepo, "test-token")

		require.NoError(t, board.Publish(ctx, 2024, testEntries()))
		first, err := objects.Download(ctx, boardRepo, "2024.csv")
		require.NoError(t, err)

		require.NoError(t, board.Publish(ctx, 2024, testEntries()))
		second, err := objects.Download(ctx, boardRepo, "2024.csv")
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}
