package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/swe-arena/pr-miner/internal/adapters/driven/storage/fs"
	"github.com/swe-arena/pr-miner/internal/adapters/driven/storage/hub"
	"github.com/swe-arena/pr-miner/internal/adapters/driven/storage/memory"
	ghconn "github.com/swe-arena/pr-miner/internal/connectors/github"
	"github.com/swe-arena/pr-miner/internal/core/ports/driven"
	"github.com/swe-arena/pr-miner/internal/core/services"
	"github.com/swe-arena/pr-miner/internal/logger"
)

const (
	// debugPatternLimit bounds retrieval per query pattern in debug mode.
	debugPatternLimit = 10

	debugPatternPause = 200 * time.Millisecond
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Run a mining cycle and update the leaderboard",
	Long: `Runs one full mining cycle over the agent roster: resolves each
agent's incremental watermark, fetches new pull requests from the GitHub
search API, merges them into day-sharded storage and publishes the
leaderboard snapshot.

In debug mode retrieval is capped at 10 matches per query pattern and
results stay in process memory; nothing is written to the durable store.`,
	RunE: runMine,
}

func init() {
	mineCmd.Flags().Bool("debug", false, "debug mode: capped retrieval, in-memory storage only")
	mineCmd.Flags().Bool("loop", false, "keep running in a loop until interrupted")
	mineCmd.Flags().Int("interval-seconds", 3600, "sleep interval between loop runs")
	mineCmd.Flags().String("data-dir", "", "object store root directory (overrides config)")

	_ = viper.BindPFlag("debug", mineCmd.Flags().Lookup("debug"))
	_ = viper.BindPFlag("loop", mineCmd.Flags().Lookup("loop"))
	_ = viper.BindPFlag("interval_seconds", mineCmd.Flags().Lookup("interval-seconds"))

	rootCmd.AddCommand(mineCmd)
}

func runMine(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debug := viper.GetBool("debug")
	loop := viper.GetBool("loop")
	interval := time.Duration(viper.GetInt("interval_seconds")) * time.Second
	dataDir := viper.GetString("data_dir")
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		dataDir = dir
	}

	runner := buildRunner(ctx, debug, dataDir)

	for {
		start := time.Now()
		summary, err := runner.RunCycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("interrupted, exiting")
				return nil
			}
			logger.Warn("cycle failed: %v", err)
			if !loop {
				return err
			}
		} else {
			cmd.Printf("Cycle %s: %d succeeded, %d failed, %d skipped, published=%v\n",
				summary.RunID, summary.Succeeded, summary.Failed, summary.Skipped, summary.Published)
		}

		if !loop {
			return nil
		}

		if sleepFor := interval - time.Since(start); sleepFor > 0 {
			logger.Info("sleeping %s before next run", sleepFor.Round(time.Second))
			select {
			case <-ctx.Done():
				logger.Info("interrupted, exiting")
				return nil
			case <-time.After(sleepFor):
			}
		}
	}
}

// buildRunner assembles the pipeline. Debug mode swaps the durable
// metadata and leaderboard stores for the ephemeral in-memory strategy;
// the roster is always read from the durable store.
func buildRunner(ctx context.Context, debug bool, dataDir string) *services.Runner {
	client := ghconn.NewClient(ctx, viper.GetString("github_token"))

	minerCfg := services.MinerConfig{
		Lookback: time.Duration(viper.GetInt("lookback_days")) * 24 * time.Hour,
	}
	if debug {
		logger.Info("debug mode: %d matches per pattern, in-memory storage only", debugPatternLimit)
		minerCfg.PatternLimit = debugPatternLimit
		minerCfg.PatternPause = debugPatternPause
	}
	miner := services.NewPatternMiner(client, minerCfg)

	store := fs.NewObjectStore(dataDir)
	roster := hub.NewRoster(store, viper.GetString("agents_repo"))

	var metadata driven.MetadataStore
	var board driven.LeaderboardStore
	if debug {
		metadata = memory.NewMetadataStore()
		board = memory.NewLeaderboardStore()
	} else {
		token := viper.GetString("store_token")
		if token == "" {
			logger.Warn("no store token configured, persistence will fail")
		}
		metadata = hub.NewShardStore(store, viper.GetString("metadata_repo"), token)
		board = hub.NewLeaderboard(store, viper.GetString("leaderboard_repo"), token)
	}

	return services.NewRunner(roster, metadata, board, miner)
}
