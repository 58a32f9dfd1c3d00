// Package cli wires the mining pipeline behind a cobra command tree.
// Configuration layers, highest priority first: flags, environment
// variables, config file, defaults.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/swe-arena/pr-miner/internal/logger"
)

var (
	cfgFile string
	verbose bool
)

const version = "0.3.0"

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "prminer",
	Short: "PR metadata miner and leaderboard builder",
	Long: `prminer reconstructs, per tracked agent, the history of pull requests
attributable to that agent on the GitHub search API, merges minimal
metadata into day-sharded storage and publishes per-agent acceptance
statistics as a leaderboard snapshot.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("prminer v%s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./prminer.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	logger.SetVerbose(verbose)

	viper.SetDefault("agents_repo", "swe-arena/pr_agents")
	viper.SetDefault("metadata_repo", "swe-arena/pr_metadata")
	viper.SetDefault("leaderboard_repo", "swe-arena/pr_leaderboard")
	viper.SetDefault("data_dir", "data")
	viper.SetDefault("lookback_days", 180)
	viper.SetDefault("interval_seconds", 3600)

	// Token env vars keep their historical names.
	_ = viper.BindEnv("github_token", "GITHUB_TOKEN")
	_ = viper.BindEnv("store_token", "STORE_TOKEN")
	viper.SetEnvPrefix("PRMINER")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("prminer")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("using config file %s", viper.ConfigFileUsed())
	}
}
