// Package cmd defines the command-line interface for repvault.
package cmd

import (
	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(restCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheSweepCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)

	// Add the session subcommands to the parent session command
	sessionCmd.AddCommand(sessionStatusCmd)
	sessionCmd.AddCommand(sessionClearCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("cache-dir", "", "Directory for the disk cache (default ~/.repvault/cache)")
	rootCmd.PersistentFlags().Int("max-requests", contract.DefaultMaxRequests, "Maximum outbound requests per window")
	rootCmd.PersistentFlags().String("rate-window", contract.DefaultRateWindow.String(), "Sliding window for the rate limiter (Go duration)")
	rootCmd.PersistentFlags().String("staleness-cutoff", contract.DefaultStalenessCutoff.String(), "Maximum age of a resumable session snapshot (Go duration)")
	rootCmd.PersistentFlags().String("fetch-ttl", contract.DefaultFetchTTL.String(), "Default cache TTL for fetched payloads (Go duration)")
	rootCmd.PersistentFlags().String("session-backend", string(schema.FileBackend), "Session snapshot backend: file or sqlite or none")
	rootCmd.PersistentFlags().String("session-db", "", "SQLite database path for the sqlite backend (default ~/.repvault/sessions.db)")
	rootCmd.PersistentFlags().String("snapshot-file", "", "Snapshot path for the file backend (default ~/.repvault/session.json)")
	rootCmd.PersistentFlags().String("notify-command", "", "External command for backstop notifications (e.g. notify-send)")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of cacheInvalidateCmd to Viper
	cacheInvalidateCmd.Flags().Bool("prefix", false, "Treat the argument as a key prefix instead of an exact key")
	if err := viper.BindPFlags(cacheInvalidateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache invalidate flags", err)
	}

	// Bind all flags of sessionClearCmd to Viper
	sessionClearCmd.Flags().Bool("finish", false, "Archive the session to history before clearing (sqlite backend)")
	if err := viper.BindPFlags(sessionClearCmd.Flags()); err != nil {
		contract.LogFatal("Error binding session clear flags", err)
	}

	// Bind all flags of historyListCmd to Viper
	historyListCmd.Flags().IntP("limit", "l", contract.DefaultHistoryLimit, "Number of sessions to display")
	if err := viper.BindPFlags(historyListCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history list flags", err)
	}

	// Bind all flags of fetchCmd to Viper
	fetchCmd.Flags().String("key", "", "Cache key for the payload (defaults to the URL)")
	if err := viper.BindPFlags(fetchCmd.Flags()); err != nil {
		contract.LogFatal("Error binding fetch flags", err)
	}
}
