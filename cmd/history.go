package cmd

import (
	"fmt"

	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/internal/outwriter"
	"github.com/repvault/repvault/internal/parquet"
	"github.com/repvault/repvault/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// requireHistoryStore returns the history store or an error when the
// configured backend has none.
func requireHistoryStore() (contract.HistoryStore, error) {
	history := storeManager.GetHistoryStore()
	if history == nil {
		return nil, fmt.Errorf("session history requires the %s backend (set --session-backend)", schema.SQLiteBackend)
	}
	return history, nil
}

// historyCmd focused on archived workout sessions.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and export archived workout sessions",
	Long: `Work with finished sessions archived by the sqlite backend.

Every workout finished with 'session clear --finish' is appended to the
history table: kind, start time, duration and set count. History enables
progress review and data export for external analysis.

Requires: --session-backend sqlite

Subcommands:
  list   - Show archived sessions, most recent first
  export - Write history to Parquet for analytics

Examples:
  # Review recent workouts
  repvault history list

  # Export for analysis in pandas/DuckDB
  repvault history export --output-file sessions.parquet`,
}

// historyListCmd lists archived sessions.
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show archived sessions, most recent first",
	Long: `List finished workout sessions from the history table.

Displays one row per session: ID, workout kind, start time, duration and
completed set count. Use --limit to bound the result size.

Examples:
  # The last 25 sessions (default)
  repvault history list

  # A longer view
  repvault history list --limit 100`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		history, err := requireHistoryStore()
		if err != nil {
			contract.LogFatal("Cannot list history", err)
		}

		limit := viper.GetInt("limit")
		if limit < 1 || limit > contract.MaxHistoryLimit {
			contract.LogFatal("Cannot list history", fmt.Errorf("limit must be between 1 and %d, got %d", contract.MaxHistoryLimit, limit))
		}

		records, err := history.ListSessions(limit)
		if err != nil {
			contract.LogFatal("Failed to query history", err)
		}
		if err := outwriter.PrintSessionHistory(records, cfg); err != nil {
			contract.LogFatal("Failed to print history", err)
		}
	},
}

// historyExportCmd exports session history to a Parquet file.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export session history to Parquet for analytics",
	Long: `Export all archived sessions to Parquet format.

Parquet enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools

Requires: --output-file parameter

Examples:
  # Export all history
  repvault history export --output-file sessions.parquet

  # Query it with DuckDB
  duckdb -c "SELECT workout_kind, avg(duration_seconds) FROM read_parquet('sessions.parquet') GROUP BY 1"`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		history, err := requireHistoryStore()
		if err != nil {
			contract.LogFatal("Cannot export history", err)
		}
		if cfg.OutputFile == "" {
			contract.LogFatal("Cannot export history", fmt.Errorf("--output-file is required"))
		}

		records, err := history.ListSessions(contract.MaxHistoryLimit)
		if err != nil {
			contract.LogFatal("Failed to query history", err)
		}

		data := parquet.ConvertSessionRecords(records)
		if err := parquet.WriteSessionHistoryParquet(data, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to write parquet file", err)
		}
		fmt.Printf("Exported %d sessions to %s\n", len(data), cfg.OutputFile)
	},
}
