package cmd

import (
	"fmt"
	"time"

	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/internal/outwriter"
	"github.com/repvault/repvault/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sessionCmd focused on the crash-safe session snapshot.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the in-progress workout session snapshot",
	Long: `Manage the snapshot that lets an interrupted workout be resumed.

RepVault persists the active session on every meaningful change, so a crash,
a force-quit or a dead battery never loses a workout in progress. The
snapshot is only offered for resumption while younger than the staleness
cutoff (default 4h); anything older is treated as abandoned.

Supported backends: file (default, single JSON record), sqlite (also keeps
history), or none (disabled)

Subcommands:
  status - Show backend health and any resumable snapshot
  clear  - Discard the snapshot

Examples:
  # See whether a workout is resumable
  repvault session status

  # Abandon an interrupted workout
  repvault session clear`,
}

// sessionStatusCmd shows session store status.
var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display session store health and any resumable snapshot",
	Long: `Show the state of the session snapshot store.

Displays:
- Backend type and connection status
- Whether a resumable snapshot exists and when it was saved
- The snapshot's workout kind, elapsed time and completed sets
- Archived session count (sqlite backend)

Examples:
  # Check for a resumable workout
  repvault session status`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := storeManager.GetSessionStore()
		status, err := store.Status()
		if err != nil {
			contract.LogFatal("Failed to get session status", err)
		}

		var snapshot *schema.ActiveSessionState
		if state, ok := store.Restore(); ok {
			snapshot = &state
		}
		if err := outwriter.PrintSessionStatus(status, snapshot, cfg); err != nil {
			contract.LogFatal("Failed to print session status", err)
		}
	},
}

// sessionClearCmd discards the snapshot.
var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the in-progress session snapshot",
	Long: `Remove the persisted session snapshot.

By default the snapshot is simply dropped, as when abandoning an
interrupted workout. With --finish it is first archived to session history
(sqlite backend only), as when a workout actually completed.

Examples:
  # Abandon an interrupted workout
  repvault session clear

  # Record the workout as finished, then clear
  repvault session clear --finish`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := storeManager.GetSessionStore()

		if viper.GetBool("finish") {
			state, ok := store.Restore()
			if !ok {
				fmt.Println("No session to finish.")
				return
			}
			if err := storeManager.FinishSession(state, time.Now()); err != nil {
				contract.LogFatal("Failed to finish session", err)
			}
			fmt.Println("Session archived and cleared.")
			return
		}

		if err := store.Clear(); err != nil {
			contract.LogFatal("Failed to clear session", err)
		}
		fmt.Println("Session cleared.")
	},
}
