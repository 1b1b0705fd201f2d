package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/internal/lifeclock"
	"github.com/repvault/repvault/internal/notify"
	"github.com/spf13/cobra"
)

// restCmd runs a rest countdown in the terminal.
var restCmd = &cobra.Command{
	Use:   "rest <duration>",
	Short: "Run a rest countdown between sets",
	Long: `Count down a rest interval, with a backstop notification.

The countdown is anchored to a wall-clock end time, not a decrementing
counter, so a suspended terminal or a sleeping laptop does not stretch the
rest: on wake the display snaps to the true remaining time. A notification
backstop fires through --notify-command even if this process never gets to
observe the expiry.

Press Ctrl-C to dismiss the countdown early; dismissal cancels the pending
notification.

Examples:
  # Standard rest between strength sets
  repvault rest 90s

  # Longer rest, with a desktop notification backstop
  repvault rest 3m --notify-command notify-send`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		duration, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", args[0], err)
		}
		if duration <= 0 {
			return fmt.Errorf("duration must be positive, got %s", duration)
		}

		sched := notify.ForCommand(cfg.NotifyCommand)
		countdown := lifeclock.NewRestCountdown(duration, sched)

		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt)
		defer stop()

		// The ticker only drives the display. Remaining time is derived
		// from the anchored end timestamp on every read, so missed ticks
		// never accumulate drift.
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		fmt.Printf("Resting for %s...\n", contract.FormatClock(duration))
		for {
			select {
			case <-ctx.Done():
				countdown.Dismiss()
				fmt.Println("\nRest dismissed.")
				return nil
			case <-ticker.C:
				if countdown.Done() {
					countdown.Acknowledge()
					fmt.Println("\rRest complete. Back to your workout! 💪")
					return nil
				}
				fmt.Printf("\r%s remaining ", contract.FormatClock(countdown.Remaining()))
			}
		}
	},
}
