package cmd

import (
	"fmt"
	"os"

	"github.com/repvault/repvault/internal/fetchgate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// fetchCmd fetches a URL through the cache and rate limiter.
var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch a URL through the cache and rate limiter",
	Long: `Fetch a payload the way the app does: cache first, limiter second.

A cache hit is served from disk without touching the network or consuming a
rate-limit slot. On a miss the request waits for a limiter slot, performs
the GET, and stores the response under the key with the configured TTL.
Concurrent misses for the same key collapse into a single request.

The payload is written to stdout; pipe it or use --output-file.

Examples:
  # Fetch and cache an exercise list
  repvault fetch https://api.example.com/exercises --key exercises

  # Re-run immediately: served from cache, no limiter slot consumed
  repvault fetch https://api.example.com/exercises --key exercises`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		url := args[0]
		key := viper.GetString("key")
		if key == "" {
			key = url
		}

		gateway := fetchgate.New(cache, limiter)
		payload, err := gateway.Fetch(rootCtx, key, url, cfg.FetchTTL)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}

		if cfg.OutputFile != "" {
			if err := os.WriteFile(cfg.OutputFile, payload, 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			fmt.Fprintf(os.Stderr, "💾 Wrote %d bytes to %s\n", len(payload), cfg.OutputFile)
			return nil
		}
		_, err = os.Stdout.Write(payload)
		return err
	},
}
