package cmd

import (
	"fmt"

	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheCmd focused on disk cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the disk-backed response cache",
	Long: `Manage the disk cache that keeps previously fetched data available offline.

RepVault caches fetched payloads as one file per key so the app stays usable
in a dead zone: a cached exercise list beats a spinner. Entries carry a
time-to-live and are dropped lazily on read, or eagerly by the sweep command.

Subcommands:
  status     - Show cache statistics and per-entry freshness
  sweep      - Delete every expired entry
  clear      - Remove all cached data
  invalidate - Remove one entry or a prefix of entries

Examples:
  # Check cache health
  repvault cache status

  # Reclaim disk space
  repvault cache sweep`,
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and per-entry freshness",
	Long: `Show detailed information about the disk cache.

Displays:
- Cache directory and total size on disk
- Total number of cached entries
- Last and oldest entry timestamps
- A per-entry table with age, size and freshness label

Use this to:
- Verify caching is working
- Spot entries that are about to expire
- Debug stale-data issues

Examples:
  # Check cache status
  repvault cache status

  # Machine-readable output
  repvault cache status --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := outwriter.PrintCacheStatus(cache.Status(), cache.Entries(), cfg); err != nil {
			contract.LogFatal("Failed to print cache status", err)
		}
	},
}

// cacheSweepCmd deletes expired entries.
var cacheSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete every expired cache entry",
	Long: `Scan the cache directory and delete entries past their time-to-live.

Expired entries are already invisible to reads; sweeping reclaims the disk
space they occupy. Unreadable entries are removed too, since they can never
be served.

Examples:
  # Reclaim disk space
  repvault cache sweep`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		removed := cache.SweepExpired()
		fmt.Printf("Removed %d expired entries.\n", removed)
	},
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached data",
	Long: `Delete every entry in the disk cache.

Use this when:
- Cached data may be stale or corrupted
- Testing behavior without cache
- Reclaiming all cache disk space at once

Examples:
  # Clear the cache
  repvault cache clear`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		cache.InvalidateAll()
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheInvalidateCmd removes one entry or a prefix of entries.
var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <key>",
	Short: "Remove one cache entry, or every entry under a prefix",
	Long: `Remove specific entries from the disk cache.

By default the argument is an exact key. With --prefix, every entry whose
key starts with the argument is removed, which is how related data is
dropped together after a mutation (e.g. all "workout_" entries after
logging a workout).

Examples:
  # Drop a single entry
  repvault cache invalidate exercises

  # Drop everything under a prefix
  repvault cache invalidate workout_ --prefix`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		key := args[0]
		if viper.GetBool("prefix") {
			cache.InvalidatePrefix(key)
			fmt.Printf("Invalidated entries with prefix %q.\n", key)
			return
		}
		cache.Invalidate(key)
		fmt.Printf("Invalidated entry %q.\n", key)
	},
}
