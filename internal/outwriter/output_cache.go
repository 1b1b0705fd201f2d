package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/schema"
)

// PrintCacheStatus prints cache status information using the
// configured output format.
func PrintCacheStatus(status schema.CacheStatus, entries []schema.CacheEntryInfo, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				Status  schema.CacheStatus      `json:"status"`
				Entries []schema.CacheEntryInfo `json:"entries"`
			}{status, entries})
		}, "Wrote JSON")
	}

	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		fmt.Fprintf(w, "Cache Directory: %s\n", status.Directory)
		fmt.Fprintf(w, "Total Entries: %d\n", status.TotalEntries)
		fmt.Fprintf(w, "Total Size: %d bytes\n", status.TotalSizeBytes)
		if status.TotalEntries > 0 {
			fmt.Fprintf(w, "Last Entry: %s\n", status.LastEntryTime.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(w, "Oldest Entry: %s\n", status.OldestEntryTime.Format("2006-01-02 15:04:05"))
		}
		if len(entries) == 0 {
			return nil
		}
		fmt.Fprintln(w)
		return writeCacheEntryTable(w, entries, cfg)
	}, "Wrote cache status")
}

// writeCacheEntryTable renders the per-entry diagnostics table.
func writeCacheEntryTable(w io.Writer, entries []schema.CacheEntryInfo, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Key", "Stored", "TTL", "Size", "Freshness"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	keyWidth := getMaxTableKeyWidth(cfg)
	var data [][]string
	for _, entry := range entries {
		label := contract.GetPlainFreshness(entry.AgeRatio)
		if cfg.UseColors {
			label = contract.GetColorFreshness(entry.AgeRatio)
		}
		data = append(data, []string{
			contract.TruncatePath(entry.Key, keyWidth),
			entry.StoredAt.Format("2006-01-02 15:04:05"),
			entry.TTL.Round(time.Second).String(),
			fmt.Sprintf("%dB", entry.SizeBytes),
			label,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// PrintLimiterStatus prints a point-in-time probe of the rate limiter.
func PrintLimiterStatus(status schema.LimiterStatus, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	}

	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		fmt.Fprintf(w, "Window: %s\n", status.Window)
		fmt.Fprintf(w, "Max Requests: %d\n", status.MaxRequests)
		fmt.Fprintf(w, "Used: %d\n", status.Used)
		fmt.Fprintf(w, "Remaining: %d\n", status.Remaining)
		if status.Blocked {
			fmt.Fprintf(w, "Blocked: next slot in %s\n", status.RetryAfter.Round(time.Millisecond))
		} else {
			fmt.Fprintf(w, "Blocked: no\n")
		}
		return nil
	}, "Wrote limiter status")
}
