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

// PrintSessionStatus prints the session store status and, when one is
// present, the restorable snapshot.
func PrintSessionStatus(status schema.SessionStoreStatus, state *schema.ActiveSessionState, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				Status   schema.SessionStoreStatus  `json:"status"`
				Snapshot *schema.ActiveSessionState `json:"snapshot,omitempty"`
			}{status, state})
		}, "Wrote JSON")
	}

	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		fmt.Fprintf(w, "Session Backend: %s\n", status.Backend)
		fmt.Fprintf(w, "Connected: %t\n", status.Connected)
		if status.Backend == string(schema.SQLiteBackend) {
			fmt.Fprintf(w, "Archived Sessions: %d\n", status.TotalHistory)
		}
		if state == nil {
			fmt.Fprintln(w, "No session to resume.")
			return nil
		}
		fmt.Fprintf(w, "Workout: %s\n", state.WorkoutKind)
		fmt.Fprintf(w, "Started: %s\n", state.StartedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Elapsed: %s\n", contract.FormatClock(time.Duration(state.ElapsedSeconds)*time.Second))
		fmt.Fprintf(w, "Completed Sets: %d\n", len(state.CompletedSets))
		fmt.Fprintf(w, "Saved: %s\n", state.SavedAt.Format("2006-01-02 15:04:05"))
		return nil
	}, "Wrote session status")
}

// PrintSessionHistory prints archived sessions using the configured
// output format.
func PrintSessionHistory(records []schema.SessionRecord, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, records)
		}, "Wrote JSON")
	}

	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if len(records) == 0 {
			fmt.Fprintln(w, "No archived sessions.")
			return nil
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"ID", "Workout", "Started", "Duration", "Sets"})
		table.Configure(func(tcfg *tablewriter.Config) {
			tcfg.Row.Alignment.Global = tw.AlignRight
		})

		var data [][]string
		for _, rec := range records {
			data = append(data, []string{
				fmt.Sprintf("%d", rec.SessionID),
				string(rec.WorkoutKind),
				rec.StartedAt.Format("2006-01-02 15:04"),
				contract.FormatClock(time.Duration(rec.DurationSeconds) * time.Second),
				fmt.Sprintf("%d", rec.TotalSets),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nTotal sessions: %d\n", len(records))
		return nil
	}, "Wrote session history")
}
