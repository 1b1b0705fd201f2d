// Package parquet provides data structures and functions for exporting
// workout session history to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/repvault/repvault/schema"
)

// SessionHistory represents one finished workout session.
// This struct maps to the session_history database table.
type SessionHistory struct {
	// SessionID is the unique identifier of the archived session
	SessionID int64 `parquet:"session_id,snappy"`

	// WorkoutKind is the category of the workout (strength, cardio, ...)
	WorkoutKind string `parquet:"workout_kind,snappy"`

	// StartedAt is when the session began
	StartedAt time.Time `parquet:"started_at,snappy"`

	// DurationSeconds is the active (unpaused) session duration
	DurationSeconds int32 `parquet:"duration_seconds,snappy"`

	// TotalSets is the number of completed sets
	TotalSets int32 `parquet:"total_sets,snappy"`

	// FinishedAt is when the session was explicitly finished
	FinishedAt time.Time `parquet:"finished_at,snappy"`
}

// ConvertSessionRecords converts schema records into their Parquet
// representation.
func ConvertSessionRecords(records []schema.SessionRecord) []SessionHistory {
	out := make([]SessionHistory, 0, len(records))
	for _, rec := range records {
		out = append(out, SessionHistory{
			SessionID:       rec.SessionID,
			WorkoutKind:     string(rec.WorkoutKind),
			StartedAt:       rec.StartedAt,
			DurationSeconds: int32(rec.DurationSeconds),
			TotalSets:       int32(rec.TotalSets),
			FinishedAt:      rec.FinishedAt,
		})
	}
	return out
}

// WriteSessionHistoryParquet writes a slice of SessionHistory structs
// to a Parquet file. The schema is derived from the struct tags.
func WriteSessionHistoryParquet(data []SessionHistory, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[SessionHistory](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}
