package snapshot

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T, now func() time.Time) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStoreWithClock(filepath.Join(t.TempDir(), "sessions.db"), contract.DefaultStalenessCutoff, now)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	now, _ := fakeClock(sessionStart.Add(10 * time.Minute))
	store := newTestSQLiteStore(t, now)

	require.NoError(t, store.Save(testSession()))

	restored, ok := store.Restore()
	require.True(t, ok)
	assert.Equal(t, schema.StrengthWorkout, restored.WorkoutKind)
	assert.Len(t, restored.CompletedSets, 2)

	t.Run("save overwrites", func(t *testing.T) {
		updated := testSession()
		updated.ElapsedSeconds = 1200
		require.NoError(t, store.Save(updated))

		restored, ok := store.Restore()
		require.True(t, ok)
		assert.Equal(t, 1200, restored.ElapsedSeconds)

		status, err := store.Status()
		require.NoError(t, err)
		assert.True(t, status.HasSnapshot, "still exactly one snapshot row")
	})
}

func TestSQLiteStoreStaleness(t *testing.T) {
	now, advance := fakeClock(sessionStart)
	store := newTestSQLiteStore(t, now)

	require.NoError(t, store.Save(testSession()))
	advance(5 * time.Hour)

	_, ok := store.Restore()
	assert.False(t, ok)

	status, err := store.Status()
	require.NoError(t, err)
	assert.False(t, status.HasSnapshot, "stale row is deleted on restore")
}

func TestSQLiteStoreClear(t *testing.T) {
	now, _ := fakeClock(sessionStart)
	store := newTestSQLiteStore(t, now)

	require.NoError(t, store.Clear(), "clearing an empty store is a no-op")
	require.NoError(t, store.Save(testSession()))
	require.NoError(t, store.Clear())

	_, ok := store.Restore()
	assert.False(t, ok)
}

func TestSQLiteStoreHistory(t *testing.T) {
	now, _ := fakeClock(sessionStart)
	store := newTestSQLiteStore(t, now)

	first := schema.SessionRecord{
		WorkoutKind:     schema.StrengthWorkout,
		StartedAt:       sessionStart,
		DurationSeconds: 3600,
		TotalSets:       15,
		FinishedAt:      sessionStart.Add(time.Hour),
	}
	second := schema.SessionRecord{
		WorkoutKind:     schema.CardioWorkout,
		StartedAt:       sessionStart.Add(24 * time.Hour),
		DurationSeconds: 1800,
		TotalSets:       0,
		FinishedAt:      sessionStart.Add(24*time.Hour + 30*time.Minute),
	}

	id1, err := store.ArchiveSession(first)
	require.NoError(t, err)
	id2, err := store.ArchiveSession(second)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	records, err := store.ListSessions(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, schema.CardioWorkout, records[0].WorkoutKind, "most recent first")
	assert.Equal(t, schema.StrengthWorkout, records[1].WorkoutKind)
	assert.Equal(t, first.StartedAt, records[1].StartedAt)
	assert.Equal(t, 3600, records[1].DurationSeconds)

	t.Run("limit", func(t *testing.T) {
		records, err := store.ListSessions(1)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, schema.CardioWorkout, records[0].WorkoutKind)
	})
}

func TestSQLiteStoreReopen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sessions.db")
	now, _ := fakeClock(sessionStart)

	store, err := NewSQLiteStoreWithClock(dbPath, contract.DefaultStalenessCutoff, now)
	require.NoError(t, err)
	require.NoError(t, store.Save(testSession()))
	require.NoError(t, store.Close())

	// Relaunch: migrations are idempotent and the snapshot survives.
	reopened, err := NewSQLiteStoreWithClock(dbPath, contract.DefaultStalenessCutoff, now)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	restored, ok := reopened.Restore()
	require.True(t, ok)
	assert.Equal(t, 600, restored.ElapsedSeconds)
}

func TestManagerSQLiteBackend(t *testing.T) {
	cfg := &contract.Config{
		SessionDBPath:   filepath.Join(t.TempDir(), "sessions.db"),
		StalenessCutoff: contract.DefaultStalenessCutoff,
	}
	mgr, err := NewManager(schema.SQLiteBackend, cfg)
	require.NoError(t, err)
	defer mgr.Close()

	require.NotNil(t, mgr.GetHistoryStore())

	require.NoError(t, mgr.GetSessionStore().Save(testSession()))
	require.NoError(t, mgr.FinishSession(testSession(), sessionStart.Add(time.Hour)))

	_, ok := mgr.GetSessionStore().Restore()
	assert.False(t, ok, "finishing clears the snapshot")

	records, err := mgr.GetHistoryStore().ListSessions(0)
	require.NoError(t, err)
	require.Len(t, records, 1, "finishing archives the session")
	assert.Equal(t, 2, records[0].TotalSets)
}
