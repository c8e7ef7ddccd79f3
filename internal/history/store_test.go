package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.RecordRun(KindSetup, "requirements.txt", true, 0, 3*time.Second, nil))
	require.NoError(t, store.RecordRun(KindPlay, "gather_loop", true, 120, 8*time.Second, nil))
	require.NoError(t, store.RecordRun(KindPlay, "walk_to_bank", false, 4, time.Second, fmt.Errorf("injection blocked")))

	runs, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// Newest first.
	assert.Equal(t, "walk_to_bank", runs[0].Target)
	assert.False(t, runs[0].Success)
	assert.Equal(t, "injection blocked", runs[0].Error)
	assert.Equal(t, 4, runs[0].Events)
	assert.Equal(t, time.Second, runs[0].Duration)
	assert.NotEmpty(t, runs[0].ID)
	assert.False(t, runs[0].CreatedAt.IsZero())

	assert.Equal(t, "gather_loop", runs[1].Target)
	assert.Equal(t, "requirements.txt", runs[2].Target)
}

func TestRecentLimit(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordRun(KindPlay, fmt.Sprintf("run-%d", i), true, i, 0, nil))
	}

	runs, err := store.Recent(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-4", runs[0].Target)
	assert.Equal(t, "run-3", runs[1].Target)
}

func TestByKind(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.RecordRun(KindSetup, "requirements.txt", true, 0, 0, nil))
	require.NoError(t, store.RecordRun(KindPlay, "gather_loop", true, 50, 0, nil))
	require.NoError(t, store.RecordRun(KindPlaybook, "morning.md", true, 300, 0, nil))

	runs, err := store.ByKind(KindPlay, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "gather_loop", runs[0].Target)

	runs, err = store.ByKind("unknown", 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestPrune(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.RecordRun(KindPlay, "old", true, 1, 0, nil))

	// Backdate the row so the prune cutoff catches it.
	_, err := store.db.Exec(`UPDATE runs SET created_at = ? WHERE target = 'old'`,
		time.Now().UTC().Add(-48*time.Hour))
	require.NoError(t, err)

	require.NoError(t, store.RecordRun(KindPlay, "fresh", true, 1, 0, nil))

	pruned, err := store.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	runs, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "fresh", runs[0].Target)
}

func TestInMemoryStore(t *testing.T) {
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.RecordRun(KindSetup, "requirements.txt", true, 0, 0, nil))
	runs, err := store.Recent(1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestNewStoreCreatesParentDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	store, err := NewStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	assert.FileExists(t, dbPath)
}
