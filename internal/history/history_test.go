package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/n0roo/mdhelper/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv(db.EnvDBType, "")
	s, dbType, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.Equal(t, db.TypeSQLite, dbType)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecord_RoundTrip(t *testing.T) {
	s := openStore(t)

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	run := &Run{
		Vault:      "/vault",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Documents:  12,
		Tags:       30,
		Reports:    2,
		Failed:     1,
		Entries:    9,
		Status:     StatusPartial,
	}
	id, err := s.Record(run, []Report{
		{Title: "Games", Target: "Games.md", Entries: 9, Bytes: 420},
		{Title: "Broken", Target: "Broken.md", Error: "unknown attribute"},
	})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, run.ID)

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "/vault", got.Vault)
	assert.True(t, got.StartedAt.Equal(started))
	assert.Equal(t, 1500*time.Millisecond, got.Duration())
	assert.Equal(t, StatusPartial, got.Status)
	assert.Equal(t, 9, got.Entries)

	reports, err := s.Reports(id)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "Games", reports[0].Title)
	assert.Equal(t, 420, reports[0].Bytes)
	assert.Equal(t, "unknown attribute", reports[1].Error)
	assert.Equal(t, 1, reports[1].Position)
}

func TestRecent_NewestFirst(t *testing.T) {
	s := openStore(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, status := range []Status{StatusSuccess, StatusFailed, StatusSuccess} {
		_, err := s.Record(&Run{
			Vault:     "/vault",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Status:    status,
		}, nil)
		require.NoError(t, err)
	}

	runs, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].StartedAt.Equal(base.Add(2*time.Hour)))
	assert.Equal(t, StatusFailed, runs[1].Status)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Runs)
	assert.Equal(t, 1, stats.Failed)
	assert.True(t, stats.LastRunAt.Equal(base.Add(2*time.Hour)))
}

func TestGet_Missing(t *testing.T) {
	s := openStore(t)
	_, err := s.Get("nope")
	assert.Error(t, err)
}

func TestStats_Empty(t *testing.T) {
	s := openStore(t)
	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Runs)
	assert.True(t, stats.LastRunAt.IsZero())
}
