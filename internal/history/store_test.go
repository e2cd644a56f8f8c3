package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTestStore(t)
	started := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	id, err := s.Put(Record{
		Assignment:             "write a calculator",
		InteractionDescription: "add two numbers",
		Report:                 "report body",
		StartedAt:              started,
		Duration:               90 * time.Second,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, id, rec.ID)
	require.Equal(t, "write a calculator", rec.Assignment)
	require.Equal(t, "report body", rec.Report)
	require.True(t, started.Equal(rec.StartedAt))
	require.Equal(t, 90*time.Second, rec.Duration)
}

func TestPutKeepsID(t *testing.T) {
	s := openTestStore(t)

	id, err := s.Put(Record{ID: "run-1", Report: "a"})
	require.NoError(t, err)
	require.Equal(t, "run-1", id)

	_, err = s.Put(Record{ID: "run-1", Report: "b"})
	require.NoError(t, err)

	rec, err := s.Get("run-1")
	require.NoError(t, err)
	require.Equal(t, "b", rec.Report)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"old", "newest", "middle"} {
		offset := map[string]time.Duration{"old": 0, "middle": time.Hour, "newest": 2 * time.Hour}[name]
		_, err := s.Put(Record{ID: name, Assignment: name, StartedAt: base.Add(offset)})
		require.NoError(t, err, i)
	}

	recs, err := s.List()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	require.Equal(t, "newest", recs[0].ID)
	require.Equal(t, "middle", recs[1].ID)
	require.Equal(t, "old", recs[2].ID)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.Put(Record{Report: "kept"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	rec, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, "kept", rec.Report)
}

func TestOpenReadOnlyMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	s, err := OpenReadOnly(path)
	require.NoError(t, err)

	recs, err := s.List()
	require.NoError(t, err)
	require.Empty(t, recs)

	_, err = s.Get("anything")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = s.Put(Record{Assignment: "x"})
	require.Error(t, err)

	require.NoError(t, s.Close())
	_, err = os.Stat(filepath.Dir(path))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenReadOnlyExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	w, err := Open(path)
	require.NoError(t, err)
	id, err := w.Put(Record{Assignment: "write a calculator", Report: "body"})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	s, err := OpenReadOnly(path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	rec, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, "body", rec.Report)

	recs, err := s.List()
	require.NoError(t, err)
	require.Len(t, recs, 1)

	_, err = s.Put(Record{Assignment: "y"})
	require.Error(t, err)
}
