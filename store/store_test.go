package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndListSearches(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.RecordSearch("sess-1", "Alice", "1,2,3", 12))
	require.NoError(t, s.RecordSearch("sess-1", "Bob", "1", 4))
	require.NoError(t, s.RecordSearch("sess-2", "Alice", "2", 7))

	got, err := s.RecentSearches(10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Newest first.
	assert.Equal(t, "Alice", got[0].Player)
	assert.Equal(t, "2", got[0].Weeks)
	assert.Equal(t, 7, got[0].Snaps)
	assert.Equal(t, "Bob", got[1].Player)
	assert.Equal(t, "Alice", got[2].Player)
	assert.NotEmpty(t, got[0].CreatedAt)
}

func TestRecentSearchesLimit(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordSearch("sess-1", "Alice", "1", i))
	}

	got, err := s.RecentSearches(2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Non-positive limits fall back to the default rather than erroring.
	got, err = s.RecentSearches(0)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestRecentSearchesEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.RecentSearches(10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
