package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	playsCSV = `gameId,week,nflPlayId,nflPlayType,nflPlayDescription,nflPlayUrl
G1,1,P1,PASS,deep ball,http://x
G1,1,P2,RUSH,up the middle,
G2,2,P1,KICKOFF,,
G3,,P1,PASS,no week recorded,
`
	partsCSV = `gameId,nflPlayId,playerName,teamId,position
G1,P1,Alice,T1,QB
G1,P1,Bob,T1,WR
G1,P2,Alice,T1,QB
G2,P1,Carl,T2,K
`
	indexCSV = `playerName,college
Alice,State
Bob,Tech
`
)

func writeDataDir(t *testing.T, plays, parts, index string) string {
	t.Helper()
	dir := t.TempDir()
	if plays != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, PlaysFile), []byte(plays), 0o644))
	}
	if parts != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, PlayersFile), []byte(parts), 0o644))
	}
	if index != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte(index), 0o644))
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	t.Run("loads all three tables", func(t *testing.T) {
		dir := writeDataDir(t, playsCSV, partsCSV, indexCSV)

		tbl, err := LoadDir(dir)
		require.NoError(t, err)
		require.Len(t, tbl.Plays, 4)
		require.Len(t, tbl.Participations, 4)
		assert.Equal(t, []string{"playerName", "college"}, tbl.Index.Header)
		assert.Len(t, tbl.Index.Rows, 2)
		assert.Equal(t, []string{"Alice", "Bob", "Carl"}, tbl.PlayerNames)
		assert.False(t, tbl.LoadedAt.IsZero())
	})

	t.Run("week parses when numeric", func(t *testing.T) {
		dir := writeDataDir(t, playsCSV, partsCSV, "")

		tbl, err := LoadDir(dir)
		require.NoError(t, err)
		assert.True(t, tbl.Plays[0].WeekOK)
		assert.Equal(t, 1, tbl.Plays[0].Week)
		assert.False(t, tbl.Plays[3].WeekOK)
	})

	t.Run("missing index is fine", func(t *testing.T) {
		dir := writeDataDir(t, playsCSV, partsCSV, "")

		tbl, err := LoadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, tbl.Index.Header)
		assert.Empty(t, tbl.Index.Rows)
	})

	t.Run("missing plays file", func(t *testing.T) {
		dir := writeDataDir(t, "", partsCSV, "")

		_, err := LoadDir(dir)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing players file", func(t *testing.T) {
		dir := writeDataDir(t, playsCSV, "", "")

		_, err := LoadDir(dir)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing required column", func(t *testing.T) {
		bad := "gameId,nflPlayId,nflPlayType\nG1,P1,PASS\n"
		dir := writeDataDir(t, bad, partsCSV, "")

		_, err := LoadDir(dir)
		require.ErrorIs(t, err, ErrMalformed)
		assert.Contains(t, err.Error(), "week")
	})

	t.Run("header whitespace is trimmed", func(t *testing.T) {
		spaced := "gameId , week ,nflPlayId, nflPlayType\nG1,1,P1,PASS\n"
		dir := writeDataDir(t, spaced, partsCSV, "")

		tbl, err := LoadDir(dir)
		require.NoError(t, err)
		require.Len(t, tbl.Plays, 1)
		assert.Equal(t, "PASS", tbl.Plays[0].Type)
	})
}

func TestLoadReaders(t *testing.T) {
	t.Run("nil index reader", func(t *testing.T) {
		tbl, err := LoadReaders(strings.NewReader(playsCSV), strings.NewReader(partsCSV), nil)
		require.NoError(t, err)
		assert.Empty(t, tbl.Index.Header)
		assert.Len(t, tbl.Plays, 4)
	})

	t.Run("values are trimmed, names deduped and sorted", func(t *testing.T) {
		parts := "gameId,nflPlayId,playerName,teamId,position\nG1,P1, Alice ,T1,QB\nG1,P2,Alice,T1,QB\nG1,P1,Bob,T1,WR\n"
		tbl, err := LoadReaders(strings.NewReader(playsCSV), strings.NewReader(parts), nil)
		require.NoError(t, err)
		assert.Equal(t, "Alice", tbl.Participations[0].PlayerName)
		assert.Equal(t, []string{"Alice", "Bob"}, tbl.PlayerNames)
	})
}

func TestCache(t *testing.T) {
	t.Run("second load returns the same tables", func(t *testing.T) {
		dir := writeDataDir(t, playsCSV, partsCSV, "")
		c := NewCache()

		first, err := c.LoadDir(dir)
		require.NoError(t, err)
		second, err := c.LoadDir(dir)
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("file change invalidates", func(t *testing.T) {
		dir := writeDataDir(t, playsCSV, partsCSV, "")
		c := NewCache()

		first, err := c.LoadDir(dir)
		require.NoError(t, err)

		grown := playsCSV + "G9,3,P1,RUSH,,\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, PlaysFile), []byte(grown), 0o644))

		second, err := c.LoadDir(dir)
		require.NoError(t, err)
		assert.NotSame(t, first, second)
		assert.Len(t, second.Plays, 5)
	})

	t.Run("touch alone invalidates", func(t *testing.T) {
		dir := writeDataDir(t, playsCSV, partsCSV, "")
		c := NewCache()

		first, err := c.LoadDir(dir)
		require.NoError(t, err)

		later := time.Now().Add(2 * time.Second)
		require.NoError(t, os.Chtimes(filepath.Join(dir, PlayersFile), later, later))

		second, err := c.LoadDir(dir)
		require.NoError(t, err)
		assert.NotSame(t, first, second)
	})

	t.Run("explicit invalidate", func(t *testing.T) {
		dir := writeDataDir(t, playsCSV, partsCSV, "")
		c := NewCache()

		first, err := c.LoadDir(dir)
		require.NoError(t, err)
		c.Invalidate()

		second, err := c.LoadDir(dir)
		require.NoError(t, err)
		assert.NotSame(t, first, second)
	})
}

func TestDirFingerprint(t *testing.T) {
	dir := writeDataDir(t, playsCSV, partsCSV, "")

	fp := DirFingerprint(dir)
	assert.Contains(t, fp, "missing") // index file absent

	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexFile), []byte(indexCSV), 0o644))
	assert.NotEqual(t, fp, DirFingerprint(dir))
}

func TestService(t *testing.T) {
	t.Run("folder mode by default", func(t *testing.T) {
		dir := writeDataDir(t, playsCSV, partsCSV, "")
		s := NewService(dir)

		assert.Equal(t, ModeFolder, s.Mode())
		tbl, err := s.Tables()
		require.NoError(t, err)
		assert.Len(t, tbl.Plays, 4)
	})

	t.Run("upload overrides the folder", func(t *testing.T) {
		dir := writeDataDir(t, playsCSV, partsCSV, "")
		s := NewService(dir)

		up, err := LoadReaders(strings.NewReader("gameId,week,nflPlayId,nflPlayType\nU1,1,P1,PASS\n"), strings.NewReader(partsCSV), nil)
		require.NoError(t, err)
		s.SetUpload(up)

		assert.Equal(t, ModeUpload, s.Mode())
		tbl, err := s.Tables()
		require.NoError(t, err)
		assert.Same(t, up, tbl)
		assert.True(t, strings.HasPrefix(s.Fingerprint(), "upload-"))
	})

	t.Run("refresh drops the override", func(t *testing.T) {
		dir := writeDataDir(t, playsCSV, partsCSV, "")
		s := NewService(dir)

		up, err := LoadReaders(strings.NewReader(playsCSV), strings.NewReader(partsCSV), nil)
		require.NoError(t, err)
		s.SetUpload(up)
		s.Refresh()

		assert.Equal(t, ModeFolder, s.Mode())
		tbl, err := s.Tables()
		require.NoError(t, err)
		assert.NotSame(t, up, tbl)
	})
}
