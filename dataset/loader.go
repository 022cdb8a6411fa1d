package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	PlaysFile   = "plays_unique.csv"
	PlayersFile = "play_players.csv"
	IndexFile   = "players_index.csv"
)

var (
	ErrNotFound  = errors.New("source file not found")
	ErrMalformed = errors.New("malformed source table")
)

// LoadDir reads the three CSVs from dir. plays_unique.csv and play_players.csv
// are required; a missing players_index.csv yields an empty index table.
func LoadDir(dir string) (*Tables, error) {
	plays, err := os.Open(filepath.Join(dir, PlaysFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Join(dir, PlaysFile))
		}
		return nil, fmt.Errorf("open plays: %w", err)
	}
	defer plays.Close()

	parts, err := os.Open(filepath.Join(dir, PlayersFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filepath.Join(dir, PlayersFile))
		}
		return nil, fmt.Errorf("open play players: %w", err)
	}
	defer parts.Close()

	var index io.Reader
	idxFile, err := os.Open(filepath.Join(dir, IndexFile))
	if err == nil {
		defer idxFile.Close()
		index = idxFile
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open players index: %w", err)
	}

	return LoadReaders(plays, parts, index)
}

// LoadReaders parses the three tables from already-open streams (upload mode).
// index may be nil.
func LoadReaders(plays, parts, index io.Reader) (*Tables, error) {
	t := &Tables{LoadedAt: time.Now()}

	var err error
	if t.Plays, err = parsePlays(plays); err != nil {
		return nil, err
	}
	if t.Participations, err = parseParticipations(parts); err != nil {
		return nil, err
	}
	if index != nil {
		if t.Index, err = parseIndex(index); err != nil {
			return nil, err
		}
	}

	t.PlayerNames = distinctNames(t.Participations)
	return t, nil
}

// readHeader reads the header row and trims surrounding whitespace from every
// column name.
func readHeader(r *csv.Reader, table string) (map[string]int, error) {
	hdr, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read header: %v", ErrMalformed, table, err)
	}
	cols := make(map[string]int, len(hdr))
	for i, h := range hdr {
		cols[strings.TrimSpace(h)] = i
	}
	return cols, nil
}

func requireColumns(cols map[string]int, table string, names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := cols[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s: missing columns %s", ErrMalformed, table, strings.Join(missing, ", "))
	}
	return nil
}

func field(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func parsePlays(src io.Reader) ([]Play, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	cols, err := readHeader(r, PlaysFile)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(cols, PlaysFile, "gameId", "nflPlayId", "week", "nflPlayType"); err != nil {
		return nil, err
	}

	plays := make([]Play, 0, 4096)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: read row: %v", ErrMalformed, PlaysFile, err)
		}

		p := Play{
			GameID:      strings.TrimSpace(field(rec, cols, "gameId")),
			PlayID:      strings.TrimSpace(field(rec, cols, "nflPlayId")),
			Type:        field(rec, cols, "nflPlayType"),
			Description: field(rec, cols, "nflPlayDescription"),
			URL:         field(rec, cols, "nflPlayUrl"),
		}
		if w, err := strconv.Atoi(strings.TrimSpace(field(rec, cols, "week"))); err == nil {
			p.Week = w
			p.WeekOK = true
		}
		plays = append(plays, p)
	}
	return plays, nil
}

func parseParticipations(src io.Reader) ([]Participation, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	cols, err := readHeader(r, PlayersFile)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(cols, PlayersFile, "gameId", "nflPlayId", "playerName", "teamId", "position"); err != nil {
		return nil, err
	}

	parts := make([]Participation, 0, 16384)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: read row: %v", ErrMalformed, PlayersFile, err)
		}

		parts = append(parts, Participation{
			GameID:     strings.TrimSpace(field(rec, cols, "gameId")),
			PlayID:     strings.TrimSpace(field(rec, cols, "nflPlayId")),
			PlayerName: strings.TrimSpace(field(rec, cols, "playerName")),
			TeamID:     strings.TrimSpace(field(rec, cols, "teamId")),
			Position:   strings.TrimSpace(field(rec, cols, "position")),
		})
	}
	return parts, nil
}

func parseIndex(src io.Reader) (IndexTable, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1

	hdr, err := r.Read()
	if err == io.EOF {
		return IndexTable{}, nil
	}
	if err != nil {
		return IndexTable{}, fmt.Errorf("%w: %s: read header: %v", ErrMalformed, IndexFile, err)
	}

	t := IndexTable{Header: make([]string, len(hdr))}
	for i, h := range hdr {
		t.Header[i] = strings.TrimSpace(h)
	}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return IndexTable{}, fmt.Errorf("%w: %s: read row: %v", ErrMalformed, IndexFile, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func distinctNames(parts []Participation) []string {
	set := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		if p.PlayerName == "" {
			continue
		}
		set[p.PlayerName] = struct{}{}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
