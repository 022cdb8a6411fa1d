package query

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"coplayers/dataset"
)

// AnnotatedPlay is a qualifying play with the optional "others on the field"
// column filled in.
type AnnotatedPlay struct {
	dataset.Play
	OtherTeammates string `json:"otherTeammates,omitempty"`
}

// AnnotatePlays wraps plays for presentation; when includeTeammates is set it
// also computes the same-team participants on every play. That pass walks the
// full participation table once per play, which is why the UI keeps it behind
// a toggle.
func AnnotatePlays(plays []dataset.Play, parts []dataset.Participation, player string, includeTeammates bool) []AnnotatedPlay {
	out := make([]AnnotatedPlay, len(plays))
	for i, pl := range plays {
		out[i] = AnnotatedPlay{Play: pl}
		if includeTeammates {
			out[i].OtherTeammates = strings.Join(TeammatesOnPlay(parts, pl.GameID, pl.PlayID, player), ", ")
		}
	}
	return out
}

// WriteCoPlayersCSV writes the downloadable co-player table, preserving row
// order.
func WriteCoPlayersCSV(w io.Writer, rows []CoPlayer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Teammate", "Position", "TeamId", "Plays together"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Teammate, r.Position, r.TeamID, strconv.Itoa(r.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePlaysCSV writes the downloadable plays table. Columns the source file
// lacked come out empty; the otherTeammates column appears only when it was
// computed.
func WritePlaysCSV(w io.Writer, rows []AnnotatedPlay, includeTeammates bool) error {
	cw := csv.NewWriter(w)

	header := []string{"gameId", "week", "nflPlayId", "nflPlayType", "nflPlayDescription", "nflPlayUrl"}
	if includeTeammates {
		header = append(header, "otherTeammates")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		week := ""
		if r.WeekOK {
			week = strconv.Itoa(r.Week)
		}
		rec := []string{r.GameID, week, r.PlayID, r.Type, r.Description, r.URL}
		if includeTeammates {
			rec = append(rec, r.OtherTeammates)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
