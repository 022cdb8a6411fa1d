package dataset

import "time"

// Play is one row of the play catalog. (GameID, PlayID) uniquely identifies a
// play; the catalog is pre-deduplicated upstream.
type Play struct {
	GameID      string `json:"gameId"`
	PlayID      string `json:"nflPlayId"`
	Week        int    `json:"week"`
	WeekOK      bool   `json:"-"`
	Type        string `json:"nflPlayType"`
	Description string `json:"nflPlayDescription,omitempty"`
	URL         string `json:"nflPlayUrl,omitempty"`
}

// Participation associates one player with one play and team.
type Participation struct {
	GameID     string `json:"gameId"`
	PlayID     string `json:"nflPlayId"`
	PlayerName string `json:"playerName"`
	TeamID     string `json:"teamId"`
	Position   string `json:"position"`
}

// IndexTable holds the optional players_index.csv verbatim. No computation
// depends on it; it is loaded so its absence vs. emptiness is observable.
type IndexTable struct {
	Header []string
	Rows   [][]string
}

// Tables is one immutable load of the three source tables. Queries never
// mutate it; every derived view is a fresh slice.
type Tables struct {
	Plays          []Play
	Participations []Participation
	Index          IndexTable
	PlayerNames    []string // sorted distinct participation names
	LoadedAt       time.Time
}
