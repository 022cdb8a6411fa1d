package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"coplayers/dataset"
)

type playKey struct {
	game string
	play string
}

func keyOf(gameID, playID string) playKey {
	return playKey{game: gameID, play: playID}
}

// CoPlayer is one same-team teammate with their shared-play count and most
// frequent in-scope position.
type CoPlayer struct {
	Teammate string `json:"teammate"`
	Position string `json:"position"`
	TeamID   string `json:"teamId"`
	Count    int    `json:"count"`
}

// Summary is the player's header line: qualifying snap count plus the team and
// position sets seen on those snaps.
type Summary struct {
	Snaps     int    `json:"snaps"`
	Teams     string `json:"teams"`
	Positions string `json:"positions"`
}

// PlaysInvolving returns the distinct in-scope plays the player appears in,
// sorted by (gameId, week, nflPlayId). Duplicate participation rows on one
// play collapse before the join.
func PlaysInvolving(scoped []dataset.Play, parts []dataset.Participation, player string) []dataset.Play {
	target := foldName(player)

	involved := make(map[playKey]struct{})
	for _, p := range parts {
		if foldName(p.PlayerName) == target {
			involved[keyOf(p.GameID, p.PlayID)] = struct{}{}
		}
	}

	// scoped is unique per key (catalog invariant), so this join cannot
	// duplicate plays.
	var out []dataset.Play
	for _, pl := range scoped {
		if _, ok := involved[keyOf(pl.GameID, pl.PlayID)]; ok {
			out = append(out, pl)
		}
	}
	sortPlays(out)
	return out
}

// CoPlayerCounts counts, per (teammate, team), the in-scope plays where the
// teammate shared the player's team, and annotates each teammate with their
// most frequent in-scope position. Sorted by count descending, then teammate,
// then team.
func CoPlayerCounts(scoped []dataset.Play, parts []dataset.Participation, player string) []CoPlayer {
	target := foldName(player)

	inScope := make(map[playKey]struct{}, len(scoped))
	for _, pl := range scoped {
		inScope[keyOf(pl.GameID, pl.PlayID)] = struct{}{}
	}

	ppScoped := make([]dataset.Participation, 0, len(parts))
	for _, p := range parts {
		if _, ok := inScope[keyOf(p.GameID, p.PlayID)]; ok {
			ppScoped = append(ppScoped, p)
		}
	}

	// The player's team on each in-scope play. A player is on at most one team
	// per play; the first row wins if the data violates that.
	myTeam := make(map[playKey]string)
	for _, p := range ppScoped {
		if foldName(p.PlayerName) != target {
			continue
		}
		k := keyOf(p.GameID, p.PlayID)
		if _, ok := myTeam[k]; !ok {
			myTeam[k] = p.TeamID
		}
	}

	type teamKey struct {
		name string
		team string
	}
	counts := make(map[teamKey]int)
	posCounts := make(map[string]map[string]int)

	for _, p := range ppScoped {
		// Position mode is computed over every in-scope row of the name, not
		// just same-team rows; blanks are excluded.
		if p.Position != "" {
			pc, ok := posCounts[p.PlayerName]
			if !ok {
				pc = make(map[string]int)
				posCounts[p.PlayerName] = pc
			}
			pc[p.Position]++
		}

		team := myTeam[keyOf(p.GameID, p.PlayID)]
		if team == "" {
			// Player absent from the play, or present with a blank teamId;
			// blank teams never match.
			continue
		}
		if p.TeamID != team || foldName(p.PlayerName) == target {
			continue
		}
		counts[teamKey{name: p.PlayerName, team: p.TeamID}]++
	}

	out := make([]CoPlayer, 0, len(counts))
	for k, n := range counts {
		out = append(out, CoPlayer{
			Teammate: k.name,
			Position: modalPosition(posCounts[k.name]),
			TeamID:   k.team,
			Count:    n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Teammate != out[j].Teammate {
			return out[i].Teammate < out[j].Teammate
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}

// modalPosition picks the most frequent position; ties break to the
// lexicographically smallest so the result is independent of map order.
// No recorded positions at all means "Unknown".
func modalPosition(counts map[string]int) string {
	best, bestN := "", 0
	for pos, n := range counts {
		if n > bestN || (n == bestN && pos < best) {
			best, bestN = pos, n
		}
	}
	if best == "" {
		return "Unknown"
	}
	return best
}

// PassRushSnaps summarizes the player's qualifying snaps: deduplicated row
// count, distinct non-blank teams, and distinct positions with blanks shown
// as "Unknown". A player with no in-scope rows yields {0, "", ""}.
func PassRushSnaps(scoped []dataset.Play, parts []dataset.Participation, player string) Summary {
	target := foldName(player)

	inScope := make(map[playKey]struct{}, len(scoped))
	for _, pl := range scoped {
		inScope[keyOf(pl.GameID, pl.PlayID)] = struct{}{}
	}

	type row struct {
		game, play, team, pos string
	}
	seen := make(map[row]struct{})
	teams := make(map[string]struct{})
	positions := make(map[string]struct{})
	snaps := 0

	for _, p := range parts {
		if foldName(p.PlayerName) != target {
			continue
		}
		if _, ok := inScope[keyOf(p.GameID, p.PlayID)]; !ok {
			continue
		}
		r := row{game: p.GameID, play: p.PlayID, team: p.TeamID, pos: p.Position}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		snaps++
		if p.TeamID != "" {
			teams[p.TeamID] = struct{}{}
		}
		pos := p.Position
		if pos == "" {
			pos = "Unknown"
		}
		positions[pos] = struct{}{}
	}

	return Summary{
		Snaps:     snaps,
		Teams:     joinSortedKeys(teams, ", "),
		Positions: joinSortedKeys(positions, ", "),
	}
}

// TeammatesOnPlay lists the other participants sharing the player's team on
// one exact play, formatted "Name (POS)", in the table's natural row order.
// The player being absent from the play yields nil.
func TeammatesOnPlay(parts []dataset.Participation, gameID, playID, player string) []string {
	target := foldName(player)

	var rows []dataset.Participation
	for _, p := range parts {
		if p.GameID == gameID && p.PlayID == playID {
			rows = append(rows, p)
		}
	}

	team := ""
	for _, r := range rows {
		if foldName(r.PlayerName) == target {
			team = r.TeamID
			break
		}
	}
	if team == "" {
		return nil
	}

	var out []string
	for _, r := range rows {
		if r.TeamID != team || foldName(r.PlayerName) == target {
			continue
		}
		pos := r.Position
		if pos == "" {
			pos = "Unknown"
		}
		out = append(out, fmt.Sprintf("%s (%s)", r.PlayerName, pos))
	}
	return out
}

func sortPlays(plays []dataset.Play) {
	sort.SliceStable(plays, func(i, j int) bool {
		a, b := plays[i], plays[j]
		if c := compareID(a.GameID, b.GameID); c != 0 {
			return c < 0
		}
		if a.WeekOK != b.WeekOK {
			return a.WeekOK // missing weeks last
		}
		if a.WeekOK && a.Week != b.Week {
			return a.Week < b.Week
		}
		return compareID(a.PlayID, b.PlayID) < 0
	})
}

// compareID orders opaque identifiers numerically when both parse as
// integers, falling back to string order.
func compareID(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func joinSortedKeys(set map[string]struct{}, sep string) string {
	if len(set) == 0 {
		return ""
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, sep)
}
