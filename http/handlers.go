package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"coplayers/dataset"
	"coplayers/query"
	"coplayers/session"
	"coplayers/store"
	"coplayers/ws"
)

const maxUploadBytes = 64 << 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Only allow same origin
		return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
	},
}

type Handlers struct {
	source       *dataset.Service
	sessions     *session.Manager
	notifier     *ws.Notifier
	store        store.Store
	suggestLimit int
}

func NewHandlers(source *dataset.Service, sessions *session.Manager, notifier *ws.Notifier, store store.Store, suggestLimit int) *Handlers {
	return &Handlers{
		source:       source,
		sessions:     sessions,
		notifier:     notifier,
		store:        store,
		suggestLimit: suggestLimit,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

// tables resolves the active dataset, translating the load-error taxonomy to
// HTTP statuses. A nil return means the response was already written.
func (h *Handlers) tables(w http.ResponseWriter) *dataset.Tables {
	t, err := h.source.Tables()
	if err != nil {
		switch {
		case errors.Is(err, dataset.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case errors.Is(err, dataset.ErrMalformed):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			log.Printf("Dataset load error: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load dataset"})
		}
		return nil
	}
	return t
}

// resolvePlayer maps a sanitized path segment to the canonical player name.
// No match is not an error: callers render an empty state.
func resolvePlayer(t *dataset.Tables, raw string) (string, bool) {
	name := session.SanitizeInput(raw)
	target := strings.ToLower(name)
	for _, n := range t.PlayerNames {
		if strings.ToLower(n) == target {
			return n, true
		}
	}
	return name, false
}

// selectedWeeks resolves the week scope for a request: an explicit weeks
// parameter wins (empty string meaning "none selected"), otherwise the
// session's saved selection, otherwise every available week.
func (h *Handlers) selectedWeeks(r *http.Request, sid string, plays []dataset.Play) map[int]struct{} {
	q := r.URL.Query()
	if q.Has("weeks") {
		return query.WeekSet(parseWeeks(q.Get("weeks")))
	}
	prefs := h.sessions.Prefs(sid)
	if prefs.Weeks == nil {
		return query.WeekSet(query.WeekOptions(plays))
	}
	return query.WeekSet(prefs.Weeks)
}

func parseWeeks(s string) []int {
	var weeks []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if w, err := strconv.Atoi(part); err == nil {
			weeks = append(weeks, w)
		}
	}
	return weeks
}

func weeksLabel(weeks map[int]struct{}) string {
	out := make([]int, 0, len(weeks))
	for w := range weeks {
		out = append(out, w)
	}
	sort.Ints(out)
	parts := make([]string, len(out))
	for i, w := range out {
		parts[i] = strconv.Itoa(w)
	}
	return strings.Join(parts, ",")
}

func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	t := h.tables(w)
	if t == nil {
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mode":        h.source.Mode(),
		"plays":       humanize.Comma(int64(len(t.Plays))),
		"rows":        humanize.Comma(int64(len(t.Participations))),
		"players":     humanize.Comma(int64(len(t.PlayerNames))),
		"indexRows":   humanize.Comma(int64(len(t.Index.Rows))),
		"loaded":      humanize.Time(t.LoadedAt),
		"fingerprint": h.source.Fingerprint(),
	})
}

func (h *Handlers) Weeks(w http.ResponseWriter, r *http.Request) {
	t := h.tables(w)
	if t == nil {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"weeks": query.WeekOptions(t.Plays)})
}

func (h *Handlers) Suggest(w http.ResponseWriter, r *http.Request) {
	t := h.tables(w)
	if t == nil {
		return
	}

	q := session.SanitizeInput(r.URL.Query().Get("q"))
	suggestions := query.Suggest(q, t.PlayerNames, h.suggestLimit)
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

func (h *Handlers) PlayerSummary(w http.ResponseWriter, r *http.Request) {
	t := h.tables(w)
	if t == nil {
		return
	}

	sid := h.sessions.GetOrCreate(w, r)
	player, found := resolvePlayer(t, mux.Vars(r)["name"])
	weeks := h.selectedWeeks(r, sid, t.Plays)
	scoped := query.InScope(t.Plays, weeks)

	summary := query.PassRushSnaps(scoped, t.Participations, player)

	if found {
		if err := h.store.RecordSearch(sid, player, weeksLabel(weeks), summary.Snaps); err != nil {
			log.Printf("Failed to record search for %s: %v", player, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"player":  player,
		"found":   found,
		"summary": summary,
	})
}

func (h *Handlers) CoPlayers(w http.ResponseWriter, r *http.Request) {
	t := h.tables(w)
	if t == nil {
		return
	}

	sid := h.sessions.GetOrCreate(w, r)
	player, found := resolvePlayer(t, mux.Vars(r)["name"])
	weeks := h.selectedWeeks(r, sid, t.Plays)
	scoped := query.InScope(t.Plays, weeks)

	coplayers := query.CoPlayerCounts(scoped, t.Participations, player)
	if top, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && top > 0 && top < len(coplayers) {
		coplayers = coplayers[:top]
	}
	if coplayers == nil {
		coplayers = []query.CoPlayer{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"player":    player,
		"found":     found,
		"coplayers": coplayers,
	})
}

func (h *Handlers) PlayerPlays(w http.ResponseWriter, r *http.Request) {
	t := h.tables(w)
	if t == nil {
		return
	}

	sid := h.sessions.GetOrCreate(w, r)
	player, found := resolvePlayer(t, mux.Vars(r)["name"])
	weeks := h.selectedWeeks(r, sid, t.Plays)
	scoped := query.InScope(t.Plays, weeks)

	includeTeammates := r.URL.Query().Get("teammates") == "1"
	plays := query.AnnotatePlays(
		query.PlaysInvolving(scoped, t.Participations, player),
		t.Participations, player, includeTeammates,
	)
	if plays == nil {
		plays = []query.AnnotatedPlay{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"player": player,
		"found":  found,
		"plays":  plays,
	})
}

func (h *Handlers) DownloadCoPlayers(w http.ResponseWriter, r *http.Request) {
	t := h.tables(w)
	if t == nil {
		return
	}

	sid := h.sessions.GetOrCreate(w, r)
	player, _ := resolvePlayer(t, mux.Vars(r)["name"])
	weeks := h.selectedWeeks(r, sid, t.Plays)
	scoped := query.InScope(t.Plays, weeks)

	rows := query.CoPlayerCounts(scoped, t.Participations, player)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", player+"_coplayers_wk.csv"))
	if err := query.WriteCoPlayersCSV(w, rows); err != nil {
		log.Printf("Failed to write co-players CSV: %v", err)
	}
}

func (h *Handlers) DownloadPlays(w http.ResponseWriter, r *http.Request) {
	t := h.tables(w)
	if t == nil {
		return
	}

	sid := h.sessions.GetOrCreate(w, r)
	player, _ := resolvePlayer(t, mux.Vars(r)["name"])
	weeks := h.selectedWeeks(r, sid, t.Plays)
	scoped := query.InScope(t.Plays, weeks)

	includeTeammates := r.URL.Query().Get("teammates") == "1"
	rows := query.AnnotatePlays(
		query.PlaysInvolving(scoped, t.Participations, player),
		t.Participations, player, includeTeammates,
	)

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", player+"_plays_wk.csv"))
	if err := query.WritePlaysCSV(w, rows, includeTeammates); err != nil {
		log.Printf("Failed to write plays CSV: %v", err)
	}
}

func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	h.source.Refresh()
	h.notifier.Broadcast("data_reloaded", nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Cache cleared"})
}

func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}

	plays, _, err := r.FormFile("plays")
	if err != nil {
		http.Error(w, "Missing plays file", http.StatusBadRequest)
		return
	}
	defer plays.Close()

	players, _, err := r.FormFile("players")
	if err != nil {
		http.Error(w, "Missing players file", http.StatusBadRequest)
		return
	}
	defer players.Close()

	var t *dataset.Tables
	var loadErr error
	if index, _, err := r.FormFile("index"); err == nil {
		defer index.Close()
		t, loadErr = dataset.LoadReaders(plays, players, index)
	} else {
		t, loadErr = dataset.LoadReaders(plays, players, nil)
	}
	if loadErr != nil {
		if errors.Is(loadErr, dataset.ErrMalformed) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": loadErr.Error()})
			return
		}
		log.Printf("Upload parse error: %v", loadErr)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to parse upload"})
		return
	}

	h.source.SetUpload(t)
	h.notifier.Broadcast("data_reloaded", nil)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Upload loaded",
		"plays":   len(t.Plays),
		"rows":    len(t.Participations),
	})
}

func (h *Handlers) GetPrefs(w http.ResponseWriter, r *http.Request) {
	sid := h.sessions.GetOrCreate(w, r)
	writeJSON(w, http.StatusOK, h.sessions.Prefs(sid))
}

func (h *Handlers) SetPrefs(w http.ResponseWriter, r *http.Request) {
	sid := h.sessions.GetOrCreate(w, r)

	var prefs session.Prefs
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if prefs.TopN < 5 {
		prefs.TopN = 5
	}
	if prefs.TopN > 50 {
		prefs.TopN = 50
	}

	h.sessions.SetPrefs(sid, prefs)
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	searches, err := h.store.RecentSearches(limit)
	if err != nil {
		log.Printf("History error: %v", err)
		http.Error(w, "Failed to list history", http.StatusInternalServerError)
		return
	}
	if searches == nil {
		searches = []*store.Search{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"searches": searches})
}

func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	h.notifier.HandleConnection(conn)
}
