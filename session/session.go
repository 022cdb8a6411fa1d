package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const cookieName = "session_id"

// Prefs is the per-browser UI state the server keeps between interactions.
// A nil week selection means "every available week" (the UI default);
// an empty non-nil selection means the user deselected everything.
type Prefs struct {
	Weeks     []int `json:"weeks"`
	TopN      int   `json:"topN"`
	Teammates bool  `json:"teammates"`
}

func DefaultPrefs() Prefs {
	return Prefs{TopN: 20}
}

type session struct {
	prefs     Prefs
	expiresAt time.Time
}

type Manager struct {
	sessions map[string]*session
	mu       sync.RWMutex
}

func NewManager() *Manager {
	m := &Manager{
		sessions: make(map[string]*session),
	}

	go m.cleanupExpired()

	return m
}

// GetOrCreate resolves the request's session, minting a new one (and setting
// the cookie) when the request carries none or an expired one.
func (m *Manager) GetOrCreate(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(cookieName); err == nil {
		m.mu.RLock()
		s, ok := m.sessions[cookie.Value]
		m.mu.RUnlock()
		if ok && time.Now().Before(s.expiresAt) {
			return cookie.Value
		}
	}

	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = &session{
		prefs:     DefaultPrefs(),
		expiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
	m.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (m *Manager) Prefs(id string) Prefs {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if s, ok := m.sessions[id]; ok {
		return s.prefs
	}
	return DefaultPrefs()
}

func (m *Manager) SetPrefs(id string, p Prefs) {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		s.prefs = p
	}
	m.mu.Unlock()
}

func (m *Manager) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		now := time.Now()
		for id, s := range m.sessions {
			if now.After(s.expiresAt) {
				delete(m.sessions, id)
			}
		}
		m.mu.Unlock()
	}
}
