package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"coplayers/dataset"
	"coplayers/session"
	"coplayers/store"
	"coplayers/ws"
)

type Server struct {
	router   *mux.Router
	handlers *Handlers
}

func NewServer(source *dataset.Service, sessions *session.Manager, notifier *ws.Notifier, store store.Store, suggestLimit int) *Server {
	router := mux.NewRouter()
	handlers := NewHandlers(source, sessions, notifier, store, suggestLimit)

	server := &Server{
		router:   router,
		handlers: handlers,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	// Apply global middleware
	s.router.Use(LoggingMiddleware)
	s.router.Use(SecurityHeadersMiddleware)
	s.router.Use(CORSMiddleware)

	// CSRF note: SameSite=Lax on the session cookie prevents cross-site POST
	// requests from including the cookie, providing CSRF protection for all
	// state-changing endpoints without needing a token-based scheme.

	suggestLimiter := newSuggestLimiter()
	refreshLimiter := newRefreshLimiter()

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", s.handlers.Status).Methods("GET")
	api.HandleFunc("/weeks", s.handlers.Weeks).Methods("GET")
	api.Handle("/suggest", suggestLimiter.Middleware(http.HandlerFunc(s.handlers.Suggest))).Methods("GET")
	api.HandleFunc("/player/{name}/summary", s.handlers.PlayerSummary).Methods("GET")
	api.HandleFunc("/player/{name}/coplayers", s.handlers.CoPlayers).Methods("GET")
	api.HandleFunc("/player/{name}/plays", s.handlers.PlayerPlays).Methods("GET")
	api.Handle("/refresh", refreshLimiter.Middleware(http.HandlerFunc(s.handlers.Refresh))).Methods("POST")
	api.HandleFunc("/upload", s.handlers.Upload).Methods("POST")
	api.HandleFunc("/prefs", s.handlers.GetPrefs).Methods("GET")
	api.HandleFunc("/prefs", s.handlers.SetPrefs).Methods("POST")
	api.HandleFunc("/history", s.handlers.History).Methods("GET")

	// CSV downloads
	s.router.HandleFunc("/download/{name}/coplayers.csv", s.handlers.DownloadCoPlayers).Methods("GET")
	s.router.HandleFunc("/download/{name}/plays.csv", s.handlers.DownloadPlays).Methods("GET")

	// WebSocket reload notifications
	s.router.HandleFunc("/ws/updates", s.handlers.HandleWebSocket)

	// Catch-all for unmatched API routes — return JSON 404 instead of SPA HTML
	s.router.PathPrefix("/api/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	// Static files with cache-control (no-cache forces revalidation via If-Modified-Since)
	s.router.PathPrefix("/css/").Handler(noCacheHandler(http.StripPrefix("/css/", http.FileServer(http.Dir("./static/css")))))
	s.router.PathPrefix("/js/").Handler(noCacheHandler(http.StripPrefix("/js/", http.FileServer(http.Dir("./static/js")))))

	// SPA fallback - serve index.html for all other routes
	s.router.PathPrefix("/").HandlerFunc(s.serveSPA)
}

func noCacheHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		h.ServeHTTP(w, r)
	})
}

func (s *Server) serveSPA(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, "./static/index.html")
}

func (s *Server) GetHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
