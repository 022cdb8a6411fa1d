package main

import (
	"context"
	"coplayers/config"
	"coplayers/dataset"
	httpserver "coplayers/http"
	"coplayers/session"
	"coplayers/store"
	"coplayers/ws"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	log.Println("Starting co-players explorer...")

	// Load configuration
	cfg := config.Load()
	log.Printf("Configuration loaded - Server port: %s, Data dir: %s", cfg.ServerPort, cfg.DataDir)

	// Initialize history database
	db, err := store.NewSQLiteStore(cfg.HistoryDB)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize services
	source := dataset.NewService(cfg.DataDir)
	sessions := session.NewManager()
	notifier := ws.NewNotifier(source, cfg.ReloadPoll)

	// Initial load; a failure here is not fatal, handlers surface it per request
	if t, err := source.Tables(); err != nil {
		log.Printf("Warning: initial data load failed: %v", err)
	} else {
		log.Printf("Loaded %d plays, %d participation rows, %d players", len(t.Plays), len(t.Participations), len(t.PlayerNames))
	}

	// Initialize HTTP server
	server := httpserver.NewServer(source, sessions, notifier, db, cfg.SuggestLimit)
	srv := server.GetHTTPServer(cfg.ServerPort)

	// Watch the source files for changes
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go notifier.Run(watchCtx)

	// Start server in a goroutine
	go func() {
		log.Printf("Server listening on http://localhost%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")
	stopWatch()

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
