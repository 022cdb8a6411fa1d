package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type Store interface {
	RecordSearch(sessionID, player, weeks string, snaps int) error
	RecentSearches(limit int) ([]*Search, error)
	Close() error
}

// Search is one resolved player lookup.
type Search struct {
	ID        int64  `json:"id"`
	SessionID string `json:"-"`
	Player    string `json:"player"`
	Weeks     string `json:"weeks"`
	Snaps     int    `json:"snaps"`
	CreatedAt string `json:"createdAt"`
}

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RecordSearch(sessionID, player, weeks string, snaps int) error {
	_, err := s.db.Exec(
		"INSERT INTO searches (session_id, player, weeks, snaps) VALUES (?, ?, ?, ?)",
		sessionID, player, weeks, snaps,
	)
	if err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentSearches(limit int) ([]*Search, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		"SELECT id, session_id, player, weeks, snaps, created_at FROM searches ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	var searches []*Search
	for rows.Next() {
		search := &Search{}
		if err := rows.Scan(&search.ID, &search.SessionID, &search.Player, &search.Weeks, &search.Snaps, &search.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		searches = append(searches, search)
	}
	return searches, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
