package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort   string
	DataDir      string
	HistoryDB    string
	ReloadPoll   time.Duration
	SuggestLimit int
}

func Load() *Config {
	return &Config{
		ServerPort:   envString("ADDR", ":8080"),
		DataDir:      envString("DATA_DIR", "./data"),
		HistoryDB:    envString("HISTORY_DB", "./coplayers.db"),
		ReloadPoll:   envDuration("RELOAD_POLL", 5*time.Second),
		SuggestLimit: envInt("SUGGEST_LIMIT", 12),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
