package store

const schema = `
CREATE TABLE IF NOT EXISTS searches (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    player TEXT NOT NULL,
    weeks TEXT NOT NULL DEFAULT '',
    snaps INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_searches_player ON searches(player);
CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at);
`
