package sqlite

import "database/sql"

// schema sets up tables and the standings views.
// These run on startup to ensure tables exist.
// Tournaments must be created BEFORE players, and players BEFORE matches, due to foreign keys.
const schema = `
CREATE TABLE IF NOT EXISTS tournaments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    information TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS players (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    tournament_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS matches (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    tournament_id INTEGER NOT NULL,
    winner_id INTEGER NOT NULL,
    loser_id INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    CHECK (winner_id <> loser_id),
    FOREIGN KEY (tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE,
    FOREIGN KEY (winner_id) REFERENCES players(id) ON DELETE CASCADE,
    FOREIGN KEY (loser_id) REFERENCES players(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_players_tournament_id ON players(tournament_id);
CREATE INDEX IF NOT EXISTS idx_matches_winner_id ON matches(winner_id);
CREATE INDEX IF NOT EXISTS idx_matches_loser_id ON matches(loser_id);

CREATE VIEW IF NOT EXISTS played_matches AS
    SELECT p.id, p.tournament_id, p.name, COUNT(m.id) AS total_count
    FROM players p
    LEFT JOIN matches m ON m.winner_id = p.id OR m.loser_id = p.id
    GROUP BY p.id, p.tournament_id, p.name;

CREATE VIEW IF NOT EXISTS won_matches AS
    SELECT p.id, COUNT(m.id) AS win_count
    FROM players p
    LEFT JOIN matches m ON m.winner_id = p.id
    GROUP BY p.id;
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
