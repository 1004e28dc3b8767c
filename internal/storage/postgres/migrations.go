package postgres

import (
	"context"
	"database/sql"
)

// schema mirrors the SQLite layout with PostgreSQL types.
// Views are replaced on every start so column changes take effect.
const schema = `
CREATE TABLE IF NOT EXISTS tournaments (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    information TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS players (
    id BIGSERIAL PRIMARY KEY,
    tournament_id BIGINT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS matches (
    id BIGSERIAL PRIMARY KEY,
    tournament_id BIGINT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
    winner_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
    loser_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
    created_at BIGINT NOT NULL,
    CHECK (winner_id <> loser_id)
);

CREATE INDEX IF NOT EXISTS idx_players_tournament_id ON players(tournament_id);
CREATE INDEX IF NOT EXISTS idx_matches_winner_id ON matches(winner_id);
CREATE INDEX IF NOT EXISTS idx_matches_loser_id ON matches(loser_id);

CREATE OR REPLACE VIEW played_matches AS
    SELECT p.id, p.tournament_id, p.name, COUNT(m.id) AS total_count
    FROM players p
    LEFT JOIN matches m ON m.winner_id = p.id OR m.loser_id = p.id
    GROUP BY p.id, p.tournament_id, p.name;

CREATE OR REPLACE VIEW won_matches AS
    SELECT p.id, COUNT(m.id) AS win_count
    FROM players p
    LEFT JOIN matches m ON m.winner_id = p.id
    GROUP BY p.id;
`

func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
