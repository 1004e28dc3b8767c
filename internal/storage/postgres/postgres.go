// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mmynk/tournament/internal/models"
	"github.com/mmynk/tournament/internal/storage"
)

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

// foreignKeyViolation is the SQLSTATE raised when a referenced row is missing.
const foreignKeyViolation = "23503"

// PostgresStore implements storage.Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// New connects to dsn, verifies the connection within timeout and runs migrations.
func New(dsn string, timeout time.Duration) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// CreateTournament persists a new tournament.
func (s *PostgresStore) CreateTournament(ctx context.Context, tournament *models.Tournament) error {
	if tournament.CreatedAt == 0 {
		tournament.CreatedAt = time.Now().Unix()
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO tournaments (name, information, created_at) VALUES ($1, $2, $3) RETURNING id`,
		tournament.Name, tournament.Information, tournament.CreatedAt,
	).Scan(&tournament.ID)
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	return nil
}

// GetTournament retrieves a tournament by ID.
func (s *PostgresStore) GetTournament(ctx context.Context, tournamentID int64) (*models.Tournament, error) {
	tournament := &models.Tournament{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, information, created_at FROM tournaments WHERE id = $1`,
		tournamentID,
	).Scan(&tournament.ID, &tournament.Name, &tournament.Information, &tournament.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tournament %d: %w", tournamentID, storage.ErrTournamentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	return tournament, nil
}

// ListTournaments retrieves all tournaments, oldest first.
func (s *PostgresStore) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, information, created_at FROM tournaments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		t := &models.Tournament{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Information, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tournaments: %w", err)
	}
	return tournaments, nil
}

// RegisterPlayer inserts a player. A missing tournament surfaces as a
// foreign key violation, which is mapped to storage.ErrTournamentNotFound.
func (s *PostgresStore) RegisterPlayer(ctx context.Context, player *models.Player) error {
	if player.CreatedAt == 0 {
		player.CreatedAt = time.Now().Unix()
	}

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO players (tournament_id, name, created_at) VALUES ($1, $2, $3) RETURNING id`,
		player.TournamentID, player.Name, player.CreatedAt,
	).Scan(&player.ID)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("tournament %d: %w", player.TournamentID, storage.ErrTournamentNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

// CountPlayers returns the number of players registered in a tournament.
func (s *PostgresStore) CountPlayers(ctx context.Context, tournamentID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM players WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

// ListPlayers retrieves the players of a tournament in registration order.
func (s *PostgresStore) ListPlayers(ctx context.Context, tournamentID int64) ([]*models.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tournament_id, name, created_at FROM players WHERE tournament_id = $1 ORDER BY id`,
		tournamentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p := &models.Player{}
		if err := rows.Scan(&p.ID, &p.TournamentID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}
	return players, nil
}

// ReportMatch records the outcome of a single match.
func (s *PostgresStore) ReportMatch(ctx context.Context, match *models.Match) error {
	if match.WinnerID == match.LoserID {
		return storage.ErrInvalidMatch
	}
	if match.CreatedAt == 0 {
		match.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM tournaments WHERE id = $1`, match.TournamentID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("tournament %d: %w", match.TournamentID, storage.ErrTournamentNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check tournament existence: %w", err)
	}

	var registered int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM players WHERE tournament_id = $1 AND id = ANY($2)`,
		match.TournamentID, pq.Array([]int64{match.WinnerID, match.LoserID}),
	).Scan(&registered)
	if err != nil {
		return fmt.Errorf("failed to check players: %w", err)
	}
	if registered != 2 {
		return fmt.Errorf("match %d vs %d in tournament %d: %w",
			match.WinnerID, match.LoserID, match.TournamentID, storage.ErrPlayerNotInTournament)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO matches (tournament_id, winner_id, loser_id, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		match.TournamentID, match.WinnerID, match.LoserID, match.CreatedAt,
	).Scan(&match.ID)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Standings joins the played and won views into one row per player.
func (s *PostgresStore) Standings(ctx context.Context, tournamentID int64) ([]models.Standing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT played_matches.id, played_matches.name,
		       won_matches.win_count, played_matches.total_count
		FROM played_matches
		JOIN won_matches ON won_matches.id = played_matches.id
		WHERE played_matches.tournament_id = $1
		ORDER BY won_matches.win_count DESC, played_matches.id ASC`,
		tournamentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}
	defer rows.Close()

	standings := make([]models.Standing, 0)
	for rows.Next() {
		var st models.Standing
		if err := rows.Scan(&st.PlayerID, &st.PlayerName, &st.Wins, &st.MatchesPlayed); err != nil {
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}
		standings = append(standings, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate standings: %w", err)
	}
	return standings, nil
}

// DeleteMatches removes every match record.
func (s *PostgresStore) DeleteMatches(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM matches`); err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	return nil
}

// DeletePlayers removes every player and, by cascade, their matches.
func (s *PostgresStore) DeletePlayers(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM players`); err != nil {
		return fmt.Errorf("failed to delete players: %w", err)
	}
	return nil
}

// DeleteTournaments removes every tournament and everything under it.
func (s *PostgresStore) DeleteTournaments(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tournaments`); err != nil {
		return fmt.Errorf("failed to delete tournaments: %w", err)
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation
}
