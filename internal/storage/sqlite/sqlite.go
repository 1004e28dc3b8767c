// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tournament/internal/models"
	"github.com/mmynk/tournament/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Foreign keys are enabled per connection through the DSN so every pooled
	// connection enforces them.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateTournament persists a new tournament to the database.
func (s *SQLiteStore) CreateTournament(ctx context.Context, tournament *models.Tournament) error {
	if tournament.CreatedAt == 0 {
		tournament.CreatedAt = time.Now().Unix()
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO tournaments (name, information, created_at) VALUES (?, ?, ?)",
		tournament.Name, tournament.Information, tournament.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read tournament id: %w", err)
	}
	tournament.ID = id

	return nil
}

// GetTournament retrieves a tournament by ID.
func (s *SQLiteStore) GetTournament(ctx context.Context, tournamentID int64) (*models.Tournament, error) {
	tournament := &models.Tournament{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, information, created_at FROM tournaments WHERE id = ?",
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
func (s *SQLiteStore) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, information, created_at FROM tournaments ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	var tournaments []*models.Tournament
	for rows.Next() {
		tournament := &models.Tournament{}
		if err := rows.Scan(&tournament.ID, &tournament.Name, &tournament.Information, &tournament.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %w", err)
		}
		tournaments = append(tournaments, tournament)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tournaments: %w", err)
	}

	return tournaments, nil
}

// DeleteTournaments removes every tournament. Players and matches go with them.
func (s *SQLiteStore) DeleteTournaments(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tournaments"); err != nil {
		return fmt.Errorf("failed to delete tournaments: %w", err)
	}
	return nil
}
