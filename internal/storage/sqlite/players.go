package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/tournament/internal/models"
	"github.com/mmynk/tournament/internal/storage"
)

// RegisterPlayer inserts a new player into a tournament.
func (s *SQLiteStore) RegisterPlayer(ctx context.Context, player *models.Player) error {
	if player.CreatedAt == 0 {
		player.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tournamentExists(ctx, tx, player.TournamentID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx,
		"INSERT INTO players (tournament_id, name, created_at) VALUES (?, ?, ?)",
		player.TournamentID, player.Name, player.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read player id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	player.ID = id

	return nil
}

// CountPlayers returns the number of players registered in a tournament.
func (s *SQLiteStore) CountPlayers(ctx context.Context, tournamentID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM players WHERE tournament_id = ?",
		tournamentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return count, nil
}

// ListPlayers retrieves the players of a tournament in registration order.
func (s *SQLiteStore) ListPlayers(ctx context.Context, tournamentID int64) ([]*models.Player, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, tournament_id, name, created_at FROM players WHERE tournament_id = ? ORDER BY id",
		tournamentID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		player := &models.Player{}
		if err := rows.Scan(&player.ID, &player.TournamentID, &player.Name, &player.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}

	return players, nil
}

// DeletePlayers removes every player. Their matches are removed by cascade.
func (s *SQLiteStore) DeletePlayers(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM players"); err != nil {
		return fmt.Errorf("failed to delete players: %w", err)
	}
	return nil
}

func tournamentExists(ctx context.Context, tx *sql.Tx, tournamentID int64) error {
	var exists int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM tournaments WHERE id = ?", tournamentID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("tournament %d: %w", tournamentID, storage.ErrTournamentNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check tournament existence: %w", err)
	}
	return nil
}
