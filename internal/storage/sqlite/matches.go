package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/tournament/internal/models"
	"github.com/mmynk/tournament/internal/storage"
)

// ReportMatch records the outcome of a single match.
// Both players must be registered in the match's tournament.
func (s *SQLiteStore) ReportMatch(ctx context.Context, match *models.Match) error {
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

	if err := tournamentExists(ctx, tx, match.TournamentID); err != nil {
		return err
	}

	var registered int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM players WHERE tournament_id = ? AND id IN (?, ?)",
		match.TournamentID, match.WinnerID, match.LoserID,
	).Scan(&registered)
	if err != nil {
		return fmt.Errorf("failed to check players: %w", err)
	}
	if registered != 2 {
		return fmt.Errorf("match %d vs %d in tournament %d: %w",
			match.WinnerID, match.LoserID, match.TournamentID, storage.ErrPlayerNotInTournament)
	}

	result, err := tx.ExecContext(ctx,
		"INSERT INTO matches (tournament_id, winner_id, loser_id, created_at) VALUES (?, ?, ?, ?)",
		match.TournamentID, match.WinnerID, match.LoserID, match.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read match id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	match.ID = id

	return nil
}

// Standings joins the played and won views into one row per player.
func (s *SQLiteStore) Standings(ctx context.Context, tournamentID int64) ([]models.Standing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT played_matches.id, played_matches.name,
		       won_matches.win_count, played_matches.total_count
		FROM played_matches
		JOIN won_matches ON won_matches.id = played_matches.id
		WHERE played_matches.tournament_id = ?
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
func (s *SQLiteStore) DeleteMatches(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM matches"); err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	return nil
}
