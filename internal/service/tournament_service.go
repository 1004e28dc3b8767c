package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/tournament/internal/metrics"
	"github.com/mmynk/tournament/internal/models"
	"github.com/mmynk/tournament/internal/roundlock"
	"github.com/mmynk/tournament/internal/storage"
	"github.com/mmynk/tournament/internal/swiss"
)

// ErrEmptyName is returned when a tournament or player name is blank.
var ErrEmptyName = errors.New("name must not be empty")

// TournamentService runs the round cycle: standings, pairings, results.
type TournamentService struct {
	store    storage.Store
	locker   roundlock.Locker
	recorder *metrics.Recorder
}

// NewTournamentService creates a TournamentService.
// A nil locker falls back to an in-process lock; a nil recorder records nothing.
func NewTournamentService(store storage.Store, locker roundlock.Locker, recorder *metrics.Recorder) *TournamentService {
	if locker == nil {
		locker = roundlock.NewLocal()
	}
	return &TournamentService{store: store, locker: locker, recorder: recorder}
}

// CreateTournament creates a new tournament.
func (s *TournamentService) CreateTournament(ctx context.Context, name, information string) (*models.Tournament, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("tournament: %w", ErrEmptyName)
	}

	tournament := &models.Tournament{Name: name, Information: information}
	if err := s.store.CreateTournament(ctx, tournament); err != nil {
		slog.Error("CreateTournament failed", "name", name, "error", err)
		return nil, err
	}

	slog.Info("Tournament created", "tournament_id", tournament.ID, "name", tournament.Name)
	return tournament, nil
}

// ListTournaments returns all tournaments.
func (s *TournamentService) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	return s.store.ListTournaments(ctx)
}

// RegisterPlayer adds a player to a tournament.
func (s *TournamentService) RegisterPlayer(ctx context.Context, tournamentID int64, name string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("player: %w", ErrEmptyName)
	}

	player := &models.Player{TournamentID: tournamentID, Name: name}
	if err := s.store.RegisterPlayer(ctx, player); err != nil {
		slog.Error("RegisterPlayer failed", "tournament_id", tournamentID, "name", name, "error", err)
		return nil, err
	}

	slog.Info("Player registered", "tournament_id", tournamentID, "player_id", player.ID, "name", player.Name)
	return player, nil
}

// CountPlayers returns the number of players registered in a tournament.
func (s *TournamentService) CountPlayers(ctx context.Context, tournamentID int64) (int, error) {
	return s.store.CountPlayers(ctx, tournamentID)
}

// ListPlayers returns the players of a tournament in registration order.
func (s *TournamentService) ListPlayers(ctx context.Context, tournamentID int64) ([]*models.Player, error) {
	return s.store.ListPlayers(ctx, tournamentID)
}

// PlayerStandings returns the current standings, best record first.
// A tournament without players yields an empty result.
func (s *TournamentService) PlayerStandings(ctx context.Context, tournamentID int64) ([]models.Standing, error) {
	standings, err := s.store.Standings(ctx, tournamentID)
	if err != nil {
		slog.Error("PlayerStandings failed", "tournament_id", tournamentID, "error", err)
		return nil, err
	}
	return standings, nil
}

// ReportMatch records a result while holding the tournament's round lock.
func (s *TournamentService) ReportMatch(ctx context.Context, tournamentID, winnerID, loserID int64) (*models.Match, error) {
	release, err := s.locker.Acquire(ctx, tournamentID)
	if err != nil {
		slog.Warn("ReportMatch could not lock tournament", "tournament_id", tournamentID, "error", err)
		return nil, err
	}
	defer s.release(ctx, tournamentID, release)

	match := &models.Match{TournamentID: tournamentID, WinnerID: winnerID, LoserID: loserID}
	if err := s.store.ReportMatch(ctx, match); err != nil {
		slog.Error("ReportMatch failed",
			"tournament_id", tournamentID,
			"winner_id", winnerID,
			"loser_id", loserID,
			"error", err,
		)
		return nil, err
	}
	s.recorder.MatchReported()

	slog.Info("Match reported",
		"tournament_id", tournamentID,
		"match_id", match.ID,
		"winner_id", winnerID,
		"loser_id", loserID,
	)
	return match, nil
}

// SwissPairings computes the next round from a fresh standings snapshot.
// The round lock is held so no result can land between reading standings
// and returning pairings.
func (s *TournamentService) SwissPairings(ctx context.Context, tournamentID int64) ([]models.Pairing, error) {
	release, err := s.locker.Acquire(ctx, tournamentID)
	if err != nil {
		slog.Warn("SwissPairings could not lock tournament", "tournament_id", tournamentID, "error", err)
		s.recorder.PairingFailed("locked")
		return nil, err
	}
	defer s.release(ctx, tournamentID, release)

	standings, err := s.store.Standings(ctx, tournamentID)
	if err != nil {
		slog.Error("SwissPairings failed - could not load standings", "tournament_id", tournamentID, "error", err)
		s.recorder.PairingFailed("store")
		return nil, err
	}

	pairings, err := swiss.PairForNextRound(standings)
	if err != nil {
		slog.Warn("SwissPairings rejected", "tournament_id", tournamentID, "players", len(standings), "error", err)
		s.recorder.PairingFailed("odd_player_count")
		return nil, err
	}
	s.recorder.PairingGenerated()

	slog.Info("SwissPairings successful",
		"tournament_id", tournamentID,
		"players", len(standings),
		"pairings", len(pairings),
	)
	return pairings, nil
}

// Reset removes the selected record kinds. Deleting players also removes
// their matches; deleting tournaments removes everything.
func (s *TournamentService) Reset(ctx context.Context, matches, players, tournaments bool) error {
	if matches {
		if err := s.store.DeleteMatches(ctx); err != nil {
			return err
		}
	}
	if players {
		if err := s.store.DeletePlayers(ctx); err != nil {
			return err
		}
	}
	if tournaments {
		if err := s.store.DeleteTournaments(ctx); err != nil {
			return err
		}
	}

	slog.Info("Records reset", "matches", matches, "players", players, "tournaments", tournaments)
	return nil
}

// release returns the round lock. The guarded operation has already
// completed, so a failure here is only logged.
func (s *TournamentService) release(ctx context.Context, tournamentID int64, release roundlock.Release) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("Failed to release round lock", "tournament_id", tournamentID, "error", err)
	}
}
