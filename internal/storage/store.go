// Package storage provides abstractions for persistent tournament data.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tournament/internal/models"
)

var (
	// ErrTournamentNotFound is returned when an operation names a tournament that does not exist.
	ErrTournamentNotFound = errors.New("tournament not found")

	// ErrPlayerNotInTournament is returned when a match references a player
	// who is not registered in the match's tournament.
	ErrPlayerNotInTournament = errors.New("player not registered in tournament")

	// ErrInvalidMatch is returned for a match whose winner and loser are the same player.
	ErrInvalidMatch = errors.New("winner and loser must be different players")
)

// Store defines the persistence contract of the tournament engine.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	// CreateTournament persists a new tournament.
	// The tournament.ID and CreatedAt fields will be populated by the store.
	CreateTournament(ctx context.Context, tournament *models.Tournament) error

	// GetTournament retrieves a tournament by ID.
	// Returns ErrTournamentNotFound if it does not exist.
	GetTournament(ctx context.Context, tournamentID int64) (*models.Tournament, error)

	// ListTournaments returns all tournaments, oldest first.
	ListTournaments(ctx context.Context) ([]*models.Tournament, error)

	// RegisterPlayer adds a player to a tournament.
	// The player.ID and CreatedAt fields will be populated by the store.
	RegisterPlayer(ctx context.Context, player *models.Player) error

	// CountPlayers returns the number of players registered in a tournament.
	CountPlayers(ctx context.Context, tournamentID int64) (int, error)

	// ListPlayers returns the players of a tournament in registration order.
	ListPlayers(ctx context.Context, tournamentID int64) ([]*models.Player, error)

	// ReportMatch records the outcome of a single match.
	ReportMatch(ctx context.Context, match *models.Match) error

	// Standings returns one entry per registered player, ordered by wins
	// descending and then by player ID. Players without matches are included
	// with zero wins and zero matches. An unknown tournament yields an empty
	// slice, not an error.
	Standings(ctx context.Context, tournamentID int64) ([]models.Standing, error)

	// DeleteMatches removes all match records.
	DeleteMatches(ctx context.Context) error

	// DeletePlayers removes all player records.
	DeletePlayers(ctx context.Context) error

	// DeleteTournaments removes all tournament records.
	DeleteTournaments(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
