package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/tournament/internal/metrics"
	"github.com/mmynk/tournament/internal/models"
	"github.com/mmynk/tournament/internal/storage"
)

// Ensure InstrumentedStore implements storage.Store
var _ storage.Store = (*InstrumentedStore)(nil)

// InstrumentedStore wraps a storage.Store and logs every call.
// It logs the operation name, duration, and any error, and feeds the
// duration to the metrics recorder.
type InstrumentedStore struct {
	next     storage.Store
	recorder *metrics.Recorder
}

// InstrumentStore returns store wrapped with logging and timing.
func InstrumentStore(store storage.Store, recorder *metrics.Recorder) *InstrumentedStore {
	return &InstrumentedStore{next: store, recorder: recorder}
}

// observe logs the outcome of one store call and returns err unchanged.
func (s *InstrumentedStore) observe(ctx context.Context, operation string, start time.Time, err error, attrs ...any) error {
	duration := time.Since(start)
	s.recorder.ObserveStore(operation, duration)

	attrs = append(attrs, "operation", operation, "duration_ms", duration.Milliseconds())
	if err != nil {
		slog.ErrorContext(ctx, "Store error", append(attrs, "error", err)...)
		return err
	}
	slog.DebugContext(ctx, "Store ok", attrs...)
	return nil
}

func (s *InstrumentedStore) CreateTournament(ctx context.Context, tournament *models.Tournament) error {
	start := time.Now()
	err := s.next.CreateTournament(ctx, tournament)
	return s.observe(ctx, "create_tournament", start, err, "name", tournament.Name)
}

func (s *InstrumentedStore) GetTournament(ctx context.Context, tournamentID int64) (*models.Tournament, error) {
	start := time.Now()
	tournament, err := s.next.GetTournament(ctx, tournamentID)
	return tournament, s.observe(ctx, "get_tournament", start, err, "tournament_id", tournamentID)
}

func (s *InstrumentedStore) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	start := time.Now()
	tournaments, err := s.next.ListTournaments(ctx)
	return tournaments, s.observe(ctx, "list_tournaments", start, err, "count", len(tournaments))
}

func (s *InstrumentedStore) RegisterPlayer(ctx context.Context, player *models.Player) error {
	start := time.Now()
	err := s.next.RegisterPlayer(ctx, player)
	return s.observe(ctx, "register_player", start, err, "tournament_id", player.TournamentID, "player_id", player.ID)
}

func (s *InstrumentedStore) CountPlayers(ctx context.Context, tournamentID int64) (int, error) {
	start := time.Now()
	count, err := s.next.CountPlayers(ctx, tournamentID)
	return count, s.observe(ctx, "count_players", start, err, "tournament_id", tournamentID, "count", count)
}

func (s *InstrumentedStore) ListPlayers(ctx context.Context, tournamentID int64) ([]*models.Player, error) {
	start := time.Now()
	players, err := s.next.ListPlayers(ctx, tournamentID)
	return players, s.observe(ctx, "list_players", start, err, "tournament_id", tournamentID, "count", len(players))
}

func (s *InstrumentedStore) ReportMatch(ctx context.Context, match *models.Match) error {
	start := time.Now()
	err := s.next.ReportMatch(ctx, match)
	return s.observe(ctx, "report_match", start, err,
		"tournament_id", match.TournamentID,
		"winner_id", match.WinnerID,
		"loser_id", match.LoserID,
	)
}

func (s *InstrumentedStore) Standings(ctx context.Context, tournamentID int64) ([]models.Standing, error) {
	start := time.Now()
	standings, err := s.next.Standings(ctx, tournamentID)
	return standings, s.observe(ctx, "standings", start, err, "tournament_id", tournamentID, "count", len(standings))
}

func (s *InstrumentedStore) DeleteMatches(ctx context.Context) error {
	start := time.Now()
	return s.observe(ctx, "delete_matches", start, s.next.DeleteMatches(ctx))
}

func (s *InstrumentedStore) DeletePlayers(ctx context.Context) error {
	start := time.Now()
	return s.observe(ctx, "delete_players", start, s.next.DeletePlayers(ctx))
}

func (s *InstrumentedStore) DeleteTournaments(ctx context.Context) error {
	start := time.Now()
	return s.observe(ctx, "delete_tournaments", start, s.next.DeleteTournaments(ctx))
}

func (s *InstrumentedStore) Close() error {
	return s.next.Close()
}
