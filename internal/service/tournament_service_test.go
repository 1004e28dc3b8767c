package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/tournament/internal/metrics"
	"github.com/mmynk/tournament/internal/models"
	"github.com/mmynk/tournament/internal/roundlock"
	"github.com/mmynk/tournament/internal/storage"
	"github.com/mmynk/tournament/internal/storage/sqlite"
	"github.com/mmynk/tournament/internal/swiss"
)

// setupTestService creates a service backed by a temporary SQLite database.
func setupTestService(t *testing.T) (*TournamentService, *prometheus.Registry) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpFile.Name())
	})

	reg := prometheus.NewRegistry()
	return NewTournamentService(store, nil, metrics.New(reg)), reg
}

func registerAll(t *testing.T, svc *TournamentService, tournamentID int64, names ...string) map[string]int64 {
	t.Helper()

	ids := make(map[string]int64, len(names))
	for _, name := range names {
		p, err := svc.RegisterPlayer(context.Background(), tournamentID, name)
		if err != nil {
			t.Fatalf("RegisterPlayer(%s) failed: %v", name, err)
		}
		ids[name] = p.ID
	}
	return ids
}

func TestSwissRoundCycle(t *testing.T) {
	svc, reg := setupTestService(t)
	ctx := context.Background()

	tournament, err := svc.CreateTournament(ctx, "WT 2015", "")
	if err != nil {
		t.Fatalf("CreateTournament failed: %v", err)
	}
	ids := registerAll(t, svc, tournament.ID, "A", "B", "C", "D")

	standings, err := svc.PlayerStandings(ctx, tournament.ID)
	if err != nil {
		t.Fatalf("PlayerStandings failed: %v", err)
	}
	gotOrder := make([]string, len(standings))
	for i, s := range standings {
		gotOrder[i] = s.PlayerName
	}
	if diff := cmp.Diff([]string{"A", "B", "C", "D"}, gotOrder); diff != "" {
		t.Errorf("initial standings order mismatch (-want +got):\n%s", diff)
	}

	pairings, err := svc.SwissPairings(ctx, tournament.ID)
	if err != nil {
		t.Fatalf("SwissPairings failed: %v", err)
	}
	want := []models.Pairing{
		{PlayerOneID: ids["A"], PlayerOneName: "A", PlayerTwoID: ids["B"], PlayerTwoName: "B"},
		{PlayerOneID: ids["C"], PlayerOneName: "C", PlayerTwoID: ids["D"], PlayerTwoName: "D"},
	}
	if diff := cmp.Diff(want, pairings); diff != "" {
		t.Errorf("round 1 pairings mismatch (-want +got):\n%s", diff)
	}

	if _, err := svc.ReportMatch(ctx, tournament.ID, ids["A"], ids["B"]); err != nil {
		t.Fatalf("ReportMatch failed: %v", err)
	}
	if _, err := svc.ReportMatch(ctx, tournament.ID, ids["C"], ids["D"]); err != nil {
		t.Fatalf("ReportMatch failed: %v", err)
	}

	standings, err = svc.PlayerStandings(ctx, tournament.ID)
	if err != nil {
		t.Fatalf("PlayerStandings failed: %v", err)
	}
	wantStandings := []models.Standing{
		{PlayerID: ids["A"], PlayerName: "A", Wins: 1, MatchesPlayed: 1},
		{PlayerID: ids["C"], PlayerName: "C", Wins: 1, MatchesPlayed: 1},
		{PlayerID: ids["B"], PlayerName: "B", Wins: 0, MatchesPlayed: 1},
		{PlayerID: ids["D"], PlayerName: "D", Wins: 0, MatchesPlayed: 1},
	}
	if diff := cmp.Diff(wantStandings, standings); diff != "" {
		t.Errorf("round 2 standings mismatch (-want +got):\n%s", diff)
	}

	pairings, err = svc.SwissPairings(ctx, tournament.ID)
	if err != nil {
		t.Fatalf("SwissPairings failed: %v", err)
	}
	want = []models.Pairing{
		{PlayerOneID: ids["A"], PlayerOneName: "A", PlayerTwoID: ids["C"], PlayerTwoName: "C"},
		{PlayerOneID: ids["B"], PlayerOneName: "B", PlayerTwoID: ids["D"], PlayerTwoName: "D"},
	}
	if diff := cmp.Diff(want, pairings); diff != "" {
		t.Errorf("round 2 pairings mismatch (-want +got):\n%s", diff)
	}

	if got, _ := testutil.GatherAndCount(reg, "tournament_pairings_generated_total"); got != 1 {
		t.Errorf("expected pairings counter series, got %d", got)
	}
}

func TestSwissPairings_OddPlayerCount(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	tournament, err := svc.CreateTournament(ctx, "Odd", "")
	if err != nil {
		t.Fatalf("CreateTournament failed: %v", err)
	}
	registerAll(t, svc, tournament.ID, "A", "B", "C")

	pairings, err := svc.SwissPairings(ctx, tournament.ID)
	if !errors.Is(err, swiss.ErrOddPlayerCount) {
		t.Fatalf("expected ErrOddPlayerCount, got %v", err)
	}
	if pairings != nil {
		t.Errorf("expected no pairings, got %v", pairings)
	}

	// The lock must be released after a failed pairing.
	registerAll(t, svc, tournament.ID, "D")
	if _, err := svc.SwissPairings(ctx, tournament.ID); err != nil {
		t.Errorf("SwissPairings after fixing parity failed: %v", err)
	}
}

func TestPlayerStandings_UnknownTournament(t *testing.T) {
	svc, _ := setupTestService(t)

	standings, err := svc.PlayerStandings(context.Background(), 404)
	if err != nil {
		t.Fatalf("PlayerStandings failed: %v", err)
	}
	if len(standings) != 0 {
		t.Errorf("expected empty standings, got %d", len(standings))
	}

	pairings, err := svc.SwissPairings(context.Background(), 404)
	if err != nil {
		t.Fatalf("SwissPairings failed: %v", err)
	}
	if len(pairings) != 0 {
		t.Errorf("expected no pairings, got %d", len(pairings))
	}
}

func TestValidation(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateTournament(ctx, "   ", ""); !errors.Is(err, ErrEmptyName) {
		t.Errorf("CreateTournament blank name: expected ErrEmptyName, got %v", err)
	}

	tournament, err := svc.CreateTournament(ctx, "Named", "")
	if err != nil {
		t.Fatalf("CreateTournament failed: %v", err)
	}
	if _, err := svc.RegisterPlayer(ctx, tournament.ID, ""); !errors.Is(err, ErrEmptyName) {
		t.Errorf("RegisterPlayer blank name: expected ErrEmptyName, got %v", err)
	}
	if _, err := svc.RegisterPlayer(ctx, tournament.ID+1, "Lost"); !errors.Is(err, storage.ErrTournamentNotFound) {
		t.Errorf("RegisterPlayer unknown tournament: expected ErrTournamentNotFound, got %v", err)
	}

	ids := registerAll(t, svc, tournament.ID, "A")
	if _, err := svc.ReportMatch(ctx, tournament.ID, ids["A"], ids["A"]); !errors.Is(err, storage.ErrInvalidMatch) {
		t.Errorf("ReportMatch self match: expected ErrInvalidMatch, got %v", err)
	}
}

func TestRoundLockBlocksPairing(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := sqlite.New(tmpDir + "/locked.db")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	locker := roundlock.NewLocal()
	svc := NewTournamentService(store, locker, nil)
	ctx := context.Background()

	tournament, err := svc.CreateTournament(ctx, "Locked", "")
	if err != nil {
		t.Fatalf("CreateTournament failed: %v", err)
	}
	ids := registerAll(t, svc, tournament.ID, "A", "B")

	// Simulate result recording in progress elsewhere.
	release, err := locker.Acquire(ctx, tournament.ID)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if _, err := svc.SwissPairings(ctx, tournament.ID); !errors.Is(err, roundlock.ErrLocked) {
		t.Errorf("SwissPairings: expected ErrLocked, got %v", err)
	}
	if _, err := svc.ReportMatch(ctx, tournament.ID, ids["A"], ids["B"]); !errors.Is(err, roundlock.ErrLocked) {
		t.Errorf("ReportMatch: expected ErrLocked, got %v", err)
	}

	if err := release(ctx); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if _, err := svc.SwissPairings(ctx, tournament.ID); err != nil {
		t.Errorf("SwissPairings after release failed: %v", err)
	}
}

// unavailableStore fails every standings query.
type unavailableStore struct {
	storage.Store
	err error
}

func (s unavailableStore) Standings(context.Context, int64) ([]models.Standing, error) {
	return nil, s.err
}

func TestStoreErrorsPropagate(t *testing.T) {
	storeErr := errors.New("connection refused")
	svc := NewTournamentService(unavailableStore{err: storeErr}, nil, nil)
	ctx := context.Background()

	if _, err := svc.PlayerStandings(ctx, 1); !errors.Is(err, storeErr) {
		t.Errorf("PlayerStandings: expected store error, got %v", err)
	}
	if _, err := svc.SwissPairings(ctx, 1); !errors.Is(err, storeErr) {
		t.Errorf("SwissPairings: expected store error, got %v", err)
	}
}

func TestReset(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	tournament, err := svc.CreateTournament(ctx, "Reset", "")
	if err != nil {
		t.Fatalf("CreateTournament failed: %v", err)
	}
	ids := registerAll(t, svc, tournament.ID, "A", "B")
	if _, err := svc.ReportMatch(ctx, tournament.ID, ids["A"], ids["B"]); err != nil {
		t.Fatalf("ReportMatch failed: %v", err)
	}

	if err := svc.Reset(ctx, true, false, false); err != nil {
		t.Fatalf("Reset matches failed: %v", err)
	}
	standings, err := svc.PlayerStandings(ctx, tournament.ID)
	if err != nil {
		t.Fatalf("PlayerStandings failed: %v", err)
	}
	for _, s := range standings {
		if s.MatchesPlayed != 0 {
			t.Errorf("%s still has %d matches", s.PlayerName, s.MatchesPlayed)
		}
	}

	if err := svc.Reset(ctx, false, true, true); err != nil {
		t.Fatalf("Reset players and tournaments failed: %v", err)
	}
	count, err := svc.CountPlayers(ctx, tournament.ID)
	if err != nil {
		t.Fatalf("CountPlayers failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 players, got %d", count)
	}
	tournaments, err := svc.ListTournaments(ctx)
	if err != nil {
		t.Fatalf("ListTournaments failed: %v", err)
	}
	if len(tournaments) != 0 {
		t.Errorf("expected no tournaments, got %d", len(tournaments))
	}
}
