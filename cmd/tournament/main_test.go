package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mmynk/tournament/internal/swiss"
)

// run executes one CLI invocation against the database in DB_PATH.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"tournament"}, args...))
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()

	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("tournament %s: %v", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(out)
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("PUSHGATEWAY_URL", "")
	t.Setenv("LOCK_TTL", "")
	t.Setenv("DB_CONN_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("TOURNAMENT_CONFIG", "")
}

func TestCLIRoundCycle(t *testing.T) {
	setupEnv(t)

	tid := mustRun(t, "tournament", "create", "--name", "WT 2015", "--info", "Wombat tossing")
	if tid != "1" {
		t.Fatalf("tournament id = %q, want 1", tid)
	}

	ids := map[string]string{}
	for _, name := range []string{"Twilight", "Fluttershy", "Applejack", "Pinkie"} {
		ids[name] = mustRun(t, "player", "register", "-t", tid, "--name", name)
	}
	if got := mustRun(t, "player", "count", "-t", tid); got != "4" {
		t.Errorf("player count = %q, want 4", got)
	}

	pairings := mustRun(t, "pairings", "-t", tid)
	if !strings.Contains(pairings, "1 Twilight") || !strings.Contains(pairings, "2 Fluttershy") {
		t.Errorf("unexpected first round pairings:\n%s", pairings)
	}

	mustRun(t, "match", "report", "-t", tid, "--winner", ids["Twilight"], "--loser", ids["Fluttershy"])
	mustRun(t, "match", "report", "-t", tid, "--winner", ids["Applejack"], "--loser", ids["Pinkie"])

	standings := mustRun(t, "standings", "-t", tid)
	lines := strings.Split(standings, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header and 4 rows, got:\n%s", standings)
	}
	if !strings.Contains(lines[1], "Twilight") || !strings.Contains(lines[2], "Applejack") {
		t.Errorf("winners should lead the standings:\n%s", standings)
	}

	pairings = mustRun(t, "pairings", "-t", tid)
	rows := strings.Split(pairings, "\n")
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 boards, got:\n%s", pairings)
	}
	if !strings.Contains(rows[1], "Twilight") || !strings.Contains(rows[1], "Applejack") {
		t.Errorf("board 1 should pair the winners:\n%s", pairings)
	}
	if !strings.Contains(rows[2], "Fluttershy") || !strings.Contains(rows[2], "Pinkie") {
		t.Errorf("board 2 should pair the losers:\n%s", pairings)
	}
}

func TestCLIOddPlayers(t *testing.T) {
	setupEnv(t)

	tid := mustRun(t, "tournament", "create", "--name", "Odd")
	for _, name := range []string{"A", "B", "C"} {
		mustRun(t, "player", "register", "-t", tid, "--name", name)
	}

	if _, err := run(t, "pairings", "-t", tid); !errors.Is(err, swiss.ErrOddPlayerCount) {
		t.Errorf("expected ErrOddPlayerCount, got %v", err)
	}
}

func TestCLIReset(t *testing.T) {
	setupEnv(t)

	tid := mustRun(t, "tournament", "create", "--name", "Reset")
	mustRun(t, "player", "register", "-t", tid, "--name", "A")

	if _, err := run(t, "reset"); err == nil {
		t.Error("reset without flags should fail")
	}
	mustRun(t, "reset", "--tournaments")
	if got := mustRun(t, "tournament", "list"); got != "" {
		t.Errorf("expected no tournaments, got %q", got)
	}
}

func TestCLIBadConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("DB_DRIVER", "mysql")

	if _, err := run(t, "tournament", "list"); err == nil {
		t.Error("expected configuration error")
	}
}
