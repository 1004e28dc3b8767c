package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/mmynk/tournament/internal/config"
	"github.com/mmynk/tournament/internal/metrics"
	"github.com/mmynk/tournament/internal/middleware"
	"github.com/mmynk/tournament/internal/roundlock"
	"github.com/mmynk/tournament/internal/service"
	"github.com/mmynk/tournament/internal/storage"
	"github.com/mmynk/tournament/internal/storage/postgres"
	"github.com/mmynk/tournament/internal/storage/sqlite"
	"github.com/mmynk/tournament/pkg/logging"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// app holds what the Before hook opens for the commands.
type app struct {
	cfg      *config.Config
	registry *prometheus.Registry
	svc      *service.TournamentService
	closers  []func() error
}

func newApp() *cli.App {
	a := &app{}

	return &cli.App{
		Name:  "tournament",
		Usage: "run a Swiss-system tournament",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a YAML configuration file",
				EnvVars: []string{"TOURNAMENT_CONFIG"},
			},
		},
		Before: a.open,
		After:  a.close,
		Commands: []*cli.Command{
			a.tournamentCommand(),
			a.playerCommand(),
			a.matchCommand(),
			{
				Name:   "standings",
				Usage:  "show the current standings",
				Flags:  []cli.Flag{tournamentFlag()},
				Action: a.standings,
			},
			{
				Name:   "pairings",
				Usage:  "compute the next round's pairings",
				Flags:  []cli.Flag{tournamentFlag()},
				Action: a.pairings,
			},
			{
				Name:  "reset",
				Usage: "delete records",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "matches", Usage: "delete all matches"},
					&cli.BoolFlag{Name: "players", Usage: "delete all players and their matches"},
					&cli.BoolFlag{Name: "tournaments", Usage: "delete everything"},
				},
				Action: a.reset,
			},
		},
	}
}

func tournamentFlag() cli.Flag {
	return &cli.Int64Flag{Name: "tournament", Aliases: []string{"t"}, Usage: "tournament id", Required: true}
}

// open loads configuration and connects the store and round lock.
func (a *app) open(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	a.cfg = cfg
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, store.Close)

	locker, err := a.openLocker(c.Context, cfg)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	recorder := metrics.New(a.registry)
	a.svc = service.NewTournamentService(middleware.InstrumentStore(store, recorder), locker, recorder)
	return nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		store, err := postgres.New(cfg.Database.DSN, cfg.Database.ConnTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres storage: %w", err)
		}
		slog.Debug("Storage initialized", "driver", cfg.Database.Driver)
		return store, nil
	default:
		store, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		slog.Debug("Storage initialized", "driver", cfg.Database.Driver, "database", cfg.Database.Path)
		return store, nil
	}
}

func (a *app) openLocker(ctx context.Context, cfg *config.Config) (roundlock.Locker, error) {
	if cfg.Lock.RedisURL == "" {
		return roundlock.NewLocal(), nil
	}
	locker, err := roundlock.NewRedisFromURL(ctx, cfg.Lock.RedisURL, cfg.Lock.TTL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, locker.Close)
	return locker, nil
}

// close pushes metrics when configured and releases connections.
func (a *app) close(c *cli.Context) error {
	var errs []error
	if a.cfg != nil && a.cfg.Metrics.PushgatewayURL != "" && a.registry != nil {
		if err := metrics.Push(a.cfg.Metrics.PushgatewayURL, "tournament", a.registry); err != nil {
			slog.Warn("Metrics push failed", "error", err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) tournamentCommand() *cli.Command {
	return &cli.Command{
		Name:  "tournament",
		Usage: "manage tournaments",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "create a tournament",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "info"},
				},
				Action: func(c *cli.Context) error {
					t, err := a.svc.CreateTournament(c.Context, c.String("name"), c.String("info"))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%d\n", t.ID)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list tournaments",
				Action: func(c *cli.Context) error {
					tournaments, err := a.svc.ListTournaments(c.Context)
					if err != nil {
						return err
					}
					for _, t := range tournaments {
						fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\n", t.ID, t.Name, t.Information)
					}
					return nil
				},
			},
		},
	}
}

func (a *app) playerCommand() *cli.Command {
	return &cli.Command{
		Name:  "player",
		Usage: "manage players",
		Subcommands: []*cli.Command{
			{
				Name:  "register",
				Usage: "register a player into a tournament",
				Flags: []cli.Flag{tournamentFlag(), &cli.StringFlag{Name: "name", Required: true}},
				Action: func(c *cli.Context) error {
					p, err := a.svc.RegisterPlayer(c.Context, c.Int64("tournament"), c.String("name"))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%d\n", p.ID)
					return nil
				},
			},
			{
				Name:  "count",
				Usage: "count registered players",
				Flags: []cli.Flag{tournamentFlag()},
				Action: func(c *cli.Context) error {
					n, err := a.svc.CountPlayers(c.Context, c.Int64("tournament"))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%d\n", n)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list registered players",
				Flags: []cli.Flag{tournamentFlag()},
				Action: func(c *cli.Context) error {
					players, err := a.svc.ListPlayers(c.Context, c.Int64("tournament"))
					if err != nil {
						return err
					}
					for _, p := range players {
						fmt.Fprintf(c.App.Writer, "%d\t%s\n", p.ID, p.Name)
					}
					return nil
				},
			},
		},
	}
}

func (a *app) matchCommand() *cli.Command {
	return &cli.Command{
		Name:  "match",
		Usage: "record results",
		Subcommands: []*cli.Command{
			{
				Name:  "report",
				Usage: "record the outcome of a match",
				Flags: []cli.Flag{
					tournamentFlag(),
					&cli.Int64Flag{Name: "winner", Required: true},
					&cli.Int64Flag{Name: "loser", Required: true},
				},
				Action: func(c *cli.Context) error {
					m, err := a.svc.ReportMatch(c.Context, c.Int64("tournament"), c.Int64("winner"), c.Int64("loser"))
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%d\n", m.ID)
					return nil
				},
			},
		},
	}
}

func (a *app) standings(c *cli.Context) error {
	standings, err := a.svc.PlayerStandings(c.Context, c.Int64("tournament"))
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, formatStandings(standings))
	return nil
}

func (a *app) pairings(c *cli.Context) error {
	pairings, err := a.svc.SwissPairings(c.Context, c.Int64("tournament"))
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, formatPairings(pairings))
	return nil
}

func (a *app) reset(c *cli.Context) error {
	matches, players, tournaments := c.Bool("matches"), c.Bool("players"), c.Bool("tournaments")
	if !matches && !players && !tournaments {
		return errors.New("nothing to reset: pass --matches, --players or --tournaments")
	}
	return a.svc.Reset(c.Context, matches, players, tournaments)
}
