package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lox/truckdealer/internal/game"
	"github.com/lox/truckdealer/internal/gameid"
	"github.com/lox/truckdealer/internal/leaderboard"
	"github.com/lox/truckdealer/internal/tui"
)

type PlayCmd struct {
	Players  []string `arg:"" help:"Player names in seating order (2-8)"`
	Seed     *int64   `help:"Shuffle seed (defaults to the current time)"`
	Dealer   *int     `help:"Seat index of the first dealer (defaults to a seeded pick)"`
	NoRecord bool     `help:"Do not record this game on the leaderboard"`
}

// seat assigns a fresh id to each entered name.
func seat(names []string) ([]game.Player, error) {
	players := make([]game.Player, 0, len(names))
	for _, name := range names {
		name = leaderboard.DisplayName(name)
		if name == "" {
			return nil, errors.New("player names cannot be blank")
		}
		players = append(players, game.Player{ID: uuid.NewString(), Name: name})
	}
	return players, nil
}

func (c *PlayCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	players, err := seat(c.Players)
	if err != nil {
		return err
	}

	logFile, err := openLogFile(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	clock := quartz.NewReal()
	gameID := gameid.NewGenerator(clock, nil).Generate()
	logger := newLogger(logFile, cfg).With("game", gameID)

	var observers []game.Observer
	var recorder *leaderboard.Recorder
	if !c.NoRecord {
		store, err := openStore(ctx, cfg, clock)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		recorder = leaderboard.NewRecorder(store,
			leaderboard.WithRecorderClock(clock),
			leaderboard.WithRecorderLogger(logger))
		observers = append(observers, recorder)
	}

	reducer := game.NewReducer(game.WithClock(clock), game.WithLogger(logger))
	session := game.NewSession(reducer, logger, observers...)
	model := tui.NewModel(session, logger)

	if err := model.Start(game.StartGame{
		Players:     players,
		Config:      cfg.Overrides(),
		Seed:        c.Seed,
		DealerIndex: c.Dealer,
	}); err != nil {
		return fmt.Errorf("starting game: %w", err)
	}

	logger.Info("Starting Truck the Dealer",
		"players", strings.Join(c.Players, ","),
		"storage", cfg.Storage.Backend,
		"config", g.Config)

	eg, egCtx := errgroup.WithContext(ctx)
	if recorder != nil {
		eg.Go(func() error {
			return recorder.Run(egCtx)
		})
	}
	eg.Go(func() error {
		defer func() {
			session.End()
			if recorder != nil {
				_ = recorder.Close()
			}
		}()
		program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(egCtx))
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
