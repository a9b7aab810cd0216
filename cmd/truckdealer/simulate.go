package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/truckdealer/internal/game"
	"github.com/lox/truckdealer/internal/leaderboard"
	"github.com/lox/truckdealer/internal/simulator"
)

type SimulateCmd struct {
	Games    int           `default:"1000" help:"Number of games to simulate"`
	Guesses  int           `default:"104" help:"Guesses per game"`
	Players  int           `default:"4" help:"Players per game (2-8)"`
	Seed     int64         `default:"0" help:"Base seed; game i uses seed+i (0 for time-based)"`
	Accuracy float64       `default:"0.1" help:"Probability the simulated guesser names the right rank"`
	Parallel int           `default:"0" help:"Games to run at once (0 for GOMAXPROCS)"`
	Timeout  time.Duration `default:"30s" help:"Per-game timeout"`
	Record   bool          `help:"Record simulated games on the leaderboard"`
}

func (c *SimulateCmd) Run(ctx context.Context, g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg)
	clock := quartz.NewReal()

	seed := c.Seed
	if seed == 0 {
		seed = clock.Now().UnixNano()
	}

	simCfg := simulator.Config{
		Games:    c.Games,
		Guesses:  c.Guesses,
		Players:  c.Players,
		Seed:     seed,
		Accuracy: c.Accuracy,
		Rules:    cfg.Overrides(),
		Parallel: c.Parallel,
		Timeout:  c.Timeout,
		Logger:   logger,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	var recorder *leaderboard.Recorder
	if c.Record {
		store, err := openStore(ctx, cfg, clock)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		recorder = leaderboard.NewRecorder(store,
			leaderboard.WithRecorderClock(clock),
			leaderboard.WithRecorderLogger(logger))
		simCfg.Observers = []game.Observer{recorder}
		eg.Go(func() error {
			return recorder.Run(egCtx)
		})
	}

	logger.Info("Running simulation", "games", c.Games, "guesses", c.Guesses, "players", c.Players, "seed", seed)
	start := clock.Now()

	var results *simulator.Results
	eg.Go(func() error {
		if recorder != nil {
			defer func() { _ = recorder.Close() }()
		}
		var err error
		results, err = simulator.New(simCfg).Run(egCtx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	simulator.PrintSummary(os.Stdout, results)
	fmt.Printf("\nSeed: %d  Duration: %s\n", seed, clock.Since(start).Round(time.Millisecond))
	return nil
}
