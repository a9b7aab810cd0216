package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/coder/quartz"

	"github.com/lox/truckdealer/internal/leaderboard"
)

type LeaderboardCmd struct {
	List  LeaderboardListCmd  `cmd:"" default:"1" help:"List profiles ordered by correct-guess rate"`
	Reset LeaderboardResetCmd `cmd:"" help:"Erase every profile and the lifetime totals"`
}

type LeaderboardListCmd struct {
	Limit int `short:"n" default:"0" help:"Show at most this many profiles (0 for all)"`
}

type LeaderboardResetCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation"`
}

// withRecorder opens the configured store and runs fn against a live
// recorder.
func withRecorder(ctx context.Context, g *Globals, fn func(*leaderboard.Recorder) error) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg)
	clock := quartz.NewReal()

	store, err := openStore(ctx, cfg, clock)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rec := leaderboard.NewRecorder(store,
		leaderboard.WithRecorderClock(clock),
		leaderboard.WithRecorderLogger(logger))
	errc := make(chan error, 1)
	go func() { errc <- rec.Run(ctx) }()

	fnErr := fn(rec)
	_ = rec.Close()
	if err := <-errc; err != nil && fnErr == nil {
		return err
	}
	return fnErr
}

func (c *LeaderboardListCmd) Run(ctx context.Context, g *Globals) error {
	return withRecorder(ctx, g, func(rec *leaderboard.Recorder) error {
		profiles, err := rec.Profiles(ctx)
		if err != nil {
			return err
		}
		life, err := rec.Lifetime(ctx)
		if err != nil {
			return err
		}
		if c.Limit > 0 && len(profiles) > c.Limit {
			profiles = profiles[:c.Limit]
		}
		renderLeaderboard(os.Stdout, profiles, life)
		return nil
	})
}

func renderLeaderboard(w io.Writer, profiles []leaderboard.Profile, life *leaderboard.Lifetime) {
	if len(profiles) == 0 {
		fmt.Fprintln(w, "No games recorded yet.")
		return
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(profiles))
	for i, p := range profiles {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.Name,
			fmt.Sprintf("%.1f%%", leaderboard.CorrectGuessPercent(p.Stats)),
			strconv.Itoa(p.Stats.CorrectGuesses),
			strconv.Itoa(p.Stats.IncorrectGuesses),
			strconv.Itoa(p.Stats.DrinksTaken),
			strconv.Itoa(p.Stats.GamesStarted),
			strconv.Itoa(p.Stats.GamesCompleted),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "Player", "Correct", "Right", "Wrong", "Drinks", "Started", "Finished").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())

	if life != nil {
		fmt.Fprintf(w, "Lifetime: %d games started, %d finished, %d drinks, %d right, %d wrong\n",
			life.GamesStarted, life.GamesCompleted, life.DrinksTaken, life.CorrectGuesses, life.IncorrectGuesses)
	}
}

func (c *LeaderboardResetCmd) Run(ctx context.Context, g *Globals) error {
	if !c.Yes {
		fmt.Print("Erase the leaderboard? Type yes to confirm: ")
		var input string
		_, _ = fmt.Scanln(&input)
		if !strings.EqualFold(strings.TrimSpace(input), "yes") {
			fmt.Println("Leaderboard unchanged.")
			return nil
		}
	}
	return withRecorder(ctx, g, func(rec *leaderboard.Recorder) error {
		if err := rec.Reset(ctx); err != nil {
			return err
		}
		fmt.Println("Leaderboard reset.")
		return nil
	})
}
