package simulator

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/truckdealer/internal/deck"
	"github.com/lox/truckdealer/internal/game"
	"github.com/lox/truckdealer/internal/randutil"
	"github.com/lox/truckdealer/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Games   int
	Guesses int // guesses played per game
	Players int
	Seed    int64
	// Accuracy is the probability that the simulated guesser names the peeked
	// rank. Otherwise a uniformly random rank is guessed.
	Accuracy  float64
	Rules     *game.ConfigOverrides
	Parallel  int
	Timeout   time.Duration // per game; zero means no limit
	Logger    *log.Logger
	Observers []game.Observer
}

// Totals counts what happened across one or more games.
type Totals struct {
	Games            int
	Guesses          int
	CorrectGuesses   int
	IncorrectGuesses int
	Drinks           int
	Shots            int
	Punishments      int
	DealerChanges    int
	Reshuffles       int
	Turns            int
}

func (t *Totals) add(o Totals) {
	t.Games += o.Games
	t.Guesses += o.Guesses
	t.CorrectGuesses += o.CorrectGuesses
	t.IncorrectGuesses += o.IncorrectGuesses
	t.Drinks += o.Drinks
	t.Shots += o.Shots
	t.Punishments += o.Punishments
	t.DealerChanges += o.DealerChanges
	t.Reshuffles += o.Reshuffles
	t.Turns += o.Turns
}

// GameResult is the outcome of a single simulated game.
type GameResult struct {
	Seed   int64
	Totals Totals
	// Seats holds per-player stats in seating order.
	Seats []game.PlayerStats
}

// Results aggregates every game of a run.
type Results struct {
	Totals Totals
	Seats  []game.PlayerStats
	Games  []GameResult
	// DrinksPerGame is the distribution of drinks poured per game.
	DrinksPerGame statistics.Statistics
}

// Simulator runs headless games
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Players == 0 {
		config.Players = 4
	}
	if config.Parallel <= 0 {
		config.Parallel = runtime.GOMAXPROCS(0)
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

// Validate checks the configuration before a run.
func (s *Simulator) Validate() error {
	if s.config.Games < 0 {
		return fmt.Errorf("games cannot be negative")
	}
	if s.config.Guesses < 0 {
		return fmt.Errorf("guesses cannot be negative")
	}
	if s.config.Players < game.MinPlayers || s.config.Players > game.MaxPlayers {
		return fmt.Errorf("players must be between %d and %d", game.MinPlayers, game.MaxPlayers)
	}
	if s.config.Accuracy < 0 || s.config.Accuracy > 1 {
		return fmt.Errorf("accuracy must be between 0 and 1")
	}
	return nil
}

// Run plays every game, seeding game i with Seed+i. Games run in parallel;
// results are reported in game order regardless of scheduling.
func (s *Simulator) Run(ctx context.Context) (*Results, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	games := make([]GameResult, s.config.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Parallel)

	for i := range s.config.Games {
		seed := s.config.Seed + int64(i)
		g.Go(func() error {
			res, err := s.playGameWithTimeout(ctx, seed)
			if err != nil {
				return fmt.Errorf("game %d (seed %d): %w", i+1, seed, err)
			}
			games[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := &Results{
		Seats: make([]game.PlayerStats, s.config.Players),
		Games: games,
	}
	for _, gr := range games {
		results.Totals.add(gr.Totals)
		results.DrinksPerGame.Add(float64(gr.Totals.Drinks))
		for seat, st := range gr.Seats {
			results.Seats[seat] = results.Seats[seat].Add(st)
		}
	}
	if err := results.DrinksPerGame.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return results, nil
}

func (s *Simulator) playGameWithTimeout(ctx context.Context, seed int64) (GameResult, error) {
	if s.config.Timeout <= 0 {
		return s.PlayGame(ctx, seed)
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	return s.PlayGame(ctx, seed)
}

// Seats returns the simulated players for a game.
func (s *Simulator) Seats() []game.Player {
	players := make([]game.Player, s.config.Players)
	for i := range players {
		players[i] = game.Player{
			ID:   fmt.Sprintf("seat-%d", i+1),
			Name: fmt.Sprintf("Player %d", i+1),
		}
	}
	return players
}

// PlayGame plays one game from seed until the configured number of guesses
// have been made and their prompts acknowledged. Invariants are checked after
// every transition. Game-end observers are notified only when the game
// finishes; a game abandoned by an error or timeout is never reported.
func (s *Simulator) PlayGame(ctx context.Context, seed int64) (GameResult, error) {
	logger := s.config.Logger.With("seed", seed)
	reducer := game.NewReducer(game.WithLogger(logger))
	session := game.NewSession(reducer, logger, s.config.Observers...)
	strategy := randutil.New(seed ^ 0x5eed)

	result := GameResult{Seed: seed}
	tally := &result.Totals
	tally.Games = 1

	players := s.Seats()
	dealer := -1
	res, err := session.Dispatch(game.StartGame{Players: players, Config: s.config.Rules, Seed: &seed})
	if err != nil {
		return result, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := game.CheckInvariants(res.State); err != nil {
			return result, err
		}
		if dealer >= 0 && res.State.DealerIndex != dealer {
			tally.DealerChanges++
		}
		dealer = res.State.DealerIndex

		st := res.State
		var action game.Action
		switch st.Phase {
		case game.PhaseDealerPeek:
			if tally.Guesses >= s.config.Guesses {
				// Only games played to the end count as completed.
				session.End()
				return s.finish(result, st), nil
			}
			action = game.ConfirmDealerPeek{}
		case game.PhaseGuess:
			action = game.SubmitGuess{Guess: s.guess(strategy, st.PeekedCard.Rank)}
			tally.Guesses++
		case game.PhasePrompt:
			countPrompt(tally, res.CurrentPrompt)
			action = game.AckPrompt{}
		default:
			return result, fmt.Errorf("%w: unknown phase %q", game.ErrInvariantViolation, st.Phase)
		}

		next, err := session.Dispatch(action)
		if err != nil {
			return result, err
		}
		if next.State == st {
			return result, fmt.Errorf("%s made no progress in phase %s", action.Type(), st.Phase)
		}
		res = next
	}
}

func (s *Simulator) guess(strategy *randutil.RNG, actual deck.Rank) deck.Rank {
	if strategy.NextFloat() < s.config.Accuracy {
		return actual
	}
	return deck.Rank(strategy.IntN(deck.NumRanks) + 1)
}

func countPrompt(t *Totals, p *game.Prompt) {
	if p == nil {
		return
	}
	switch p.Kind {
	case game.PromptShot:
		t.Shots++
	case game.PromptPunishment:
		t.Punishments++
	case game.PromptInfo:
		if p.Text == game.ReshuffleText {
			t.Reshuffles++
		}
	}
}

func (s *Simulator) finish(result GameResult, final *game.State) GameResult {
	result.Totals.Turns = final.Turn
	result.Seats = make([]game.PlayerStats, len(final.Players))
	for i, p := range final.Players {
		st := final.StatsFor(p.ID)
		result.Seats[i] = st
		result.Totals.CorrectGuesses += st.CorrectGuesses
		result.Totals.IncorrectGuesses += st.IncorrectGuesses
		result.Totals.Drinks += st.DrinksTaken
	}
	return result
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, r *Results) {
	t := r.Totals
	fmt.Fprintf(w, "\n=== SIMULATION RESULTS ===\n")
	fmt.Fprintf(w, "Games played: %d\n", t.Games)
	fmt.Fprintf(w, "Guesses: %d (%d correct, %d wrong)\n", t.Guesses, t.CorrectGuesses, t.IncorrectGuesses)
	if t.Guesses > 0 {
		fmt.Fprintf(w, "Correct rate: %.1f%%\n", float64(t.CorrectGuesses)/float64(t.Guesses)*100)
	}
	fmt.Fprintf(w, "Drinks: %d\n", t.Drinks)

	d := &r.DrinksPerGame
	if d.Count > 0 {
		low, high := d.ConfidenceInterval95()
		fmt.Fprintf(w, "\n=== DRINKS PER GAME ===\n")
		fmt.Fprintf(w, "Mean: %.2f  Median: %.1f  Std Dev: %.2f\n", d.Mean(), d.Median(), d.StdDev())
		fmt.Fprintf(w, "95%% CI: [%.2f, %.2f]\n", low, high)
		fmt.Fprintf(w, "Range: %.0f-%.0f  P5=%.1f P95=%.1f\n", d.Min, d.Max, d.Percentile(0.05), d.Percentile(0.95))
	}

	fmt.Fprintf(w, "\n=== EVENTS ===\n")
	fmt.Fprintf(w, "Shots: %d\n", t.Shots)
	fmt.Fprintf(w, "Punishments: %d\n", t.Punishments)
	fmt.Fprintf(w, "Dealer changes: %d\n", t.DealerChanges)
	fmt.Fprintf(w, "Reshuffles: %d\n", t.Reshuffles)

	fmt.Fprintf(w, "\n=== SEATS ===\n")
	for i, st := range r.Seats {
		fmt.Fprintf(w, "Seat %d: %d drinks, %d correct, %d wrong\n",
			i+1, st.DrinksTaken, st.CorrectGuesses, st.IncorrectGuesses)
	}
}
