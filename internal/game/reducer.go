package game

import (
	"fmt"
	"io"
	"maps"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/truckdealer/internal/deck"
	"github.com/lox/truckdealer/internal/randutil"
)

// ReshuffleText is the INFO prompt shown when an empty deck is replaced.
const ReshuffleText = "Deck reshuffled."

// Result is the outcome of one Reduce call.
type Result struct {
	State *State
	// CurrentPrompt is State.PendingPrompts[0], or nil when the queue is empty.
	CurrentPrompt *Prompt
}

func resultOf(s *State) Result {
	return Result{State: s, CurrentPrompt: s.CurrentPrompt()}
}

// Reducer applies actions to game states. It reads the clock only to pick a
// default seed for START_GAME; everything else is a pure function of the
// input state and action.
type Reducer struct {
	clock  quartz.Clock
	logger *log.Logger
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithClock sets the clock used for default seeds.
func WithClock(clock quartz.Clock) Option {
	return func(r *Reducer) {
		r.clock = clock
	}
}

// WithLogger sets the debug logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Reducer) {
		r.logger = logger.WithPrefix("reducer")
	}
}

// NewReducer creates a reducer using the real clock and a silent logger
// unless overridden.
func NewReducer(opts ...Option) *Reducer {
	r := &Reducer{
		clock:  quartz.NewReal(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultReducer = NewReducer()

// Reduce applies action to state with the default reducer.
func Reduce(state *State, action Action) (Result, error) {
	return defaultReducer.Reduce(state, action)
}

// Reduce returns the state that follows state under action. A nil state
// accepts only StartGame. Actions that arrive in the wrong phase are silent
// no-ops and return the input state unchanged.
func (r *Reducer) Reduce(state *State, action Action) (Result, error) {
	if action == nil {
		return Result{}, fmt.Errorf("%w: nil action", ErrValidation)
	}

	if state == nil {
		start, ok := action.(StartGame)
		if !ok {
			return Result{}, fmt.Errorf("%w: first action must be %s, got %s", ErrSequence, ActionStartGame, action.Type())
		}
		next, err := r.startGame(start)
		if err != nil {
			return Result{}, err
		}
		return resultOf(next), nil
	}

	switch a := action.(type) {
	case StartGame:
		// Restarting means discarding the state, not resending START_GAME.
		return resultOf(state), nil

	case ConfirmDealerPeek:
		if state.Phase != PhaseDealerPeek {
			return resultOf(state), nil
		}
		next := state.shallow()
		next.Phase = PhaseGuess
		return resultOf(next), nil

	case SubmitGuess:
		if state.Phase != PhaseGuess {
			return resultOf(state), nil
		}
		next, err := r.submitGuess(state, a.Guess)
		if err != nil {
			return Result{}, err
		}
		return resultOf(next), nil

	case AckPrompt:
		if state.Phase != PhasePrompt {
			return resultOf(state), nil
		}
		return resultOf(r.ackPrompt(state)), nil

	default:
		return Result{}, fmt.Errorf("%w: unknown action %T", ErrValidation, action)
	}
}

func validatePlayers(players []Player) error {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return fmt.Errorf("%w: need %d-%d players, got %d", ErrInvalidPlayers, MinPlayers, MaxPlayers, len(players))
	}
	seen := make(map[string]bool, len(players))
	for i, p := range players {
		if p.ID == "" || p.Name == "" {
			return fmt.Errorf("%w: player %d needs id and name", ErrInvalidPlayers, i)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate player id %q", ErrInvalidPlayers, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

func (r *Reducer) startGame(a StartGame) (*State, error) {
	if err := validatePlayers(a.Players); err != nil {
		return nil, err
	}

	config := DefaultConfig().Apply(a.Config)
	if err := config.Validate(); err != nil {
		return nil, err
	}

	n := len(a.Players)
	if a.DealerIndex != nil && (*a.DealerIndex < 0 || *a.DealerIndex >= n) {
		return nil, fmt.Errorf("%w: dealer index %d out of range", ErrValidation, *a.DealerIndex)
	}

	seed := r.clock.Now().UnixMilli()
	if a.Seed != nil {
		seed = *a.Seed
	}

	rng := randutil.New(seed)
	cards := randutil.Shuffle(deck.NewStandardDeck(), rng)

	var dealer int
	if a.DealerIndex != nil {
		dealer = *a.DealerIndex
	} else {
		dealer = rng.IntN(n)
	}

	leader := a.LeaderID
	if leader == "" {
		leader = a.Players[0].ID
	}

	players := make([]Player, n)
	copy(players, a.Players)

	stats := make(map[string]PlayerStats, n)
	for _, p := range players {
		stats[p.ID] = PlayerStats{}
	}

	s := &State{
		Players:      players,
		LeaderID:     leader,
		Stats:        stats,
		DealerIndex:  dealer,
		GuesserIndex: nextGuesserIndex(n, dealer, dealer),
		Deck:         cards,
		Table:        newTable(),
		Config:       config,
		Seed:         seed,
	}
	beginDealerPeek(s)

	r.logger.Debug("game started",
		"seed", seed,
		"players", n,
		"dealer", s.Dealer().Name,
		"guesser", s.Guesser().Name)

	return s, nil
}

func (r *Reducer) submitGuess(s *State, guess deck.Rank) (*State, error) {
	if s.PeekedCard == nil {
		return nil, fmt.Errorf("%w: guess submitted with no peeked card", ErrInvariantViolation)
	}
	if !guess.Valid() {
		return nil, fmt.Errorf("%w: guess %d is not a rank", ErrValidation, int(guess))
	}

	revealed := *s.PeekedCard
	correct := guess == revealed.Rank

	next := s.shallow()
	if correct {
		next.CorrectStreak = s.CorrectStreak + 1
		next.WrongStreak = 0
	} else {
		next.WrongStreak = s.WrongStreak + 1
		next.CorrectStreak = 0
	}

	next.PeekedCard = nil
	next.Table[revealed.Rank-1] = s.Table.Pile(revealed.Rank).with(revealed)

	dealer := s.Dealer()
	guesser := s.Guesser()
	stats := maps.Clone(s.Stats)

	prompts := make([]Prompt, 0, 4)
	if correct {
		stats[guesser.ID] = stats[guesser.ID].Add(PlayerStats{CorrectGuesses: 1})
		stats[dealer.ID] = stats[dealer.ID].Add(PlayerStats{DrinksTaken: 1})
		prompts = append(prompts, Prompt{
			Kind: PromptResult,
			Text: fmt.Sprintf("GOOD ANSWER — %s drinks.", dealer.Name),
		})
	} else {
		stats[guesser.ID] = stats[guesser.ID].Add(PlayerStats{IncorrectGuesses: 1, DrinksTaken: 1})
		prompts = append(prompts, Prompt{
			Kind: PromptResult,
			Text: fmt.Sprintf("WRONG — it was %s. %s drinks.", revealed.Rank, guesser.Name),
		})
	}

	cfg := s.Config
	if next.CorrectStreak == cfg.CorrectStreakForShot {
		stats[dealer.ID] = stats[dealer.ID].Add(PlayerStats{DrinksTaken: 1})
		prompts = append(prompts, Prompt{Kind: PromptShot, Text: fmt.Sprintf("%s takes a shot.", dealer.Name)})
	}
	if next.CorrectStreak == cfg.CorrectStreakForPunishment {
		prompts = append(prompts, Prompt{Kind: PromptPunishment, Text: cfg.punishmentText()})
	}
	if next.WrongStreak == cfg.WrongStreakToChangeDealer {
		upcoming := s.Players[nextIndex(s.DealerIndex, len(s.Players))]
		prompts = append(prompts, Prompt{Kind: PromptInfo, Text: fmt.Sprintf("Dealer changes to %s.", upcoming.Name)})
	}

	next.Stats = stats
	next.PendingPrompts = prompts
	next.Phase = PhasePrompt

	r.logger.Debug("guess resolved",
		"turn", s.Turn,
		"guesser", guesser.Name,
		"guess", guess,
		"card", revealed,
		"correct", correct,
		"correctStreak", next.CorrectStreak,
		"wrongStreak", next.WrongStreak,
		"prompts", len(prompts))

	return next, nil
}

func (r *Reducer) ackPrompt(s *State) *State {
	next := s.shallow()

	if len(s.PendingPrompts) == 0 {
		r.endTurn(next)
		return next
	}

	shown := s.PendingPrompts[0]
	next.PendingPrompts = s.PendingPrompts[1:]

	switch shown.Kind {
	case PromptPunishment:
		if s.Config.ResetCorrectStreakAfterPunishment {
			next.CorrectStreak = 0
		}
	case PromptResult, PromptShot, PromptInfo:
	}

	if len(next.PendingPrompts) == 0 {
		next.PendingPrompts = nil
		r.endTurn(next)
	}
	return next
}

// endTurn resolves the drained prompt queue on a state the caller owns. The
// "Deck reshuffled." notice resolves through here too, so acknowledging it
// advances the guesser and the turn before the fresh deck is drawn from.
func (r *Reducer) endTurn(s *State) {
	n := len(s.Players)
	if s.WrongStreak >= s.Config.WrongStreakToChangeDealer {
		s.DealerIndex = nextIndex(s.DealerIndex, n)
		s.GuesserIndex = nextGuesserIndex(n, s.DealerIndex, s.DealerIndex)
		s.CorrectStreak = 0
		s.WrongStreak = 0
		r.logger.Debug("dealer rotated", "turn", s.Turn+1, "dealer", s.Dealer().Name)
	} else {
		s.GuesserIndex = nextGuesserIndex(n, s.DealerIndex, s.GuesserIndex)
	}
	s.Turn++
	beginDealerPeek(s)
}

// beginDealerPeek enters dealerPeek on a state the caller owns and draws the
// next card, reshuffling a fresh deck when the current one is spent.
func beginDealerPeek(s *State) {
	s.Phase = PhaseDealerPeek
	s.PendingPrompts = nil
	s.PeekedCard = nil

	if len(s.Deck) == 0 {
		rng := randutil.New(s.Seed + int64(s.Turn) + 1)
		s.Deck = randutil.Shuffle(deck.NewStandardDeck(), rng)
		s.Table = newTable()
		s.PendingPrompts = []Prompt{{Kind: PromptInfo, Text: ReshuffleText}}
		s.Phase = PhasePrompt
		return
	}

	card := s.Deck[0]
	s.PeekedCard = &card
	s.Deck = s.Deck[1:]
}

func nextIndex(current, count int) int {
	return (current + 1) % count
}

// nextGuesserIndex steps once from from, skipping the dealer.
func nextGuesserIndex(count, dealer, from int) int {
	idx := nextIndex(from, count)
	if idx == dealer {
		idx = nextIndex(idx, count)
	}
	return idx
}
