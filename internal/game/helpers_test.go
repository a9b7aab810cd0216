package game

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/truckdealer/internal/deck"
)

func ptr[T any](v T) *T { return &v }

func alicebob() []Player {
	return []Player{{ID: "p1", Name: "Alice"}, {ID: "p2", Name: "Bob"}}
}

func seatedPlayers(n int) []Player {
	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi"}
	players := make([]Player, n)
	for i := range players {
		players[i] = Player{ID: string(rune('a' + i)), Name: names[i]}
	}
	return players
}

// start begins a game with a fixed seed and dealer 0.
func start(t *testing.T, players []Player, overrides *ConfigOverrides) *State {
	t.Helper()
	res, err := Reduce(nil, StartGame{
		Players:     players,
		Config:      overrides,
		Seed:        ptr(int64(1)),
		DealerIndex: ptr(0),
	})
	require.NoError(t, err)
	require.NoError(t, CheckInvariants(res.State))
	return res.State
}

// step reduces one action and checks invariants on the result.
func step(t *testing.T, s *State, a Action) *State {
	t.Helper()
	res, err := Reduce(s, a)
	require.NoError(t, err)
	require.NoError(t, CheckInvariants(res.State))
	if len(res.State.PendingPrompts) > 0 {
		require.Equal(t, res.State.PendingPrompts[0], *res.CurrentPrompt)
	} else {
		require.Nil(t, res.CurrentPrompt)
	}
	return res.State
}

func wrongRank(r deck.Rank) deck.Rank {
	return r%deck.King + 1
}

// guess confirms the peek and submits a guess that is correct or not.
func guess(t *testing.T, s *State, correct bool) *State {
	t.Helper()
	require.Equal(t, PhaseDealerPeek, s.Phase)
	s = step(t, s, ConfirmDealerPeek{})
	rank := s.PeekedCard.Rank
	if !correct {
		rank = wrongRank(rank)
	}
	return step(t, s, SubmitGuess{Guess: rank})
}

// drain acknowledges prompts until the queue is empty, returning the kinds seen.
func drain(t *testing.T, s *State) (*State, []PromptKind) {
	t.Helper()
	var kinds []PromptKind
	for s.Phase == PhasePrompt {
		kinds = append(kinds, s.PendingPrompts[0].Kind)
		s = step(t, s, AckPrompt{})
	}
	return s, kinds
}

// round plays one full guess and drains its prompts.
func round(t *testing.T, s *State, correct bool) (*State, []PromptKind) {
	t.Helper()
	return drain(t, guess(t, s, correct))
}

// stack returns a copy of s whose next cards are labels, in order, starting
// with the peeked card. The rest of the deck keeps its relative order.
func stack(t *testing.T, s *State, labels string) *State {
	t.Helper()
	top := deck.MustParseCards(labels)
	require.NotEmpty(t, top)

	remaining := append([]deck.Card{*s.PeekedCard}, s.Deck...)
	rest := make([]deck.Card, 0, len(remaining))
	for _, c := range remaining {
		if !slices.Contains(top, c) {
			rest = append(rest, c)
		}
	}
	require.Len(t, rest, len(remaining)-len(top), "stacked cards must still be undealt")

	next := s.Clone()
	next.PeekedCard = &top[0]
	next.Deck = append(slices.Clone(top[1:]), rest...)
	require.NoError(t, CheckInvariants(next))
	return next
}
