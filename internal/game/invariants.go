package game

import (
	"errors"
	"fmt"

	"github.com/lox/truckdealer/internal/deck"
)

// CheckInvariants verifies the structural rules every reachable state obeys.
// All violations are reported, each wrapping ErrInvariantViolation.
func CheckInvariants(s *State) error {
	if s == nil {
		return fmt.Errorf("%w: nil state", ErrInvariantViolation)
	}

	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvariantViolation}, args...)...))
	}

	n := len(s.Players)
	if n < MinPlayers || n > MaxPlayers {
		fail("%d players", n)
	}
	if s.DealerIndex < 0 || s.DealerIndex >= n || s.GuesserIndex < 0 || s.GuesserIndex >= n {
		fail("dealer %d / guesser %d out of range", s.DealerIndex, s.GuesserIndex)
	}
	if s.DealerIndex == s.GuesserIndex {
		fail("dealer and guesser are both seat %d", s.DealerIndex)
	}

	var seen [deck.Size]int
	count := func(c deck.Card, where string) {
		idx := deck.Index(c)
		if idx < 0 {
			fail("invalid card %+v in %s", c, where)
			return
		}
		seen[idx]++
	}
	for _, c := range s.Deck {
		count(c, "deck")
	}
	for i, p := range s.Table {
		if p.Rank != deck.Rank(i+1) {
			fail("pile %d labelled rank %d", i, p.Rank)
		}
		for _, c := range p.Cards {
			if c.Rank != p.Rank {
				fail("%s in the %s pile", c, p.Rank)
			}
			count(c, "table")
		}
		if p.IsComplete != (len(p.Cards) >= PileCompleteSize) {
			fail("%s pile has %d cards but complete=%v", p.Rank, len(p.Cards), p.IsComplete)
		}
	}
	if s.PeekedCard != nil {
		count(*s.PeekedCard, "peek")
	}
	for idx, k := range seen {
		if k != 1 {
			fail("card %s seen %d times", deck.NewStandardDeck()[idx], k)
		}
	}

	switch s.Phase {
	case PhasePrompt:
		if len(s.PendingPrompts) == 0 {
			fail("prompt phase with an empty queue")
		}
	case PhaseDealerPeek, PhaseGuess:
		if len(s.PendingPrompts) != 0 {
			fail("%s phase with %d pending prompts", s.Phase, len(s.PendingPrompts))
		}
		if s.PeekedCard == nil {
			fail("%s phase with no peeked card", s.Phase)
		}
	default:
		fail("unknown phase %q", s.Phase)
	}

	if s.CorrectStreak > 0 && s.WrongStreak > 0 {
		fail("correct streak %d and wrong streak %d both positive", s.CorrectStreak, s.WrongStreak)
	}
	if s.CorrectStreak < 0 || s.WrongStreak < 0 {
		fail("negative streak")
	}

	return errors.Join(errs...)
}
