// Package game implements the rules engine for Truck the Dealer, a
// pass-and-play card-guessing drinking game.
//
// The engine is a pure state machine. A State is an immutable snapshot and
// Reduce maps (state, action) to the next snapshot plus the prompt the
// presentation layer should show next:
//
//	res, err := game.Reduce(nil, game.StartGame{Players: players})
//	res, _ = game.Reduce(res.State, game.ConfirmDealerPeek{})
//	res, _ = game.Reduce(res.State, game.SubmitGuess{Guess: deck.Queen})
//	for res.CurrentPrompt != nil {
//	    show(res.CurrentPrompt)
//	    res, _ = game.Reduce(res.State, game.AckPrompt{})
//	}
//
// # Phases
//
// Each round moves dealerPeek -> guess -> prompt. The prompt queue built by a
// guess must be acknowledged in order; once it drains the turn resolves,
// either advancing the guesser or rotating the dealer after a wrong streak,
// and the next card is peeked. Actions sent in the wrong phase are ignored.
//
// When the deck runs out the next peek finds a fresh shuffled deck and queues
// a "Deck reshuffled." notice instead. Acknowledging the notice resolves the
// turn again, so the guesser and the turn counter advance once more before
// the first card of the new deck is peeked.
//
// # Deterministic Testing
//
// The seed in StartGame fixes the shuffle, the default dealer and every
// reshuffle (seeded from seed+turn+1), so replaying the same actions from the
// same seed reproduces the same states exactly:
//
//	seed := int64(42)
//	res, _ := game.Reduce(nil, game.StartGame{Players: players, Seed: &seed})
//
// When no seed is given the reducer's clock supplies one; inject a
// quartz.Mock with WithClock to pin it.
//
// # Wiring
//
// Session holds the live state for a device, serializes Dispatch calls and
// notifies Observers of each (prev, action, next) transition. The leaderboard
// recorder is attached this way.
package game
