package leaderboard

import "github.com/lox/truckdealer/internal/game"

// TransitionDeltas computes the per-player deltas implied by one reducer
// transition. A game start counts one game started for every player; a guess
// contributes the change in each player's per-game counters. Every other
// transition yields nothing.
func TransitionDeltas(prev *game.State, action game.Action, next *game.State) []NamedDelta {
	if next == nil {
		return nil
	}

	switch a := action.(type) {
	case game.StartGame:
		if prev != nil {
			return nil
		}
		deltas := make([]NamedDelta, 0, len(a.Players))
		for _, p := range a.Players {
			deltas = append(deltas, NamedDelta{Name: p.Name, Delta: Delta{GamesStarted: 1}})
		}
		return deltas

	case game.SubmitGuess:
		if prev == nil {
			return nil
		}
		prevNames := make(map[string]string, len(prev.Players))
		for _, p := range prev.Players {
			prevNames[p.ID] = p.Name
		}

		var deltas []NamedDelta
		for _, p := range next.Players {
			before := prev.Stats[p.ID]
			after := next.Stats[p.ID]
			d := Delta{
				DrinksTaken:      after.DrinksTaken - before.DrinksTaken,
				CorrectGuesses:   after.CorrectGuesses - before.CorrectGuesses,
				IncorrectGuesses: after.IncorrectGuesses - before.IncorrectGuesses,
			}
			if d.IsZero() {
				continue
			}
			name := p.Name
			if name == "" {
				name = prevNames[p.ID]
			}
			deltas = append(deltas, NamedDelta{Name: name, Delta: d})
		}
		return deltas
	}
	return nil
}

// CompletedDeltas counts one completed game for every player in final.
func CompletedDeltas(final *game.State) []NamedDelta {
	if final == nil {
		return nil
	}
	deltas := make([]NamedDelta, 0, len(final.Players))
	for _, p := range final.Players {
		deltas = append(deltas, NamedDelta{Name: p.Name, Delta: Delta{GamesCompleted: 1}})
	}
	return deltas
}

// Update is one leaderboard change: the per-profile deltas plus the change
// to the lifetime totals. The lifetime side counts a game once, not once per
// player.
type Update struct {
	Profiles []NamedDelta
	Lifetime Delta
}

// IsZero reports whether u changes nothing.
func (u Update) IsZero() bool {
	return len(u.Profiles) == 0 && u.Lifetime.IsZero()
}

// TransitionUpdate is the full leaderboard change for one transition.
func TransitionUpdate(prev *game.State, action game.Action, next *game.State) Update {
	return Update{
		Profiles: TransitionDeltas(prev, action, next),
		Lifetime: LifetimeDelta(prev, action, next),
	}
}

// CompletedUpdate is the leaderboard change for a finished game.
func CompletedUpdate(final *game.State) Update {
	if final == nil {
		return Update{}
	}
	return Update{
		Profiles: CompletedDeltas(final),
		Lifetime: Delta{GamesCompleted: 1},
	}
}

// LifetimeDelta computes the change to the lifetime totals for one
// transition: one game per start, and the table-wide change in counters per
// guess.
func LifetimeDelta(prev *game.State, action game.Action, next *game.State) Delta {
	if next == nil {
		return Delta{}
	}
	switch action.(type) {
	case game.StartGame:
		if prev == nil {
			return Delta{GamesStarted: 1}
		}
	case game.SubmitGuess:
		if prev == nil {
			return Delta{}
		}
		before, after := tableTotals(prev), tableTotals(next)
		return Delta{
			DrinksTaken:      after.DrinksTaken - before.DrinksTaken,
			CorrectGuesses:   after.CorrectGuesses - before.CorrectGuesses,
			IncorrectGuesses: after.IncorrectGuesses - before.IncorrectGuesses,
		}
	}
	return Delta{}
}

func tableTotals(s *game.State) game.PlayerStats {
	var total game.PlayerStats
	for _, p := range s.Players {
		total = total.Add(s.Stats[p.ID])
	}
	return total
}
