package game

import (
	"maps"
	"slices"

	"github.com/lox/truckdealer/internal/deck"
)

// Player limits for a single game.
const (
	MinPlayers = 2
	MaxPlayers = 8
)

// PileCompleteSize is the number of cards that completes a rank pile.
const PileCompleteSize = 4

// Player is a seat at the table. IDs are unique and stable for the game.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlayerStats are per-game counters. They never decrease.
type PlayerStats struct {
	DrinksTaken      int `json:"drinksTaken"`
	CorrectGuesses   int `json:"correctGuesses"`
	IncorrectGuesses int `json:"incorrectGuesses"`
}

// Add returns the element-wise sum of s and d.
func (s PlayerStats) Add(d PlayerStats) PlayerStats {
	return PlayerStats{
		DrinksTaken:      s.DrinksTaken + d.DrinksTaken,
		CorrectGuesses:   s.CorrectGuesses + d.CorrectGuesses,
		IncorrectGuesses: s.IncorrectGuesses + d.IncorrectGuesses,
	}
}

// Phase is the state machine's current step within a round.
type Phase string

const (
	PhaseDealerPeek Phase = "dealerPeek"
	PhaseGuess      Phase = "guess"
	PhasePrompt     Phase = "prompt"
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// PromptKind tags a queued prompt.
type PromptKind string

const (
	PromptResult     PromptKind = "RESULT"
	PromptShot       PromptKind = "SHOT"
	PromptPunishment PromptKind = "PUNISHMENT"
	PromptInfo       PromptKind = "INFO"
)

// String returns the string representation of the prompt kind
func (k PromptKind) String() string {
	return string(k)
}

// Prompt is a display-ready message that must be acknowledged before play
// continues.
type Prompt struct {
	Kind PromptKind `json:"type"`
	Text string     `json:"text"`
}

// Pile holds the revealed cards of one rank.
type Pile struct {
	Rank       deck.Rank   `json:"rank"`
	Cards      []deck.Card `json:"cards"`
	IsComplete bool        `json:"isComplete"`
}

// with returns a copy of the pile with c appended.
func (p Pile) with(c deck.Card) Pile {
	cards := make([]deck.Card, len(p.Cards), len(p.Cards)+1)
	copy(cards, p.Cards)
	cards = append(cards, c)
	return Pile{Rank: p.Rank, Cards: cards, IsComplete: len(cards) >= PileCompleteSize}
}

// Table is the set of rank piles, indexed by rank-1.
type Table [deck.NumRanks]Pile

func newTable() Table {
	var t Table
	for i := range t {
		t[i] = Pile{Rank: deck.Rank(i + 1)}
	}
	return t
}

// Pile returns the pile for rank. It panics on an invalid rank.
func (t Table) Pile(rank deck.Rank) Pile {
	return t[rank-1]
}

// Count returns the number of cards on the table.
func (t Table) Count() int {
	n := 0
	for _, p := range t {
		n += len(p.Cards)
	}
	return n
}

// State is an immutable snapshot of a game. Reduce never modifies a State it
// is given; treat every field, including slices and maps, as read-only.
type State struct {
	Players  []Player `json:"players"`
	LeaderID string   `json:"leaderId"`

	Stats map[string]PlayerStats `json:"playerStats"`

	DealerIndex  int `json:"dealerIndex"`
	GuesserIndex int `json:"guesserIndex"`

	// Deck holds the undealt cards; the peeked card has already left it.
	Deck       []deck.Card `json:"deck"`
	Table      Table       `json:"tableByRank"`
	PeekedCard *deck.Card  `json:"peekedCard,omitempty"`

	CorrectStreak int `json:"correctStreak"`
	WrongStreak   int `json:"wrongStreak"`

	Phase          Phase    `json:"phase"`
	PendingPrompts []Prompt `json:"pendingPrompts"`

	Config Config `json:"config"`
	Seed   int64  `json:"seed"`
	Turn   int    `json:"turn"`
}

// Dealer returns the current dealer.
func (s *State) Dealer() Player {
	return s.Players[s.DealerIndex]
}

// Guesser returns the current guesser.
func (s *State) Guesser() Player {
	return s.Players[s.GuesserIndex]
}

// CurrentPrompt returns the head of the prompt queue, or nil.
func (s *State) CurrentPrompt() *Prompt {
	if len(s.PendingPrompts) == 0 {
		return nil
	}
	p := s.PendingPrompts[0]
	return &p
}

// StatsFor returns the counters for a player id (zero if unknown).
func (s *State) StatsFor(id string) PlayerStats {
	return s.Stats[id]
}

// Clone returns a deep copy of the state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.Players = slices.Clone(s.Players)
	c.Stats = maps.Clone(s.Stats)
	c.Deck = slices.Clone(s.Deck)
	for i, p := range s.Table {
		c.Table[i].Cards = slices.Clone(p.Cards)
	}
	if s.PeekedCard != nil {
		card := *s.PeekedCard
		c.PeekedCard = &card
	}
	c.PendingPrompts = slices.Clone(s.PendingPrompts)
	return &c
}

// shallow copies the top-level struct. Slices and maps stay shared and must
// be replaced, never written through, by the caller.
func (s *State) shallow() *State {
	c := *s
	return &c
}
