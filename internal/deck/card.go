package deck

import "strconv"

// Suit represents a card suit
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists the suits in canonical deck order.
var Suits = [...]Suit{Hearts, Diamonds, Clubs, Spades}

// String returns the suit glyph
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s >= Hearts && s <= Spades
}

// Rank is a card rank with aces low: 1 is the ace, 13 the king.
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// MinRank and MaxRank bound the valid ranks.
const (
	MinRank = Ace
	MaxRank = King
)

// NumRanks is the number of distinct ranks.
const NumRanks = int(MaxRank)

// String returns the short rank label: A, 2..10, J, Q, K
func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return strconv.Itoa(int(r))
	}
}

// Valid reports whether r is in 1..13.
func (r Rank) Valid() bool {
	return r >= MinRank && r <= MaxRank
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the compact label, e.g. "Q♠" or "10♥"
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Equal reports whether two cards share rank and suit.
func (c Card) Equal(o Card) bool {
	return c.Rank == o.Rank && c.Suit == o.Suit
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// RankLabel returns the short label for a rank.
func RankLabel(r Rank) string { return r.String() }

// SuitLabel returns the glyph for a suit.
func SuitLabel(s Suit) string { return s.String() }

// CardLabel returns the compact label for a card.
func CardLabel(c Card) string { return c.String() }

// CardEquals reports structural equality of two cards.
func CardEquals(a, b Card) bool { return a.Equal(b) }
