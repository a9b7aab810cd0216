package deck

// Size is the number of cards in a standard deck.
const Size = 52

// NewStandardDeck returns all 52 cards unshuffled, rank-major and suit-minor:
// A♥ A♦ A♣ A♠ 2♥ ... K♠. Shuffles are defined relative to this order.
func NewStandardDeck() []Card {
	cards := make([]Card, 0, Size)
	for rank := MinRank; rank <= MaxRank; rank++ {
		for _, suit := range Suits {
			cards = append(cards, NewCard(rank, suit))
		}
	}
	return cards
}

// Index returns the position of c in the canonical deck order, or -1 for an
// invalid card.
func Index(c Card) int {
	if !c.Rank.Valid() || !c.Suit.Valid() {
		return -1
	}
	return (int(c.Rank)-1)*len(Suits) + int(c.Suit)
}
