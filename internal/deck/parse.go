package deck

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseRank parses a rank as typed by a player: "A", "1".."10", "T", "J",
// "Q" or "K", case-insensitive.
func ParseRank(s string) (Rank, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch s {
	case "A":
		return Ace, nil
	case "T":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || !Rank(n).Valid() {
		return 0, fmt.Errorf("invalid rank %q", s)
	}
	return Rank(n), nil
}

// ParseCard parses a card label as printed by CardLabel, such as "Q♠" or
// "10♥". Letter suits (h, d, c, s) and "T" for ten are also accepted.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	suitRune, size := utf8.DecodeLastRuneInString(s)
	if size == 0 || size == len(s) {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	suit, err := parseSuit(suitRune)
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	rank, err := ParseRank(s[:len(s)-size])
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}
	return NewCard(rank, suit), nil
}

// ParseCards parses whitespace-separated card labels in order.
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is ParseCards for fixtures; it panics on bad input.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

func parseSuit(r rune) (Suit, error) {
	for _, suit := range Suits {
		if r == []rune(suit.String())[0] {
			return suit, nil
		}
	}
	switch unicode.ToLower(r) {
	case 'h':
		return Hearts, nil
	case 'd':
		return Diamonds, nil
	case 'c':
		return Clubs, nil
	case 's':
		return Spades, nil
	}
	return 0, fmt.Errorf("unknown suit %q", r)
}
