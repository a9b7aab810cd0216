package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankLabel(t *testing.T) {
	tests := []struct {
		rank Rank
		want string
	}{
		{Ace, "A"},
		{Two, "2"},
		{Nine, "9"},
		{Ten, "10"},
		{Jack, "J"},
		{Queen, "Q"},
		{King, "K"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RankLabel(tt.rank))
	}
}

func TestSuitLabel(t *testing.T) {
	assert.Equal(t, "♥", SuitLabel(Hearts))
	assert.Equal(t, "♦", SuitLabel(Diamonds))
	assert.Equal(t, "♣", SuitLabel(Clubs))
	assert.Equal(t, "♠", SuitLabel(Spades))
	assert.Equal(t, "?", SuitLabel(Suit(9)))
}

func TestCardLabelAndEquality(t *testing.T) {
	q := NewCard(Queen, Spades)
	assert.Equal(t, "Q♠", CardLabel(q))
	assert.Equal(t, "10♥", NewCard(Ten, Hearts).String())

	assert.True(t, CardEquals(q, Card{Rank: Queen, Suit: Spades}))
	assert.False(t, CardEquals(q, NewCard(Queen, Hearts)))
	assert.False(t, CardEquals(q, NewCard(King, Spades)))
}

func TestNewStandardDeck(t *testing.T) {
	cards := NewStandardDeck()
	require.Len(t, cards, Size)

	assert.Equal(t, NewCard(Ace, Hearts), cards[0])
	assert.Equal(t, NewCard(Ace, Spades), cards[3])
	assert.Equal(t, NewCard(Two, Hearts), cards[4])
	assert.Equal(t, NewCard(King, Spades), cards[51])

	seen := make(map[Card]bool, Size)
	for i, c := range cards {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
		assert.Equal(t, i, Index(c))
	}

	// Each call returns a fresh slice.
	other := NewStandardDeck()
	other[0] = NewCard(King, Clubs)
	assert.Equal(t, NewCard(Ace, Hearts), NewStandardDeck()[0])
}

func TestIndexInvalid(t *testing.T) {
	assert.Equal(t, -1, Index(Card{}))
	assert.Equal(t, -1, Index(NewCard(Rank(14), Hearts)))
	assert.Equal(t, -1, Index(NewCard(Ace, Suit(4))))
}

func TestParseRank(t *testing.T) {
	tests := []struct {
		input   string
		want    Rank
		wantErr bool
	}{
		{input: "A", want: Ace},
		{input: "a", want: Ace},
		{input: "1", want: Ace},
		{input: "7", want: Seven},
		{input: " 10 ", want: Ten},
		{input: "t", want: Ten},
		{input: "J", want: Jack},
		{input: "q", want: Queen},
		{input: "K", want: King},
		{input: "13", want: King},
		{input: "0", wantErr: true},
		{input: "14", wantErr: true},
		{input: "X", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRank(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCard(t *testing.T) {
	tests := []struct {
		input   string
		want    Card
		wantErr bool
	}{
		{input: "Q♠", want: NewCard(Queen, Spades)},
		{input: "10♥", want: NewCard(Ten, Hearts)},
		{input: "A♦", want: NewCard(Ace, Diamonds)},
		{input: "7c", want: NewCard(Seven, Clubs)},
		{input: "Th", want: NewCard(Ten, Hearts)},
		{input: "kS", want: NewCard(King, Spades)},
		{input: "♠", wantErr: true},
		{input: "Q", wantErr: true},
		{input: "Qx", wantErr: true},
		{input: "11♣", want: NewCard(Jack, Clubs)},
		{input: "14♣", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCard(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCardRoundTripsLabels(t *testing.T) {
	for _, c := range NewStandardDeck() {
		got, err := ParseCard(CardLabel(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestParseCards(t *testing.T) {
	got, err := ParseCards(" 7h Q♥\t6s  3♣ J♠ ")
	require.NoError(t, err)
	assert.Equal(t, []Card{
		NewCard(Seven, Hearts),
		NewCard(Queen, Hearts),
		NewCard(Six, Spades),
		NewCard(Three, Clubs),
		NewCard(Jack, Spades),
	}, got)

	empty, err := ParseCards("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseCards("7h Zz")
	assert.ErrorContains(t, err, `"Zz"`)
}

func TestMustParseCardsPanics(t *testing.T) {
	assert.Equal(t, []Card{{Rank: Ace, Suit: Spades}}, MustParseCards("A♠"))
	assert.Panics(t, func() { MustParseCards("invalid") })
}
