package gameid

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	id := Generate()
	assert.Len(t, id, Length)
	require.NoError(t, Validate(id))

	u, err := Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), u.Version())
	assert.Equal(t, uuid.RFC4122, u.Variant())
}

func TestGenerateDeterministic(t *testing.T) {
	mClock := quartz.NewMock(t)
	mClock.Set(time.UnixMilli(0x0123456789ab))

	random := bytes.Repeat([]byte{0xff}, 10)
	g := NewGenerator(mClock, bytes.NewReader(random))
	u := g.NewUUID()

	assert.Equal(t, "01234567-89ab-7fff-bfff-ffffffffffff", u.String())

	// Exhausted randomness is a programming error.
	assert.Panics(t, func() { g.NewUUID() })
}

func TestGenerateTimeSorted(t *testing.T) {
	mClock := quartz.NewMock(t)
	mClock.Set(time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC))
	g := NewGenerator(mClock, nil)

	var ids []string
	for range 10 {
		ids = append(ids, g.Generate())
		mClock.Advance(time.Millisecond)
	}
	for i := 1; i < len(ids); i++ {
		assert.Negative(t, strings.Compare(ids[i-1], ids[i]), "%s >= %s", ids[i-1], ids[i])
	}
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := Generate()
		assert.False(t, seen[id], "duplicate ID generated: %s", id)
		seen[id] = true
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cases := []uuid.UUID{
		{},
		uuid.Max,
		uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8057"),
	}
	for _, u := range cases {
		s := Encode(u)
		require.NoError(t, Validate(s), s)
		back, err := Parse(s)
		require.NoError(t, err)
		assert.Equal(t, u, back)
	}

	assert.Equal(t, "00000000000000000000000000", Encode(uuid.Nil))
	assert.Equal(t, "7zzzzzzzzzzzzzzzzzzzzzzzzz", Encode(uuid.Max))
	// Published TypeID reference value.
	assert.Equal(t, "01h455vb4pex5vsknk084sn02q", Encode(uuid.MustParse("01890a5d-ac96-774b-bcce-b302099a8057")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr string
	}{
		{"valid", "01h455vb4pex5vsknk084sn02q", ""},
		{"too short", "01h455", "exactly 26"},
		{"too long", "01h455vb4pex5vsknk084sn02qq", "exactly 26"},
		{"overflow", "81h455vb4pex5vsknk084sn02q", "first character"},
		{"bad char", "01h455vb4pex5vsknk084sn0iq", "invalid character i"},
		{"upper case", "01H455VB4PEX5VSKNK084SN02Q", "invalid character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
