// Package gameid generates sortable identifiers for played games. IDs are
// UUIDv7 values rendered in the 26-character TypeID base32 form, so they sort
// by creation time and are safe to use in log lines and file names.
package gameid

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the length of an encoded ID.
const Length = 26

// Generator creates game IDs from a clock and a source of random bytes.
type Generator struct {
	clock quartz.Clock
	rand  io.Reader
}

// NewGenerator returns a generator. Nil arguments select the real clock and
// crypto/rand.
func NewGenerator(clock quartz.Clock, random io.Reader) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if random == nil {
		random = rand.Reader
	}
	return &Generator{clock: clock, rand: random}
}

// Generate creates a new game ID with the real clock and crypto/rand.
func Generate() string {
	return NewGenerator(nil, nil).Generate()
}

// Generate creates a new game ID.
func (g *Generator) Generate() string {
	return Encode(g.NewUUID())
}

// NewUUID returns the UUIDv7 behind the next ID.
func (g *Generator) NewUUID() uuid.UUID {
	var id uuid.UUID

	// 48-bit big-endian millisecond timestamp
	now := g.clock.Now().UnixMilli()
	for i := range 6 {
		id[i] = byte(now >> (40 - 8*i))
	}

	if _, err := io.ReadFull(g.rand, id[6:]); err != nil {
		panic("failed to generate random bytes: " + err.Error())
	}

	id[6] = (id[6] & 0x0f) | 0x70 // version 7
	id[8] = (id[8] & 0x3f) | 0x80 // variant 10
	return id
}

// Encode renders id as 26 base32 characters: two zero pad bits followed by
// the 128 id bits, most significant first.
func Encode(id uuid.UUID) string {
	var out [Length]byte
	for i := range out {
		var v byte
		for b := range 5 {
			v <<= 1
			pos := i*5 + b - 2
			if pos >= 0 && id[pos/8]&(0x80>>(pos%8)) != 0 {
				v |= 1
			}
		}
		out[i] = alphabet[v]
	}
	return string(out[:])
}

// Parse decodes an encoded game ID.
func Parse(s string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := Validate(s); err != nil {
		return id, err
	}
	for i := range Length {
		v := strings.IndexByte(alphabet, s[i])
		for b := range 5 {
			pos := i*5 + b - 2
			if pos < 0 || v&(0x10>>b) == 0 {
				continue
			}
			id[pos/8] |= 0x80 >> (pos % 8)
		}
	}
	return id, nil
}

// Validate checks if a game ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}

	// The pad bits must be zero
	if id[0] > '7' {
		return fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}

	for i := range len(id) {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}
