// Package leaderboard keeps aggregate per-player statistics across games on
// one device. It observes game transitions, turns them into counter deltas
// and merges them into versioned JSON documents held in a key-value Store.
package leaderboard

import (
	"cmp"
	"encoding/json"
	"slices"
	"strings"
)

// Version is the only document version this package reads and writes.
const Version = 1

// Store keys for the two documents.
const (
	ProfilesKey = "truck-the-dealer:leaderboard:profiles:v1"
	LifetimeKey = "truck-the-dealer:leaderboard:v1"
)

// Stats are aggregate counters. They never go negative.
type Stats struct {
	GamesStarted     int `json:"gamesStarted"`
	GamesCompleted   int `json:"gamesCompleted"`
	DrinksTaken      int `json:"drinksTaken"`
	CorrectGuesses   int `json:"correctGuesses"`
	IncorrectGuesses int `json:"incorrectGuesses"`
}

// Delta is a signed change to Stats.
type Delta struct {
	GamesStarted     int
	GamesCompleted   int
	DrinksTaken      int
	CorrectGuesses   int
	IncorrectGuesses int
}

// IsZero reports whether d changes nothing.
func (d Delta) IsZero() bool {
	return d == Delta{}
}

// Apply returns s moved by d, clamping every counter at zero.
func (s Stats) Apply(d Delta) Stats {
	return Stats{
		GamesStarted:     addNonNegative(s.GamesStarted, d.GamesStarted),
		GamesCompleted:   addNonNegative(s.GamesCompleted, d.GamesCompleted),
		DrinksTaken:      addNonNegative(s.DrinksTaken, d.DrinksTaken),
		CorrectGuesses:   addNonNegative(s.CorrectGuesses, d.CorrectGuesses),
		IncorrectGuesses: addNonNegative(s.IncorrectGuesses, d.IncorrectGuesses),
	}
}

func addNonNegative(current, delta int) int {
	return max(current+delta, 0)
}

// CorrectGuessPercent returns correct/(correct+incorrect) as a percentage,
// or 0 when no guesses were made.
func CorrectGuessPercent(s Stats) float64 {
	total := s.CorrectGuesses + s.IncorrectGuesses
	if total == 0 {
		return 0
	}
	return float64(s.CorrectGuesses) / float64(total) * 100
}

// NamedDelta is a delta for the profile identified by a display name.
type NamedDelta struct {
	Name  string
	Delta Delta
}

// DisplayName trims a name and collapses internal whitespace runs to one
// space.
func DisplayName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeName returns the profile key for a display name: trimmed,
// whitespace-collapsed and case-folded. ok is false for blank names.
func NormalizeName(name string) (key string, ok bool) {
	display := DisplayName(name)
	if display == "" {
		return "", false
	}
	return strings.ToLower(display), true
}

// ProfileRecord is one stored profile.
type ProfileRecord struct {
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	Stats     Stats  `json:"stats"`
}

// Document is the persisted profile leaderboard. Timestamps are Unix
// milliseconds.
type Document struct {
	Version   int                      `json:"version"`
	CreatedAt int64                    `json:"createdAt"`
	UpdatedAt int64                    `json:"updatedAt"`
	Profiles  map[string]ProfileRecord `json:"profiles"`
}

// NewDocument returns an empty document stamped with now.
func NewDocument(now int64) *Document {
	return &Document{
		Version:   Version,
		CreatedAt: now,
		UpdatedAt: now,
		Profiles:  make(map[string]ProfileRecord),
	}
}

// decodeDocument parses raw, falling back to an empty document when it is
// unreadable or of another version.
func decodeDocument(raw []byte, now int64) *Document {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil || doc.Version != Version {
		return NewDocument(now)
	}
	if doc.CreatedAt == 0 {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt == 0 {
		doc.UpdatedAt = now
	}
	if doc.Profiles == nil {
		doc.Profiles = make(map[string]ProfileRecord)
	}
	return &doc
}

// Apply merges deltas into the document. Blank names are skipped and each
// touched profile takes the most recent spelling of its name.
func (d *Document) Apply(deltas []NamedDelta, now int64) {
	for _, nd := range deltas {
		key, ok := NormalizeName(nd.Name)
		if !ok {
			continue
		}
		rec, exists := d.Profiles[key]
		if !exists {
			rec = ProfileRecord{CreatedAt: now}
		}
		rec.Name = DisplayName(nd.Name)
		rec.Stats = rec.Stats.Apply(nd.Delta)
		rec.UpdatedAt = now
		d.Profiles[key] = rec
	}
	d.UpdatedAt = now
}

// Profile is a leaderboard row.
type Profile struct {
	Key       string
	Name      string
	CreatedAt int64
	UpdatedAt int64
	Stats     Stats
}

// List returns every profile ordered by correct-guess percentage, then games
// started, then most recently updated. Remaining ties sort by key.
func (d *Document) List() []Profile {
	list := make([]Profile, 0, len(d.Profiles))
	for key, rec := range d.Profiles {
		list = append(list, Profile{
			Key:       key,
			Name:      rec.Name,
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
			Stats:     rec.Stats,
		})
	}
	slices.SortFunc(list, func(a, b Profile) int {
		return cmp.Or(
			cmp.Compare(CorrectGuessPercent(b.Stats), CorrectGuessPercent(a.Stats)),
			cmp.Compare(b.Stats.GamesStarted, a.Stats.GamesStarted),
			cmp.Compare(b.UpdatedAt, a.UpdatedAt),
			cmp.Compare(a.Key, b.Key),
		)
	})
	return list
}

// Lifetime is the persisted device-wide totals document.
type Lifetime struct {
	Version   int   `json:"version"`
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
	Stats
}

// NewLifetime returns zeroed totals stamped with now.
func NewLifetime(now int64) *Lifetime {
	return &Lifetime{Version: Version, CreatedAt: now, UpdatedAt: now}
}

func decodeLifetime(raw []byte, now int64) *Lifetime {
	var l Lifetime
	if err := json.Unmarshal(raw, &l); err != nil || l.Version != Version {
		return NewLifetime(now)
	}
	if l.CreatedAt == 0 {
		l.CreatedAt = now
	}
	if l.UpdatedAt == 0 {
		l.UpdatedAt = now
	}
	return &l
}

// Apply adds d to the totals.
func (l *Lifetime) Apply(d Delta, now int64) {
	l.Stats = l.Stats.Apply(d)
	l.UpdatedAt = now
}
