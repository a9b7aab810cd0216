package leaderboard

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/truckdealer/internal/game"
)

var epoch = time.Date(2026, 10, 17, 21, 0, 0, 0, time.UTC)

func newTestRecorder(t *testing.T, store Store) (*Recorder, *quartz.Mock) {
	t.Helper()
	mClock := quartz.NewMock(t)
	mClock.Set(epoch)
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	rec := NewRecorder(store, WithRecorderClock(mClock), WithRecorderLogger(logger))
	return rec, mClock
}

// runRecorder starts rec and stops it when the test ends.
func runRecorder(t *testing.T, rec *Recorder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- rec.Run(ctx) }()
	t.Cleanup(func() {
		require.NoError(t, rec.Close())
		cancel()
		require.NoError(t, <-errc)
	})
}

func TestRecorderApplyAndList(t *testing.T) {
	store := NewMemoryStore()
	rec, _ := newTestRecorder(t, store)
	runRecorder(t, rec)
	ctx := context.Background()

	require.NoError(t, rec.Apply(ctx, Update{
		Profiles: []NamedDelta{
			{Name: "Alice", Delta: Delta{GamesStarted: 1, CorrectGuesses: 3, IncorrectGuesses: 1}},
			{Name: "Bob", Delta: Delta{GamesStarted: 1, IncorrectGuesses: 2}},
		},
		Lifetime: Delta{GamesStarted: 1, CorrectGuesses: 3, IncorrectGuesses: 3},
	}))

	profiles, err := rec.Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "alice", profiles[0].Key)
	assert.Equal(t, "bob", profiles[1].Key)
	assert.Equal(t, epoch.UnixMilli(), profiles[0].CreatedAt)

	life, err := rec.Lifetime(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{GamesStarted: 1, CorrectGuesses: 3, IncorrectGuesses: 3}, life.Stats)

	assert.Equal(t, []string{LifetimeKey, ProfilesKey}, store.Keys())
}

func TestRecorderObservesSession(t *testing.T) {
	store := NewMemoryStore()
	rec, _ := newTestRecorder(t, store)
	runRecorder(t, rec)
	ctx := context.Background()

	sess := game.NewSession(game.NewReducer(), nil, rec)
	seed, dealer := int64(1), 0
	_, err := sess.Dispatch(game.StartGame{Players: players(), Seed: &seed, DealerIndex: &dealer})
	require.NoError(t, err)

	// Three rounds: correct, wrong, wrong.
	for _, correct := range []bool{true, false, false} {
		res, err := sess.Dispatch(game.ConfirmDealerPeek{})
		require.NoError(t, err)
		rank := res.State.PeekedCard.Rank
		if !correct {
			rank = rank%13 + 1
		}
		res, err = sess.Dispatch(game.SubmitGuess{Guess: rank})
		require.NoError(t, err)
		for res.CurrentPrompt != nil {
			res, err = sess.Dispatch(game.AckPrompt{})
			require.NoError(t, err)
		}
	}
	final := sess.End()
	require.NotNil(t, final)

	profiles, err := rec.Profiles(ctx)
	require.NoError(t, err)
	byKey := map[string]Stats{}
	for _, p := range profiles {
		byKey[p.Key] = p.Stats
	}

	// Bob guesses every round with two players.
	assert.Equal(t, Stats{GamesStarted: 1, GamesCompleted: 1, DrinksTaken: 1}, byKey["alice"])
	assert.Equal(t, Stats{GamesStarted: 1, GamesCompleted: 1, DrinksTaken: 2, CorrectGuesses: 1, IncorrectGuesses: 2}, byKey["bob"])

	for _, p := range final.Players {
		key, _ := NormalizeName(p.Name)
		got := byKey[key]
		want := final.Stats[p.ID]
		assert.Equal(t, want.DrinksTaken, got.DrinksTaken, p.Name)
		assert.Equal(t, want.CorrectGuesses, got.CorrectGuesses, p.Name)
		assert.Equal(t, want.IncorrectGuesses, got.IncorrectGuesses, p.Name)
	}

	// One two-player game is one game in the lifetime totals.
	life, err := rec.Lifetime(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{GamesStarted: 1, GamesCompleted: 1, DrinksTaken: 3, CorrectGuesses: 1, IncorrectGuesses: 2}, life.Stats)
}

func TestRecorderSerializesConcurrentUpdates(t *testing.T) {
	store := NewMemoryStore()
	rec, _ := newTestRecorder(t, store)
	runRecorder(t, rec)

	const writers, perWriter = 8, 50
	var wg sync.WaitGroup
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWriter {
				rec.ObserveGameEnd(&game.State{Players: players()})
			}
		}()
	}
	wg.Wait()

	profiles, err := rec.Profiles(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	for _, p := range profiles {
		assert.Equal(t, writers*perWriter, p.Stats.GamesCompleted, p.Name)
	}

	life, err := rec.Lifetime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, writers*perWriter, life.GamesCompleted)
}

func TestRecorderQueuedBeforeRunIsApplied(t *testing.T) {
	store := NewMemoryStore()
	rec, _ := newTestRecorder(t, store)

	rec.ObserveGameEnd(&game.State{Players: players()})
	rec.ObserveGameEnd(&game.State{Players: players()})

	runRecorder(t, rec)

	life, err := rec.Lifetime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, life.GamesCompleted)
}

func TestRecorderTimestamps(t *testing.T) {
	store := NewMemoryStore()
	rec, mClock := newTestRecorder(t, store)
	runRecorder(t, rec)
	ctx := context.Background()

	require.NoError(t, rec.Apply(ctx, Update{Profiles: []NamedDelta{{Name: "Alice", Delta: Delta{GamesStarted: 1}}}}))
	later := epoch.Add(time.Hour)
	mClock.Set(later)
	require.NoError(t, rec.Apply(ctx, Update{Profiles: []NamedDelta{{Name: "alice", Delta: Delta{GamesCompleted: 1}}}}))

	doc, err := LoadDocument(ctx, store, 0)
	require.NoError(t, err)
	rec1 := doc.Profiles["alice"]
	assert.Equal(t, "alice", rec1.Name)
	assert.Equal(t, epoch.UnixMilli(), rec1.CreatedAt)
	assert.Equal(t, later.UnixMilli(), rec1.UpdatedAt)
	assert.Equal(t, epoch.UnixMilli(), doc.CreatedAt)
	assert.Equal(t, later.UnixMilli(), doc.UpdatedAt)
}

func TestRecorderReset(t *testing.T) {
	store := NewMemoryStore()
	rec, _ := newTestRecorder(t, store)
	runRecorder(t, rec)
	ctx := context.Background()

	require.NoError(t, rec.Apply(ctx, Update{Profiles: []NamedDelta{{Name: "Alice", Delta: Delta{GamesStarted: 1}}}}))
	require.NoError(t, rec.Reset(ctx))

	profiles, err := rec.Profiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, profiles)

	life, err := rec.Lifetime(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, life.Stats)
}

func TestRecorderReplacesCorruptDocument(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, ProfilesKey, []byte("{broken")))

	rec, _ := newTestRecorder(t, store)
	runRecorder(t, rec)

	require.NoError(t, rec.Apply(ctx, Update{Profiles: []NamedDelta{{Name: "Alice", Delta: Delta{GamesStarted: 1}}}}))
	profiles, err := rec.Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, 1, profiles[0].Stats.GamesStarted)
}

func TestRecorderClosed(t *testing.T) {
	rec, _ := newTestRecorder(t, NewMemoryStore())
	ctx := context.Background()

	errc := make(chan error, 1)
	go func() { errc <- rec.Run(ctx) }()
	require.NoError(t, rec.Close())
	require.NoError(t, <-errc)

	assert.ErrorIs(t, rec.Apply(ctx, Update{}), ErrClosed)
	_, err := rec.Profiles(ctx)
	assert.ErrorIs(t, err, ErrClosed)

	// Fire-and-forget updates after close are dropped without panicking.
	rec.ObserveGameEnd(&game.State{Players: players()})
}

func TestRecorderContextCancelDrainsQueue(t *testing.T) {
	store := NewMemoryStore()
	rec, _ := newTestRecorder(t, store)

	for range 5 {
		rec.ObserveGameEnd(&game.State{Players: players()})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := rec.Run(ctx)
	// Either the queue was taken before the cancellation was noticed or it was
	// drained on the way out; nothing is lost in both cases.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}

	life, err := LoadLifetime(context.Background(), store, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, life.GamesCompleted)
}

func TestRecorderRunTwice(t *testing.T) {
	rec, _ := newTestRecorder(t, NewMemoryStore())
	runRecorder(t, rec)
	// Give the first Run a chance to mark itself running.
	_, err := rec.Profiles(context.Background())
	require.NoError(t, err)
	assert.Error(t, rec.Run(context.Background()))
}
