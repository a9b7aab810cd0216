package leaderboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeImplementations(t *testing.T) map[string]Store {
	t.Helper()
	mClock := quartz.NewMock(t)
	mClock.Set(epoch)

	sqlite, err := NewSQLiteStore(context.Background(), ":memory:", mClock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(filepath.Join(t.TempDir(), "leaderboard")),
		"sqlite": sqlite,
	}
}

func TestStoreGetSet(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, ProfilesKey)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, ProfilesKey, []byte(`{"version":1}`)))
			got, err := store.Get(ctx, ProfilesKey)
			require.NoError(t, err)
			assert.Equal(t, `{"version":1}`, string(got))

			require.NoError(t, store.Set(ctx, ProfilesKey, []byte(`{"version":2}`)))
			got, err = store.Get(ctx, ProfilesKey)
			require.NoError(t, err)
			assert.Equal(t, `{"version":2}`, string(got))

			// Keys are independent.
			_, err = store.Get(ctx, LifetimeKey)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoresBackRecorder(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			rec, _ := newTestRecorder(t, store)
			runRecorder(t, rec)
			ctx := context.Background()

			require.NoError(t, rec.Apply(ctx, Update{
				Profiles: []NamedDelta{{Name: "Alice", Delta: Delta{GamesStarted: 1, DrinksTaken: 4}}},
				Lifetime: Delta{GamesStarted: 1, DrinksTaken: 4},
			}))

			profiles, err := rec.Profiles(ctx)
			require.NoError(t, err)
			require.Len(t, profiles, 1)
			assert.Equal(t, "Alice", profiles[0].Name)
			assert.Equal(t, 4, profiles[0].Stats.DrinksTaken)

			life, err := LoadLifetime(ctx, store, 0)
			require.NoError(t, err)
			assert.Equal(t, 1, life.GamesStarted)
		})
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestFileStorePath(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	assert.Equal(t, filepath.Join(dir, "truck-the-dealer_leaderboard_profiles_v1.json"), store.Path(ProfilesKey))
	assert.Equal(t, filepath.Join(dir, "a_b_c.json"), store.Path(`a/b\c`))

	require.NoError(t, store.Set(context.Background(), ProfilesKey, []byte("{}")))
	_, err := os.Stat(store.Path(ProfilesKey))
	require.NoError(t, err)
}

func TestFileStoreHonoursContext(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Set(ctx, "k", []byte("v")), context.Canceled)
	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSQLiteStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, LifetimeKey, []byte(`{"version":1}`)))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(ctx, path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, LifetimeKey)
	require.NoError(t, err)
	assert.Equal(t, `{"version":1}`, string(got))
}
