// Package coretest checks that a core.Store behaves as the service expects.
// The drivers run it against a real database in their tests.
package coretest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/cozy-labs/cozy-pokedex/core"
	"github.com/lmittmann/tint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewLogger returns a logger for tests, printing on stderr.
func NewLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.TimeOnly,
	}))
}

// RunStoreSuite runs the checks on stores built by newStore. Each call to
// newStore must return an empty store.
func RunStoreSuite(t *testing.T, newStore func(t *testing.T) core.Store) {
	t.Run("Scenario", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		svc := core.NewService(store, NewLogger(t))
		require.NoError(t, svc.Ping(ctx))

		created, err := svc.Create(ctx, core.CreatePokemon{No: 1, Name: "Bulbasaur"})
		require.NoError(t, err)
		assert.True(t, store.IsValidID(created.ID))
		assert.Equal(t, &core.Pokemon{ID: created.ID, No: 1, Name: "bulbasaur"}, created)

		for _, term := range []string{"1", "BULBASAUR ", created.ID} {
			found, err := svc.FindOne(ctx, term)
			require.NoError(t, err, "term %q", term)
			assert.Equal(t, created, found, "term %q", term)
		}

		name := "Ivysaur"
		updated, err := svc.Update(ctx, "1", core.PokemonPatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, &core.Pokemon{ID: created.ID, No: 1, Name: "ivysaur"}, updated)

		found, err := svc.FindOne(ctx, "Ivysaur")
		require.NoError(t, err)
		assert.Equal(t, updated, found)

		require.NoError(t, svc.Remove(ctx, created.ID))
		_, err = svc.FindOne(ctx, "1")
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.ErrorIs(t, svc.Remove(ctx, created.ID), core.ErrInvalidRequest)
	})

	t.Run("Duplicates", func(t *testing.T) {
		ctx := context.Background()
		svc := core.NewService(newStore(t), NewLogger(t))

		_, err := svc.Create(ctx, core.CreatePokemon{No: 25, Name: "Pikachu"})
		require.NoError(t, err)
		raichu, err := svc.Create(ctx, core.CreatePokemon{No: 26, Name: "Raichu"})
		require.NoError(t, err)

		var svcErr *core.Error
		_, err = svc.Create(ctx, core.CreatePokemon{No: 25, Name: "Pichu"})
		require.True(t, errors.As(err, &svcErr), "got %v", err)
		assert.ErrorIs(t, err, core.ErrDuplicateEntity)
		assert.EqualValues(t, 25, svcErr.KeyValue["no"])

		_, err = svc.Create(ctx, core.CreatePokemon{No: 172, Name: "pikachu"})
		require.True(t, errors.As(err, &svcErr), "got %v", err)
		assert.ErrorIs(t, err, core.ErrDuplicateEntity)
		assert.Equal(t, "pikachu", svcErr.KeyValue["name"])

		no := 25
		_, err = svc.Update(ctx, raichu.ID, core.PokemonPatch{No: &no})
		assert.ErrorIs(t, err, core.ErrDuplicateEntity)
		name := "PIKACHU"
		_, err = svc.Update(ctx, "raichu", core.PokemonPatch{Name: &name})
		assert.ErrorIs(t, err, core.ErrDuplicateEntity)

		all, err := svc.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("ConcurrentCreates", func(t *testing.T) {
		ctx := context.Background()
		svc := core.NewService(newStore(t), NewLogger(t))

		// Only the unique index can settle the race on the same number
		const n = 20
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Create(ctx, core.CreatePokemon{No: 25, Name: fmt.Sprintf("pikachu-%d", i)})
			}(i)
		}
		wg.Wait()

		created := 0
		for _, err := range errs {
			if err == nil {
				created++
				continue
			}
			assert.ErrorIs(t, err, core.ErrDuplicateEntity)
		}
		assert.Equal(t, 1, created)

		all, err := svc.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("Lookups", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		svc := core.NewService(store, NewLogger(t))

		all, err := svc.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		mew, err := svc.Create(ctx, core.CreatePokemon{No: 151, Name: "Mew"})
		require.NoError(t, err)
		odd, err := svc.Create(ctx, core.CreatePokemon{No: 201, Name: "404"})
		require.NoError(t, err)

		found, err := svc.FindOne(ctx, "404")
		require.NoError(t, err)
		assert.Equal(t, odd, found)

		_, err = store.FindByID(ctx, "not an id")
		assert.ErrorIs(t, err, core.ErrNoDocument)
		_, err = store.FindOneBy(ctx, core.FieldNo, 999)
		assert.ErrorIs(t, err, core.ErrNoDocument)

		for _, term := range []string{"missingno", "999"} {
			_, err = svc.FindOne(ctx, term)
			assert.ErrorIs(t, err, core.ErrNotFound)
			assert.Contains(t, err.Error(), term)
		}

		no := 152
		updated, err := svc.Update(ctx, mew.ID, core.PokemonPatch{No: &no})
		require.NoError(t, err)
		assert.Equal(t, &core.Pokemon{ID: mew.ID, No: 152, Name: "mew"}, updated)
		found, err = svc.FindOne(ctx, "152")
		require.NoError(t, err)
		assert.Equal(t, updated, found)

		all, err = svc.FindAll(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []core.Pokemon{*updated, *odd}, all)

		assert.ErrorIs(t, svc.Remove(ctx, "not an id"), core.ErrInvalidRequest)
	})
}
