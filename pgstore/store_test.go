package pgstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cozy-labs/cozy-pokedex/core"
	"github.com/cozy-labs/cozy-pokedex/core/coretest"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func preparePG(t *testing.T) *postgres.PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	image := testcontainers.WithImage("docker.io/postgres:16-alpine")
	ready := testcontainers.WithWaitStrategy(
		wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(10 * time.Second))
	container, err := postgres.RunContainer(ctx, image, ready)
	require.NoError(t, err, "Cannot run the postgres container")
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx), "failed to terminate container")
	})

	return container
}

func connectToPG(t *testing.T, container *postgres.PostgresContainer, logger *slog.Logger) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()
	pgURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Cannot get connection string for PostgreSQL container")
	pg, err := NewPool(ctx, pgURL, logger)
	require.NoError(t, err, "Cannot create a pgxpool")
	t.Cleanup(pg.Close)

	return pg
}

func TestIsValidTableName(t *testing.T) {
	for _, name := range []string{"pokemons", "pokedex_2", "p"} {
		assert.True(t, isValidTableName(name), name)
	}
	for _, name := range []string{"", "Pokemons", "_pokemons", "2pokemons", "poke-mons", "pokemons; DROP TABLE x"} {
		assert.False(t, isValidTableName(name), name)
	}
	_, err := New(nil, "bad name")
	assert.ErrorIs(t, err, ErrIllegalTableName)
}

func TestStore(t *testing.T) {
	t.Parallel()
	container := preparePG(t)
	logger := coretest.NewLogger(t)
	pg := connectToPG(t, container, logger)

	// Each store gets its own table, so that they start empty.
	var counter atomic.Int32
	newStore := func(t *testing.T) core.Store {
		ctx := context.Background()
		table := fmt.Sprintf("pokemons_%d", counter.Add(1))
		store, err := New(pg, table)
		require.NoError(t, err)
		require.NoError(t, store.EnsureSchema(ctx))
		// Twice, as the server does it on each start
		require.NoError(t, store.EnsureSchema(ctx))
		return store
	}

	coretest.RunStoreSuite(t, newStore)

	t.Run("Constraint names", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		_, err := store.Insert(ctx, core.CreatePokemon{No: 4, Name: "charmander"})
		require.NoError(t, err)
		_, err = store.Insert(ctx, core.CreatePokemon{No: 4, Name: "charmeleon"})
		var dup *core.DuplicateKeyError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, map[string]any{"no": 4}, dup.KeyValue)

		_, err = store.Insert(ctx, core.CreatePokemon{No: 5, Name: "charmander"})
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, map[string]any{"name": "charmander"}, dup.KeyValue)
	})

	t.Run("Update of a deleted pokemon", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		p, err := store.Insert(ctx, core.CreatePokemon{No: 6, Name: "charizard"})
		require.NoError(t, err)
		deleted, err := store.DeleteByID(ctx, p.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, deleted)

		no := 7
		assert.NoError(t, store.UpdateByID(ctx, p.ID, core.PokemonPatch{No: &no}))
	})
}
