package mongostore

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/cozy-labs/cozy-pokedex/core"
	"github.com/cozy-labs/cozy-pokedex/core/coretest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func prepareMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := mongodb.RunContainer(ctx, testcontainers.WithImage("docker.io/mongo:7"))
	require.NoError(t, err, "Cannot run the mongodb container")
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx), "failed to terminate container")
	})

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err, "Cannot get connection string for MongoDB container")
	client, err := Connect(ctx, url)
	require.NoError(t, err, "Cannot connect to MongoDB")
	t.Cleanup(func() {
		_ = client.Disconnect(ctx)
	})

	return client.Database("pokedex")
}

func TestStore(t *testing.T) {
	t.Parallel()
	db := prepareMongo(t)

	var counter atomic.Int32
	newStore := func(t *testing.T) core.Store {
		collection := fmt.Sprintf("pokemons_%d", counter.Add(1))
		store := New(db, collection)
		require.NoError(t, store.EnsureSchema(context.Background()))
		require.NoError(t, store.EnsureSchema(context.Background()))
		return store
	}

	coretest.RunStoreSuite(t, newStore)

	t.Run("Index names", func(t *testing.T) {
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

	t.Run("Invalid ids", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		assert.False(t, store.IsValidID("pikachu"))
		assert.True(t, store.IsValidID(primitive.NewObjectID().Hex()))

		deleted, err := store.DeleteByID(ctx, "pikachu")
		require.NoError(t, err)
		assert.EqualValues(t, 0, deleted)
		deleted, err = store.DeleteByID(ctx, primitive.NewObjectID().Hex())
		require.NoError(t, err)
		assert.EqualValues(t, 0, deleted)
	})
}
