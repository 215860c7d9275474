// Package mongostore stores the pokemons in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cozy-labs/cozy-pokedex/core"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	noIndexName   = "pokemon_no_unique"
	nameIndexName = "pokemon_name_unique"
)

type document struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	No   int                `bson:"no"`
	Name string             `bson:"name"`
}

func (d document) toPokemon() core.Pokemon {
	return core.Pokemon{ID: d.ID.Hex(), No: d.No, Name: d.Name}
}

type Store struct {
	coll *mongo.Collection
}

// Connect opens a client to the MongoDB server and pings it.
func Connect(ctx context.Context, url string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

func New(db *mongo.Database, collection string) *Store {
	return &Store{coll: db.Collection(collection)}
}

// EnsureSchema declares the unique indexes on no and name. Creating an
// index that already exists with the same options is a no-op.
func (s *Store) EnsureSchema(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "no", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(noIndexName),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(nameIndexName),
		},
	}
	_, err := s.coll.Indexes().CreateMany(ctx, models)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

func (s *Store) IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

func (s *Store) Insert(ctx context.Context, input core.CreatePokemon) (*core.Pokemon, error) {
	doc := document{No: input.No, Name: input.Name}
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, wrapWriteError(err, bson.M{"no": doc.No, "name": doc.Name})
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id %v", res.InsertedID)
	}
	doc.ID = id
	pokemon := doc.toPokemon()
	return &pokemon, nil
}

func (s *Store) FindOneBy(ctx context.Context, field core.Field, value any) (*core.Pokemon, error) {
	return s.findOne(ctx, bson.M{string(field): value})
}

func (s *Store) FindByID(ctx context.Context, id string) (*core.Pokemon, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.ErrNoDocument
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*core.Pokemon, error) {
	var doc document
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("cannot get pokemon: %w", err)
	}
	pokemon := doc.toPokemon()
	return &pokemon, nil
}

func (s *Store) FindAll(ctx context.Context) ([]core.Pokemon, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("cannot get pokemons: %w", err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cannot decode pokemons: %w", err)
	}
	pokemons := make([]core.Pokemon, 0, len(docs))
	for _, doc := range docs {
		pokemons = append(pokemons, doc.toPokemon())
	}
	return pokemons, nil
}

// UpdateByID does nothing if there is no pokemon with this identifier.
func (s *Store) UpdateByID(ctx context.Context, id string, patch core.PokemonPatch) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	set := bson.M{}
	for k, v := range patch.Fields() {
		set[k] = v
	}
	if _, err := s.coll.UpdateByID(ctx, oid, bson.M{"$set": set}); err != nil {
		return wrapWriteError(err, set)
	}
	return nil
}

// DeleteByID deletes nothing when id is not a valid ObjectID.
func (s *Store) DeleteByID(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("cannot delete pokemon: %w", err)
	}
	return res.DeletedCount, nil
}

// wrapWriteError recognizes the E11000 errors. The server message names
// the index that was violated, which tells which field collided.
func wrapWriteError(err error, written bson.M) error {
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("cannot write pokemon: %w", err)
	}
	kv := map[string]any{}
	msg := err.Error()
	switch {
	case strings.Contains(msg, noIndexName):
		kv["no"] = written["no"]
	case strings.Contains(msg, nameIndexName):
		kv["name"] = written["name"]
	default:
		for k, v := range written {
			kv[k] = v
		}
	}
	return &core.DuplicateKeyError{KeyValue: kv, Cause: err}
}
