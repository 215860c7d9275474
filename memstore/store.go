// Package memstore is an in-memory implementation of core.Store. It keeps
// the documents in insertion order and enforces the same unique indexes as
// the database drivers.
package memstore

import (
	"context"
	"sync"

	"github.com/cozy-labs/cozy-pokedex/core"
	"github.com/gofrs/uuid/v5"
)

type Store struct {
	mu   sync.RWMutex
	docs map[string]core.Pokemon
	ids  []string
}

func New() *Store {
	return &Store{docs: map[string]core.Pokemon{}}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) IsValidID(id string) bool {
	_, err := uuid.FromString(id)
	return err == nil
}

func (s *Store) Insert(ctx context.Context, input core.CreatePokemon) (*core.Pokemon, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	pokemon := core.Pokemon{ID: id.String(), No: input.No, Name: input.Name}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUnique("", pokemon); err != nil {
		return nil, err
	}
	s.docs[pokemon.ID] = pokemon
	s.ids = append(s.ids, pokemon.ID)
	return &pokemon, nil
}

// checkUnique must be called with the lock held. The document with the
// except identifier is ignored, as it is the one being updated.
func (s *Store) checkUnique(except string, pokemon core.Pokemon) error {
	for id, doc := range s.docs {
		if id == except {
			continue
		}
		if doc.No == pokemon.No {
			return &core.DuplicateKeyError{KeyValue: map[string]any{"no": pokemon.No}}
		}
		if doc.Name == pokemon.Name {
			return &core.DuplicateKeyError{KeyValue: map[string]any{"name": pokemon.Name}}
		}
	}
	return nil
}

func (s *Store) FindOneBy(ctx context.Context, field core.Field, value any) (*core.Pokemon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.ids {
		doc := s.docs[id]
		switch field {
		case core.FieldNo:
			if no, ok := value.(int); ok && doc.No == no {
				return &doc, nil
			}
		case core.FieldName:
			if name, ok := value.(string); ok && doc.Name == name {
				return &doc, nil
			}
		}
	}
	return nil, core.ErrNoDocument
}

func (s *Store) FindByID(ctx context.Context, id string) (*core.Pokemon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, core.ErrNoDocument
	}
	return &doc, nil
}

func (s *Store) FindAll(ctx context.Context) ([]core.Pokemon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pokemons := make([]core.Pokemon, 0, len(s.ids))
	for _, id := range s.ids {
		pokemons = append(pokemons, s.docs[id])
	}
	return pokemons, nil
}

func (s *Store) UpdateByID(ctx context.Context, id string, patch core.PokemonPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil
	}
	updated := patch.Apply(doc)
	if err := s.checkUnique(id, updated); err != nil {
		return err
	}
	s.docs[id] = updated
	return nil
}

func (s *Store) DeleteByID(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return 0, nil
	}
	delete(s.docs, id)
	for i, other := range s.ids {
		if other == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return 1, nil
}
