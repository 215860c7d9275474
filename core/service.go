package core

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// Service exposes the CRUD operations on the pokemons. It has no state of
// its own: the uniqueness of no and name is left to the store.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) Create(ctx context.Context, input CreatePokemon) (*Pokemon, error) {
	input.Name = normalizeName(input.Name)
	pokemon, err := s.store.Insert(ctx, input)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "Cannot create pokemon",
			logAttrs(ctx, slog.String("error", err.Error()))...)
		return nil, s.classify(ctx, err)
	}
	return pokemon, nil
}

func (s *Service) FindAll(ctx context.Context) ([]Pokemon, error) {
	pokemons, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, s.classify(ctx, err)
	}
	if pokemons == nil {
		pokemons = []Pokemon{}
	}
	return pokemons, nil
}

// FindOne looks for a pokemon by its number, then by its identifier, and
// finally by its name. The first match wins.
func (s *Service) FindOne(ctx context.Context, term string) (*Pokemon, error) {
	var pokemon *Pokemon

	if f, ok := parseNumericTerm(term); ok {
		if no, integral := asInt(f); integral {
			found, err := s.lookup(ctx, func() (*Pokemon, error) {
				return s.store.FindOneBy(ctx, FieldNo, no)
			})
			if err != nil {
				return nil, err
			}
			pokemon = found
		}
	}

	if pokemon == nil && s.store.IsValidID(term) {
		found, err := s.lookup(ctx, func() (*Pokemon, error) {
			return s.store.FindByID(ctx, term)
		})
		if err != nil {
			return nil, err
		}
		pokemon = found
	}

	if pokemon == nil {
		name := normalizeName(strings.TrimSpace(term))
		found, err := s.lookup(ctx, func() (*Pokemon, error) {
			return s.store.FindOneBy(ctx, FieldName, name)
		})
		if err != nil {
			return nil, err
		}
		pokemon = found
	}

	if pokemon == nil {
		return nil, notFound(term)
	}
	return pokemon, nil
}

// lookup runs a store lookup where no match is not an error.
func (s *Service) lookup(ctx context.Context, find func() (*Pokemon, error)) (*Pokemon, error) {
	pokemon, err := find()
	if errors.Is(err, ErrNoDocument) {
		return nil, nil
	}
	if err != nil {
		return nil, s.classify(ctx, err)
	}
	return pokemon, nil
}

// Update applies the patch to the pokemon found with term. The returned
// pokemon is the previous version merged with the patch, it is not read
// again from the store.
func (s *Service) Update(ctx context.Context, term string, patch PokemonPatch) (*Pokemon, error) {
	pokemon, err := s.FindOne(ctx, term)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := normalizeName(*patch.Name)
		patch.Name = &name
	}
	if patch.IsEmpty() {
		return pokemon, nil
	}

	if err := s.store.UpdateByID(ctx, pokemon.ID, patch); err != nil {
		return nil, s.classify(ctx, err)
	}
	merged := patch.Apply(*pokemon)
	return &merged, nil
}

// Remove deletes the pokemon with the given identifier. Unlike FindOne and
// Update, it does not accept a number or a name.
func (s *Service) Remove(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return s.classify(ctx, err)
	}
	if deleted == 0 {
		return invalidRequest(id)
	}
	return nil
}

// classify turns an error from the store into one of the error kinds of
// the service. Unexpected errors are logged, and hidden from the caller.
func (s *Service) classify(ctx context.Context, err error) error {
	var dup *DuplicateKeyError
	if errors.As(err, &dup) {
		return duplicateEntity(dup)
	}
	s.logger.LogAttrs(ctx, slog.LevelError, "Unexpected store error",
		logAttrs(ctx, slog.String("error", err.Error()))...)
	return internalFailure()
}

// parseNumericTerm reports whether the whole term is a finite number.
// Surrounding spaces are ignored. Integers written with a 0x, 0o or 0b
// prefix are numbers too, but not with a sign or underscores.
func parseNumericTerm(term string) (float64, bool) {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return 0, false
	}
	if hasBasePrefix(trimmed) {
		if strings.ContainsRune(trimmed, '_') {
			return 0, false
		}
		n, err := strconv.ParseUint(trimmed, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func hasBasePrefix(s string) bool {
	if len(s) < 2 || s[0] != '0' {
		return false
	}
	switch s[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return true
	}
	return false
}

// asInt converts f when it is integral and inside the int64 range. 1<<63
// is the first float64 above math.MaxInt64.
func asInt(f float64) (int, bool) {
	if f != math.Trunc(f) || f >= 1<<63 || f < -(1<<63) {
		return 0, false
	}
	return int(f), true
}
