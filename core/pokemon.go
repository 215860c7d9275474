package core

import (
	"context"
	"strings"
)

// Pokemon is the only entity of the service. No and Name are unique in the
// collection, and Name is always stored in lower case.
type Pokemon struct {
	ID   string `json:"id"`
	No   int    `json:"no"`
	Name string `json:"name"`
}

type CreatePokemon struct {
	No   int    `json:"no"`
	Name string `json:"name"`
}

// PokemonPatch is a partial update: nil fields are left untouched.
type PokemonPatch struct {
	No   *int    `json:"no,omitempty"`
	Name *string `json:"name,omitempty"`
}

func (p PokemonPatch) IsEmpty() bool {
	return p.No == nil && p.Name == nil
}

// Fields returns the fields of the patch that are set, keyed by their
// document name.
func (p PokemonPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.No != nil {
		fields[string(FieldNo)] = *p.No
	}
	if p.Name != nil {
		fields[string(FieldName)] = *p.Name
	}
	return fields
}

// Apply returns a copy of the pokemon with the patch fields overlaid.
func (p PokemonPatch) Apply(pokemon Pokemon) Pokemon {
	if p.No != nil {
		pokemon.No = *p.No
	}
	if p.Name != nil {
		pokemon.Name = *p.Name
	}
	return pokemon
}

// Field is a field of a pokemon document that can be used for lookups.
type Field string

const (
	FieldNo   Field = "no"
	FieldName Field = "name"
)

// Store is the document store used by the Service. Each driver enforces the
// uniqueness of no and name with its own indexes.
type Store interface {
	Ping(ctx context.Context) error
	// Insert assigns an identifier to the new document.
	Insert(ctx context.Context, input CreatePokemon) (*Pokemon, error)
	FindOneBy(ctx context.Context, field Field, value any) (*Pokemon, error)
	FindByID(ctx context.Context, id string) (*Pokemon, error)
	FindAll(ctx context.Context) ([]Pokemon, error)
	UpdateByID(ctx context.Context, id string, patch PokemonPatch) error
	DeleteByID(ctx context.Context, id string) (int64, error)
	IsValidID(id string) bool
}

func normalizeName(name string) string {
	return strings.ToLower(name)
}
