// Package pgstore stores the pokemons as JSONB documents in a PostgreSQL
// table, with unique indexes on the number and the name.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cozy-labs/cozy-pokedex/core"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrIllegalTableName = errors.New("illegal_table_name")

type Store struct {
	pg    *pgxpool.Pool
	table string
}

// New returns a store for the given table. The table is not created, see
// EnsureSchema.
func New(pg *pgxpool.Pool, table string) (*Store, error) {
	if !isValidTableName(table) {
		return nil, ErrIllegalTableName
	}
	return &Store{pg: pg, table: table}, nil
}

func invalidCharForTableName(r rune) bool {
	if 'a' <= r && r <= 'z' {
		return false
	}
	if '0' <= r && r <= '9' {
		return false
	}
	return r != '_'
}

// isValidTableName checks the name, as it is put in the SQL text and not
// sent as a parameter.
func isValidTableName(table string) bool {
	if len(table) == 0 || len(table) > 48 || strings.ContainsFunc(table, invalidCharForTableName) {
		return false
	}
	first := table[0]
	return 'a' <= first && first <= 'z'
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pg.Ping(ctx)
}

// EnsureSchema creates the table and its unique indexes if they don't
// exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	opts := pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	}
	return pgx.BeginTxFunc(ctx, s.pg, opts, func(tx pgx.Tx) error {
		return s.ExecCreateTable(ctx, tx)
	})
}

func (s *Store) IsValidID(id string) bool {
	_, err := uuid.FromString(id)
	return err == nil
}

func (s *Store) Insert(ctx context.Context, input core.CreatePokemon) (*core.Pokemon, error) {
	uuidv7, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	id := uuidv7.String()
	blob := document{No: input.No, Name: input.Name}

	ok, err := s.ExecInsertRow(ctx, id, blob)
	if err != nil {
		return nil, s.wrapWriteError(err, map[string]any{"no": blob.No, "name": blob.Name})
	}
	if !ok {
		return nil, fmt.Errorf("pokemon %s was not inserted", id)
	}
	return &core.Pokemon{ID: id, No: blob.No, Name: blob.Name}, nil
}

func (s *Store) FindOneBy(ctx context.Context, field core.Field, value any) (*core.Pokemon, error) {
	var sql string
	switch field {
	case core.FieldNo:
		sql = GetRowByNoSQL
	case core.FieldName:
		sql = GetRowByNameSQL
	default:
		return nil, fmt.Errorf("cannot look up pokemons by %q", field)
	}
	return s.getRow(ctx, sql, value)
}

func (s *Store) FindByID(ctx context.Context, id string) (*core.Pokemon, error) {
	return s.getRow(ctx, GetRowByIDSQL, id)
}

func (s *Store) getRow(ctx context.Context, sql string, arg any) (*core.Pokemon, error) {
	r, err := s.ExecGetRow(ctx, sql, arg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrNoDocument
		}
		return nil, fmt.Errorf("cannot get pokemon: %w", err)
	}
	pokemon := r.toPokemon()
	return &pokemon, nil
}

func (s *Store) FindAll(ctx context.Context) ([]core.Pokemon, error) {
	rows, err := s.ExecGetAllRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot get pokemons: %w", err)
	}
	pokemons := make([]core.Pokemon, 0, len(rows))
	for _, r := range rows {
		pokemons = append(pokemons, r.toPokemon())
	}
	return pokemons, nil
}

// UpdateByID does nothing if there is no pokemon with this identifier.
func (s *Store) UpdateByID(ctx context.Context, id string, patch core.PokemonPatch) error {
	fields := patch.Fields()
	if _, err := s.ExecUpdateRow(ctx, id, fields); err != nil {
		return s.wrapWriteError(err, fields)
	}
	return nil
}

func (s *Store) DeleteByID(ctx context.Context, id string) (int64, error) {
	deleted, err := s.ExecDeleteRow(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("cannot delete pokemon: %w", err)
	}
	return deleted, nil
}

// wrapWriteError recognizes the violations of the unique indexes, and uses
// the constraint name to know which of the written fields collided.
func (s *Store) wrapWriteError(err error, written map[string]any) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		kv := map[string]any{}
		switch pgErr.ConstraintName {
		case s.table + "_no_key":
			kv["no"] = written["no"]
		case s.table + "_name_key":
			kv["name"] = written["name"]
		default:
			kv = written
		}
		return &core.DuplicateKeyError{KeyValue: kv, Cause: err}
	}
	return fmt.Errorf("cannot write pokemon: %w", err)
}

func (r row) toPokemon() core.Pokemon {
	return core.Pokemon{ID: r.ID, No: r.Blob.No, Name: r.Blob.Name}
}
