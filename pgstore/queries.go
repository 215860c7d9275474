package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// document is the JSON blob stored for each pokemon. The identifier lives
// in its own column.
type document struct {
	No   int    `json:"no"`
	Name string `json:"name"`
}

type row struct {
	ID   string
	Blob document
}

const CreateTableSQL = `
CREATE TABLE IF NOT EXISTS %s (
  id   VARCHAR(36) PRIMARY KEY,
  blob JSONB NOT NULL
);
`

const CreateNoIndexSQL = `
CREATE UNIQUE INDEX IF NOT EXISTS %s_no_key
ON %s (((blob ->> 'no')::bigint));
`

const CreateNameIndexSQL = `
CREATE UNIQUE INDEX IF NOT EXISTS %s_name_key
ON %s ((blob ->> 'name'));
`

func (s *Store) ExecCreateTable(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf(CreateTableSQL, s.table)); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(CreateNoIndexSQL, s.table, s.table)); err != nil {
		return err
	}
	_, err := tx.Exec(ctx, fmt.Sprintf(CreateNameIndexSQL, s.table, s.table))
	return err
}

const InsertRowSQL = `
INSERT INTO %s(id, blob)
VALUES ($1, $2);
`

func (s *Store) ExecInsertRow(ctx context.Context, id string, blob document) (bool, error) {
	sql := fmt.Sprintf(InsertRowSQL, s.table)
	tag, err := s.pg.Exec(ctx, sql, id, blob)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

const GetRowByIDSQL = `
SELECT id, blob
FROM %s
WHERE id = $1;
`

const GetRowByNoSQL = `
SELECT id, blob
FROM %s
WHERE (blob ->> 'no')::bigint = $1
LIMIT 1;
`

const GetRowByNameSQL = `
SELECT id, blob
FROM %s
WHERE blob ->> 'name' = $1
LIMIT 1;
`

func (s *Store) ExecGetRow(ctx context.Context, sql string, arg any) (row, error) {
	var r row
	err := s.pg.QueryRow(ctx, fmt.Sprintf(sql, s.table), arg).Scan(&r.ID, &r.Blob)
	return r, err
}

const GetAllRowsSQL = `
SELECT id, blob
FROM %s;
`

func (s *Store) ExecGetAllRows(ctx context.Context) ([]row, error) {
	rows, err := s.pg.Query(ctx, fmt.Sprintf(GetAllRowsSQL, s.table))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(collectable pgx.CollectableRow) (row, error) {
		var r row
		err := collectable.Scan(&r.ID, &r.Blob)
		return r, err
	})
}

// The || operator replaces the top-level keys of the blob with the ones of
// the patch, and keeps the others.
const UpdateRowSQL = `
UPDATE %s
SET blob = blob || $2
WHERE id = $1;
`

func (s *Store) ExecUpdateRow(ctx context.Context, id string, fields map[string]any) (pgconn.CommandTag, error) {
	sql := fmt.Sprintf(UpdateRowSQL, s.table)
	return s.pg.Exec(ctx, sql, id, fields)
}

const DeleteRowSQL = `
DELETE FROM %s
WHERE id = $1;
`

func (s *Store) ExecDeleteRow(ctx context.Context, id string) (int64, error) {
	sql := fmt.Sprintf(DeleteRowSQL, s.table)
	tag, err := s.pg.Exec(ctx, sql, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
