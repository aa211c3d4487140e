package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresKV persists records in the kv_records table (see migrations/).
// Each row is one whole JSON record; Put is an upsert so writes stay
// last-write-wins like the other backends.
type PostgresKV struct {
	db *sql.DB
}

// NewPostgresKV creates a Postgres-backed KV store.
func NewPostgresKV(db *sql.DB) *PostgresKV {
	if db == nil {
		panic("storage: db cannot be nil")
	}
	return &PostgresKV{db: db}
}

func (s *PostgresKV) Get(ctx context.Context, kind Kind, id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM kv_records WHERE kind = $1 AND id = $2`,
		string(kind), id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load %s record: %w", kind, err)
	}
	return data, nil
}

func (s *PostgresKV) Put(ctx context.Context, kind Kind, id string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv_records (kind, id, data, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (kind, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, string(kind), id, data)
	if err != nil {
		return fmt.Errorf("storage: failed to persist %s record: %w", kind, err)
	}
	return nil
}

func (s *PostgresKV) Delete(ctx context.Context, kind Kind, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_records WHERE kind = $1 AND id = $2`,
		string(kind), id,
	)
	if err != nil {
		return fmt.Errorf("storage: failed to delete %s record: %w", kind, err)
	}
	return nil
}

func (s *PostgresKV) List(ctx context.Context, kind Kind) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM kv_records WHERE kind = $1`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to list %s records: %w", kind, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: failed to list %s records: %w", kind, err)
	}
	return ids, nil
}
