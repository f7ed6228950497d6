package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophtodo/internal/dbx"
)

// Dialect holds the statements of one SQL flavour.
type Dialect struct {
	Name   string
	get    string
	set    string
	delete string
	list   string
	clear  string
}

var (
	SQLite = Dialect{
		Name: "sqlite",
		get:  `SELECT value FROM metadata WHERE key = ?`,
		set: `INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		delete: `DELETE FROM metadata WHERE key = ?`,
		list:   `SELECT key, value FROM metadata`,
		clear:  `DELETE FROM metadata`,
	}

	Postgres = Dialect{
		Name: "postgres",
		get:  `SELECT value FROM metadata WHERE key = $1`,
		set: `INSERT INTO metadata (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		delete: `DELETE FROM metadata WHERE key = $1`,
		list:   `SELECT key, value FROM metadata`,
		clear:  `DELETE FROM metadata`,
	}
)

// SQLRepository stores pairs in the metadata table created by the embedded
// migrations.
type SQLRepository struct {
	db      dbx.DBTX
	dialect Dialect
}

var _ Repository = (*SQLRepository)(nil)

func NewSQLRepository(db dbx.DBTX, d Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: d}
}

func (r *SQLRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, r.dialect.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (r *SQLRepository) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	if _, err := r.db.ExecContext(ctx, r.dialect.set, key, value); err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.delete, key); err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.clear); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.list)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metadata rows: %w", err)
	}

	return result, nil
}
