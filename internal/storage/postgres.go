package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores items in the kv_items table created by the migrations.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) GetItem(ctx context.Context, namespace, key string) (string, bool, error) {
	const query = `SELECT value FROM kv_items WHERE namespace=$1 AND key=$2`

	var value string
	err := p.pool.QueryRow(ctx, query, namespace, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres get item: %w", err)
	}
	return value, true, nil
}

func (p *Postgres) SetItem(ctx context.Context, namespace, key, value string) error {
	const query = `
        INSERT INTO kv_items (namespace, key, value, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (namespace, key) DO UPDATE SET value=EXCLUDED.value, updated_at=NOW()`

	if _, err := p.pool.Exec(ctx, query, namespace, key, value); err != nil {
		return fmt.Errorf("postgres set item: %w", err)
	}
	return nil
}

func (p *Postgres) RemoveItem(ctx context.Context, namespace, key string) error {
	const query = `DELETE FROM kv_items WHERE namespace=$1 AND key=$2`

	if _, err := p.pool.Exec(ctx, query, namespace, key); err != nil {
		return fmt.Errorf("postgres remove item: %w", err)
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close is a no-op; the pool is owned by the caller.
func (p *Postgres) Close() error { return nil }
