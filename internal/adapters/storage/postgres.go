package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createBlobTable = `
CREATE TABLE IF NOT EXISTS apm_blobs (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresBlob stores each key as a row of apm_blobs.
type PostgresBlob struct {
	db *pgxpool.Pool
}

// NewPostgresBlob connects, pings and creates the table when missing.
func NewPostgresBlob(ctx context.Context, dsn string) (*PostgresBlob, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	if _, err := pool.Exec(ctx, createBlobTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create apm_blobs: %w", err)
	}
	return &PostgresBlob{db: pool}, nil
}

func (p *PostgresBlob) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(ctx, "SELECT value FROM apm_blobs WHERE key = $1", key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (p *PostgresBlob) Put(ctx context.Context, key string, value []byte) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	_, err := p.db.Exec(ctx, `
		INSERT INTO apm_blobs (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	return err
}

func (p *PostgresBlob) Delete(ctx context.Context, key string) error {
	_, err := p.db.Exec(ctx, "DELETE FROM apm_blobs WHERE key = $1", key)
	return err
}

func (p *PostgresBlob) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func (p *PostgresBlob) Close() error {
	p.db.Close()
	return nil
}

func (p *PostgresBlob) Name() string { return BackendPostgres }
