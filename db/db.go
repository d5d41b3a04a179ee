package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"qrlink/store"
)

// Database is a PostgreSQL-backed key-value store.
type Database struct {
	conn *sql.DB
}

// InitDB opens a connection with the given lib/pq DSN, verifies it and creates the schema.
func InitDB(ctx context.Context, dsn string) (*Database, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := createSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}

	return &Database{conn: conn}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.conn.Close()
}

// createSchema creates the key-value table if it doesn't exist
func createSchema(ctx context.Context, conn *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS kv_entries (
		key TEXT PRIMARY KEY,
		value JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

	_, err := conn.ExecContext(ctx, query)
	return err
}

func (db *Database) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := db.conn.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, store.Wrap("get", key, err)
	}
	return value, nil
}

// MGet fetches all keys in one round trip and restores the caller's order.
func (db *Database) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT key, value FROM kv_entries WHERE key = ANY($1)`, pq.Array(keys))
	if err != nil {
		return nil, store.Wrap("mget", "", err)
	}
	defer rows.Close()

	found := make(map[string][]byte, len(keys))
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, store.Wrap("mget", "", err)
		}
		found[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap("mget", "", err)
	}

	for i, k := range keys {
		out[i] = found[k]
	}
	return out, nil
}

func (db *Database) Set(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_entries (key, value, updated_at)
			  VALUES ($1, $2, NOW())
			  ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	// lib/pq encodes []byte as bytea, so the JSON goes over the wire as text.
	_, err := db.conn.ExecContext(ctx, query, key, string(value))
	return store.Wrap("set", key, err)
}

// Update locks the row for the duration of fn so concurrent writers queue up behind it.
func (db *Database) Update(ctx context.Context, key string, fn store.UpdateFunc) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return store.Wrap("update", key, err)
	}
	defer tx.Rollback()

	var current []byte
	err = tx.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE key = $1 FOR UPDATE`, key).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return store.Wrap("update", key, err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE kv_entries SET value = $2, updated_at = NOW() WHERE key = $1`, key, string(next)); err != nil {
		return store.Wrap("update", key, err)
	}
	return store.Wrap("update", key, tx.Commit())
}

func (db *Database) Delete(ctx context.Context, key string) (bool, error) {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	if err != nil {
		return false, store.Wrap("delete", key, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, store.Wrap("delete", key, err)
	}

	return rowsAffected > 0, nil
}

func (db *Database) Ping(ctx context.Context) error {
	return store.Wrap("ping", "", db.conn.PingContext(ctx))
}

var _ store.Store = (*Database)(nil)
