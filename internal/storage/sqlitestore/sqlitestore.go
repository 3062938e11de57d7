// Package sqlitestore backs the storage.Store capability with SQLite via
// database/sql. All collections share a single records table keyed by
// (collection, key); values are stored as opaque blobs.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/farmline/marketplace/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      BLOB NOT NULL,
	PRIMARY KEY (collection, key)
);`

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite store at path and applies the
// schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Collection(name string) storage.Collection {
	return &collection{db: s.db, name: name}
}

type collection struct {
	db   *sql.DB
	name string
}

func (c *collection) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM records WHERE collection = ? AND key = ?`,
		c.name, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get %s/%s: %w", c.name, key, err)
	}
	return value, nil
}

func (c *collection) Put(ctx context.Context, key string, value []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO records (collection, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (collection, key) DO UPDATE SET value = excluded.value`,
		c.name, key, value,
	)
	if err != nil {
		return fmt.Errorf("sqlite put %s/%s: %w", c.name, key, err)
	}
	return nil
}

func (c *collection) ListAll(ctx context.Context) ([][]byte, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT value FROM records WHERE collection = ? ORDER BY key`,
		c.name,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite list %s: %w", c.name, err)
	}
	defer func() { _ = rows.Close() }()

	var values [][]byte
	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("sqlite scan %s: %w", c.name, err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite iterate %s: %w", c.name, err)
	}
	return values, nil
}
