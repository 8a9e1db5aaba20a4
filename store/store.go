package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Dialect holds the statements that differ between SQL engines.
type Dialect struct {
	Name   string
	Driver string
	// MaxOpenConns caps the pool; zero leaves database/sql's default.
	MaxOpenConns int
	// Setup runs once on the fresh handle, before migrations.
	Setup []string

	get    string
	upsert string
	remove string
}

var (
	Postgres = Dialect{
		Name:   "postgres",
		Driver: "postgres",
		get:    `SELECT entry_value FROM kv_entries WHERE entry_key = $1`,
		upsert: `INSERT INTO kv_entries (entry_key, entry_value, updated_at) VALUES ($1, $2, $3) ON CONFLICT (entry_key) DO UPDATE SET entry_value = EXCLUDED.entry_value, updated_at = EXCLUDED.updated_at`,
		remove: `DELETE FROM kv_entries WHERE entry_key = $1`,
	}

	// SQLite is the on-device default: a single file next to the app data.
	// One connection serializes writers; SQLite locks the whole file on write.
	SQLite = Dialect{
		Name:         "sqlite",
		Driver:       "sqlite",
		MaxOpenConns: 1,
		Setup:        []string{`PRAGMA busy_timeout = 5000`},
		get:          `SELECT entry_value FROM kv_entries WHERE entry_key = ?`,
		upsert:       `INSERT INTO kv_entries (entry_key, entry_value, updated_at) VALUES (?, ?, ?) ON CONFLICT (entry_key) DO UPDATE SET entry_value = excluded.entry_value, updated_at = excluded.updated_at`,
		remove:       `DELETE FROM kv_entries WHERE entry_key = ?`,
	}
)

// SQLStore is a Store backed by a single kv_entries table.
type SQLStore struct {
	DB      *sql.DB
	Dialect Dialect

	now func() time.Time
}

// NewSQLStore wraps an open handle. The schema is not touched; call Migrate.
func NewSQLStore(db *sql.DB, d Dialect) *SQLStore {
	return &SQLStore{DB: db, Dialect: d, now: time.Now}
}

// Open connects with the dialect's driver, pings and applies the schema.
func Open(ctx context.Context, d Dialect, dsn string) (*SQLStore, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name, err)
	}
	if d.MaxOpenConns > 0 {
		db.SetMaxOpenConns(d.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Name, err)
	}
	for _, stmt := range d.Setup {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup %s: %w", d.Name, err)
		}
	}
	s := NewSQLStore(db, d)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenPostgres opens a Postgres-backed store.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	return Open(ctx, Postgres, dsn)
}

// OpenSQLite opens (creating if needed) a SQLite file-backed store.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	return Open(ctx, SQLite, path)
}

// Migrate creates the kv_entries table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate kv_entries: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error { return s.DB.Close() }

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.DB.QueryRowContext(ctx, s.Dialect.get, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.DB.ExecContext(ctx, s.Dialect.upsert, key, value, s.now().UTC()); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Remove deletes the key. Removing a missing key is not an error.
func (s *SQLStore) Remove(ctx context.Context, key string) error {
	if _, err := s.DB.ExecContext(ctx, s.Dialect.remove, key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}
