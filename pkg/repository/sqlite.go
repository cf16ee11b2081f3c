package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/interfaces"
	_ "modernc.org/sqlite"
)

// SQLite keeps slots as rows of a local SQLite database, one row per slot
// name
type SQLite struct {
	db   *sql.DB
	name string
}

var _ interfaces.Slot = (*SQLite)(nil)

// NewSQLite opens (or creates) the database at path
func NewSQLite(ctx context.Context, path, name string) (*SQLite, error) {
	if name == "" {
		name = DefaultSlotName
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS slots (
		name TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);`); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to initialize sqlite database", goerr.V("path", path))
	}

	return &SQLite{db: db, name: name}, nil
}

func (s *SQLite) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM slots WHERE name = ?`, s.name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read slot", goerr.V("name", s.name))
	}
	return data, nil
}

func (s *SQLite) Save(ctx context.Context, data []byte) error {
	if _, err := s.db.ExecContext(ctx, `INSERT INTO slots (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		s.name, data, time.Now().UnixMilli(),
	); err != nil {
		return goerr.Wrap(err, "failed to write slot", goerr.V("name", s.name))
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, s.name); err != nil {
		return goerr.Wrap(err, "failed to delete slot", goerr.V("name", s.name))
	}
	return nil
}

// Close releases the database handle
func (s *SQLite) Close() error {
	if err := s.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close sqlite database")
	}
	return nil
}
