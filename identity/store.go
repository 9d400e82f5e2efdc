package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// IdentityStore is the at-rest home of the seed. Implementations are expected
// to sit behind platform keystore protections; this package only consumes the
// get/set contract. Get returns ErrNoIdentity when nothing is stored.
type IdentityStore interface {
	Get(ctx context.Context) (Seed, error)
	Set(ctx context.Context, seed Seed) error
}

// StateStore is optionally implemented by stores that can record small
// key/value bookkeeping, such as the id and time of the last uploaded backup.
type StateStore interface {
	SetState(ctx context.Context, k, v string) error
}

// SQLiteStore persists the seed and small bits of backup state locally.
type SQLiteStore struct {
	db *sql.DB
}

// OpenStore opens/creates a SQLite database and runs migrations.
func OpenStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS identity_seed (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  seed_hex TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS identity_state (
  k TEXT PRIMARY KEY,
  v TEXT NOT NULL
);
`)
	return err
}

// Get loads the stored seed.
func (s *SQLiteStore) Get(ctx context.Context) (Seed, error) {
	var seedHex string
	err := s.db.QueryRowContext(ctx, `SELECT seed_hex FROM identity_seed WHERE id = 1`).Scan(&seedHex)
	if errors.Is(err, sql.ErrNoRows) {
		return Seed{}, ErrNoIdentity
	}
	if err != nil {
		return Seed{}, err
	}
	return ParseSeedHex(seedHex)
}

// Set writes the seed, replacing any previous one.
func (s *SQLiteStore) Set(ctx context.Context, seed Seed) error {
	if !seed.Valid() {
		return errors.New("seed must be 32 bytes")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO identity_seed(id, seed_hex, updated_at) VALUES(1, ?, ?)
ON CONFLICT(id) DO UPDATE SET seed_hex = excluded.seed_hex, updated_at = excluded.updated_at`,
		seed.Hex(), time.Now().Unix(),
	)
	return err
}

// GetState returns the stored value for k, or def when absent.
func (s *SQLiteStore) GetState(ctx context.Context, k, def string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM identity_state WHERE k = ?`, k).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// SetState upserts a key/value pair.
func (s *SQLiteStore) SetState(ctx context.Context, k, v string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO identity_state(k, v) VALUES(?, ?)
ON CONFLICT(k) DO UPDATE SET v = excluded.v`, k, v)
	return err
}
