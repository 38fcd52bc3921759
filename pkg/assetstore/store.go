package assetstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sort"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store is the durable per-device asset store, backed by a single SQLite
// database file. It is safe for concurrent use from multiple goroutines;
// SQLite serialises writers, which is sufficient for the single-writer-per-
// key contract.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the asset store at the given file
// path. Returns an error wrapping ErrStorageUnavailable if the database
// cannot be opened or its schema cannot be applied.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty store path", ErrStorageUnavailable)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	// Writers back off instead of failing immediately when a reader holds
	// the file. Multi-megabyte audio uploads can hold a transaction for a
	// noticeable moment on kiosk hardware.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database. Implements io.Closer.
// After calling Close(), the store should not be used.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores rec under key, overwriting any existing record. The record is
// validated first so a tag/payload mismatch can never reach disk.
// Returns an error wrapping ErrWriteFailed on transactional failure.
func (s *Store) Put(ctx context.Context, key string, rec Record) error {
	if key == "" {
		return fmt.Errorf("%w: empty asset key", ErrWriteFailed)
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: invalid record: %v", ErrWriteFailed, err)
	}

	payload := rec.Data
	if rec.Kind == KindString {
		payload = []byte(rec.Text)
	}
	if payload == nil {
		payload = []byte{}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (key, kind, payload) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET kind = excluded.kind, payload = excluded.payload`,
		key, string(rec.Kind), payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// Get retrieves the record stored under key. Absence is a normal outcome:
// ok is false and err is nil when no record exists for key.
func (s *Store) Get(ctx context.Context, key string) (rec Record, ok bool, err error) {
	var kind string
	var payload []byte
	row := s.db.QueryRowContext(ctx,
		`SELECT kind, payload FROM assets WHERE key = ?`, key)
	if err := row.Scan(&kind, &payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	rec = Record{Kind: RecordKind(kind)}
	if err := rec.Kind.Validate(); err != nil {
		return Record{}, false, fmt.Errorf("%w: corrupt record for key %q: %v", ErrReadFailed, key, err)
	}
	switch rec.Kind {
	case KindBinary:
		rec.Data = payload
	case KindString:
		rec.Text = string(payload)
	}
	return rec, true, nil
}

// Delete removes the record for key. Idempotent: deleting an absent key is
// not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE key = ?`, key); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// ListKeys enumerates every key currently present, sorted, without reading
// payload bytes.
func (s *Store) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM assets`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	sort.Strings(keys)
	return keys, nil
}

// ExistenceMap returns a key -> true map of every present key. Authoring
// screens use it to mark which relics already have uploads without
// transferring payload bytes.
func (s *Store) ExistenceMap(ctx context.Context) (map[string]bool, error) {
	keys, err := s.ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m, nil
}
