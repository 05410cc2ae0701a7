// Package store provides the SQLite-backed keyed-collection store that
// holds all portfolio content. Every collection is a flat set of
// (key, JSON document) pairs; keys are opaque identifiers assigned at
// creation and rowid preserves insertion order for snapshot iteration.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/brijesht/folio/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	key        TEXT NOT NULL,
	data       TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (collection, key)
);

CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection);
`

// Record is one keyed document in a collection.
type Record struct {
	Key  string
	Data json.RawMessage
}

// Store is the interface for keyed-collection operations. Consumers
// should depend on this interface rather than the concrete *DB type to
// facilitate testing with mocks.
type Store interface {
	Push(collection string, doc any) (string, error)
	Set(collection, key string, doc any) error
	Patch(collection, key string, fields map[string]any) error
	Delete(collection, key string) error
	Get(collection, key string, out any) error
	List(collection string) ([]Record, error)
	Close() error
}

// DB wraps a sql.DB with collection operations.
type DB struct {
	conn *sql.DB
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Push appends doc to the collection under a freshly generated key and
// returns that key.
func (db *DB) Push(collection string, doc any) (string, error) {
	key := uuid.NewString()
	if err := db.Set(collection, key, doc); err != nil {
		return "", err
	}
	return key, nil
}

// Set writes the full document at (collection, key), creating or
// replacing it. Last write wins; there is no version check.
func (db *DB) Set(collection, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: marshal doc: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO records (collection, key, data, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, key) DO UPDATE SET data = excluded.data
	`, collection, key, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: set %s/%s: %w", collection, key, err)
	}
	return nil
}

// Patch merges the given top-level fields into the stored document.
// The record must already exist.
func (db *DB) Patch(collection, key string, fields map[string]any) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var raw string
	err = tx.QueryRow(`SELECT data FROM records WHERE collection = ? AND key = ?`, collection, key).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("store: read %s/%s: %w", collection, key, err)
	}

	doc := make(map[string]any)
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("store: decode %s/%s: %w", collection, key, err)
	}
	for k, v := range fields {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: marshal merged doc: %w", err)
	}

	if _, err := tx.Exec(`UPDATE records SET data = ? WHERE collection = ? AND key = ?`,
		string(merged), collection, key); err != nil {
		return fmt.Errorf("store: patch %s/%s: %w", collection, key, err)
	}
	return tx.Commit()
}

// Delete removes the record outright. Deleting a missing key returns
// apperr.ErrNotFound.
func (db *DB) Delete(collection, key string) error {
	res, err := db.conn.Exec(`DELETE FROM records WHERE collection = ? AND key = ?`, collection, key)
	if err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", collection, key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Get unmarshals the document at (collection, key) into out.
func (db *DB) Get(collection, key string, out any) error {
	var raw string
	err := db.conn.QueryRow(`SELECT data FROM records WHERE collection = ? AND key = ?`, collection, key).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("store: get %s/%s: %w", collection, key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("store: decode %s/%s: %w", collection, key, err)
	}
	return nil
}

// List returns the full collection snapshot in insertion order.
func (db *DB) List(collection string) ([]Record, error) {
	rows, err := db.conn.Query(`SELECT key, data FROM records WHERE collection = ? ORDER BY rowid`, collection)
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var raw string
		if err := rows.Scan(&r.Key, &raw); err != nil {
			return nil, err
		}
		r.Data = json.RawMessage(raw)
		out = append(out, r)
	}
	return out, rows.Err()
}
