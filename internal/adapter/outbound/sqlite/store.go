// Package sqlite provides durable, file-backed adapters for the
// attribute.Store and policy.CatalogStore outbound ports, for
// deployments that need registry and catalog state to survive a
// restart. Writes take an in-process mutex plus a cross-process flock
// on a sidecar ".lock" file, the same two-layer approach the file state
// store uses for its JSON document.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/policy"
)

const schema = `
CREATE TABLE IF NOT EXISTS attributes (
	identifier BLOB NOT NULL,
	key        BLOB NOT NULL,
	value      BLOB NOT NULL,
	PRIMARY KEY (identifier, key)
);
CREATE TABLE IF NOT EXISTS registered (
	identifier BLOB NOT NULL PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS rules (
	id         INTEGER PRIMARY KEY,
	resource   BLOB NOT NULL,
	action     INTEGER NOT NULL,
	conditions BLOB NOT NULL,
	enabled    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS rule_index (
	resource BLOB NOT NULL,
	action   INTEGER NOT NULL,
	rule_id  INTEGER NOT NULL,
	PRIMARY KEY (resource, action, rule_id)
);
CREATE TABLE IF NOT EXISTS rule_seq (
	next_id INTEGER NOT NULL
);
`

// Store is a shared SQLite handle backing both the durable
// attribute.Store and policy.CatalogStore adapters. Writes from both
// adapters take mu and additionally flock path+".lock", so a second OS
// process sharing the same database file cannot race a write against this
// one. Reads take neither lock.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open creates (or reopens) a SQLite-backed Store at path, creating the
// schema if absent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers on one handle
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: create schema: %w", err)
	}
	if _, err := db.Exec(`INSERT INTO rule_seq (next_id) SELECT 1 WHERE NOT EXISTS (SELECT 1 FROM rule_seq)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: seed rule_seq: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// withCrossProcessLock runs fn while holding both the in-process mutex
// and an OS-level flock on the sidecar lock file, so a second process
// pointed at the same database file cannot interleave a write.
func (s *Store) withCrossProcessLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lockFile, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("sqlite: open lock file: %w", err)
	}
	defer lockFile.Close()

	if err := lockSidecarFile(lockFile.Fd()); err != nil {
		return fmt.Errorf("sqlite: acquire file lock: %w", err)
	}
	defer unlockSidecarFile(lockFile.Fd()) //nolint:errcheck

	return fn()
}

// AttributeStore adapts Store to the attribute.Store port.
type AttributeStore struct {
	store *Store
}

// NewAttributeStore wraps a shared Store as an attribute.Store.
func NewAttributeStore(store *Store) *AttributeStore {
	return &AttributeStore{store: store}
}

func (a *AttributeStore) Set(ctx context.Context, id attribute.Identifier, key attribute.Key, value attribute.Value) error {
	return a.store.withCrossProcessLock(func() error {
		return a.setLocked(ctx, id, key, value)
	})
}

func (a *AttributeStore) setLocked(ctx context.Context, id attribute.Identifier, key attribute.Key, value attribute.Value) error {
	if _, err := a.store.db.ExecContext(ctx,
		`INSERT INTO attributes (identifier, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(identifier, key) DO UPDATE SET value = excluded.value`,
		id[:], key[:], value[:]); err != nil {
		return fmt.Errorf("sqlite: set attribute: %w", err)
	}
	if _, err := a.store.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO registered (identifier) VALUES (?)`, id[:]); err != nil {
		return fmt.Errorf("sqlite: mark registered: %w", err)
	}
	return nil
}

func (a *AttributeStore) SetBatch(ctx context.Context, id attribute.Identifier, keys []attribute.Key, values []attribute.Value) error {
	return a.store.withCrossProcessLock(func() error {
		tx, err := a.store.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("sqlite: begin batch: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO registered (identifier) VALUES (?)`, id[:]); err != nil {
			return fmt.Errorf("sqlite: mark registered: %w", err)
		}
		for i, k := range keys {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO attributes (identifier, key, value) VALUES (?, ?, ?)
				 ON CONFLICT(identifier, key) DO UPDATE SET value = excluded.value`,
				id[:], k[:], values[i][:]); err != nil {
				return fmt.Errorf("sqlite: set batch attribute %d: %w", i, err)
			}
		}
		return tx.Commit()
	})
}

func (a *AttributeStore) Get(ctx context.Context, id attribute.Identifier, key attribute.Key) (attribute.Value, error) {
	var raw []byte
	err := a.store.db.QueryRowContext(ctx,
		`SELECT value FROM attributes WHERE identifier = ? AND key = ?`, id[:], key[:]).Scan(&raw)
	if err == sql.ErrNoRows {
		return attribute.Value{}, nil
	}
	if err != nil {
		return attribute.Value{}, fmt.Errorf("sqlite: get attribute: %w", err)
	}
	var v attribute.Value
	copy(v[:], raw)
	return v, nil
}

func (a *AttributeStore) GetAll(ctx context.Context, id attribute.Identifier) (map[attribute.Key]attribute.Value, error) {
	rows, err := a.store.db.QueryContext(ctx, `SELECT key, value FROM attributes WHERE identifier = ?`, id[:])
	if err != nil {
		return nil, fmt.Errorf("sqlite: get all attributes: %w", err)
	}
	defer rows.Close()

	out := make(map[attribute.Key]attribute.Value)
	for rows.Next() {
		var rawKey, rawValue []byte
		if err := rows.Scan(&rawKey, &rawValue); err != nil {
			return nil, fmt.Errorf("sqlite: scan attribute row: %w", err)
		}
		var k attribute.Key
		var v attribute.Value
		copy(k[:], rawKey)
		copy(v[:], rawValue)
		out[k] = v
	}
	return out, rows.Err()
}

func (a *AttributeStore) IsRegistered(ctx context.Context, id attribute.Identifier) (bool, error) {
	var one int
	err := a.store.db.QueryRowContext(ctx, `SELECT 1 FROM registered WHERE identifier = ?`, id[:]).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: is registered: %w", err)
	}
	return true, nil
}

// Compile-time interface verification.
var _ attribute.Store = (*AttributeStore)(nil)
var _ policy.CatalogStore = (*CatalogStore)(nil)
