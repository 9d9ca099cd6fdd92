// Package cache memoizes the output of internal/pipeline's stages 5-10
// (resolver through simplifier) keyed by a content hash of a mechanism's
// normalized source text, adapted from the teacher's
// internal/database/db_manager.go: a database/sql.DB wrapped in a small
// connection-scoped API, using modernc.org/sqlite (pure Go, no cgo) as the
// driver instead of the teacher's mattn/go-sqlite3. Unlike the teacher's
// manager, this is a single embedded file rather than a pool of named
// connections to arbitrary servers, so there is exactly one *sql.DB, no
// connection registry, and no driver-name switch.
package cache

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	_ "modernc.org/sqlite"

	"arblangc/internal/resolved"
	"arblangc/internal/simplifier"
	"arblangc/internal/types"
)

func init() {
	// Every concrete resolved.Expr and types.Type ever stored behind one of
	// PrintableMechanism's Expr-typed fields must be registered so gob can
	// round-trip the interface values.
	gob.Register(resolved.Parameter{})
	gob.Register(resolved.Constant{})
	gob.Register(resolved.State{})
	gob.Register(resolved.Binding{})
	gob.Register(resolved.Function{})
	gob.Register(resolved.Initial{})
	gob.Register(resolved.Evolve{})
	gob.Register(resolved.Effect{})
	gob.Register(resolved.Export{})
	gob.Register(resolved.Identifier{})
	gob.Register(resolved.Argument{})
	gob.Register(resolved.FieldAccess{})
	gob.Register(resolved.Float{})
	gob.Register(resolved.Int{})
	gob.Register(resolved.Bool{})
	gob.Register(resolved.Unary{})
	gob.Register(resolved.Binary{})
	gob.Register(resolved.Call{})
	gob.Register(resolved.Object{})
	gob.Register(resolved.Let{})
	gob.Register(resolved.With{})
	gob.Register(resolved.Conditional{})

	gob.Register(types.Quant{})
	gob.Register(types.Bool{})
	gob.Register(types.Record{})
}

// Cache is a single-file SQLite memoization table mapping a source hash to
// a gob-encoded simplifier.PrintableMechanism.
type Cache struct {
	db *sql.DB
}

// Open creates or attaches to the SQLite file at path and ensures its
// schema exists.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: failed to open %q: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: failed to open %q: %w", path, err)
	}

	// A file-backed SQLite database serializes writes at the file level
	// regardless of how many *sql.Conn Go hands out; capping the pool at one
	// avoids SQLITE_BUSY churn under modernc.org/sqlite's default locking.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: failed to initialize schema: %w", err)
	}

	return &Cache{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS mechanisms (
	hash       TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	created_at DATETIME NOT NULL
);
`

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Hash returns the cache key for a mechanism's normalized source text: a
// blake2b-256 digest, hex-encoded, matching the structural-hash technique
// internal/optimizer's CSE pass already uses for resolved expressions.
func Hash(normalizedSource string) string {
	sum := blake2b.Sum256([]byte(normalizedSource))
	return fmt.Sprintf("%x", sum)
}

// Get looks up the PrintableMechanism cached under hash. The bool return is
// false, with a nil error, on a clean miss.
func (c *Cache) Get(hash string) (*simplifier.PrintableMechanism, bool, error) {
	var payload []byte
	err := c.db.QueryRow(`SELECT payload FROM mechanisms WHERE hash = ?`, hash).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: lookup failed: %w", err)
	}

	var pm simplifier.PrintableMechanism
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&pm); err != nil {
		return nil, false, fmt.Errorf("cache: stored payload for %q is corrupt: %w", hash, err)
	}
	return &pm, true, nil
}

// Put stores pm under hash, overwriting any existing entry.
func (c *Cache) Put(hash string, pm *simplifier.PrintableMechanism) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(pm); err != nil {
		return fmt.Errorf("cache: failed to encode payload for %q: %w", hash, err)
	}

	_, err := c.db.Exec(
		`INSERT INTO mechanisms (hash, payload, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		hash, buf.Bytes(), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("cache: write failed for %q: %w", hash, err)
	}
	return nil
}
