package graph

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/ontoguard/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS concepts (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	kind TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS instances (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	concept_id TEXT NOT NULL UNIQUE REFERENCES concepts(id)
);
CREATE TABLE IF NOT EXISTS relationships (
	type   TEXT NOT NULL,
	source TEXT NOT NULL,
	target TEXT NOT NULL,
	PRIMARY KEY (type, source, target)
);
CREATE INDEX IF NOT EXISTS relationships_source ON relationships (source, type);
`

// SQLiteBackend persists the graph in a single SQLite file.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// DefaultDBPath returns ~/.ontoguard/graph.db.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "ontoguard-graph.db")
	}
	return filepath.Join(home, ".ontoguard", "graph.db")
}

// OpenSQLite opens (or creates) the graph database at path.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if path == "" {
		path = DefaultDBPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create graph directory: %w", err)
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open graph database: %w", err)
	}
	// One writer; the Store lock already serialises updates.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate graph database: %w", err)
	}

	return &SQLiteBackend{db: db, path: path}, nil
}

// Path returns the database file path.
func (b *SQLiteBackend) Path() string {
	return b.path
}

// Load reads every concept, instance and relationship.
func (b *SQLiteBackend) Load(ctx context.Context) (model.Snapshot, error) {
	var snap model.Snapshot

	rows, err := b.db.QueryContext(ctx, `SELECT id, name, kind FROM concepts`)
	if err != nil {
		return snap, fmt.Errorf("load concepts: %w", err)
	}
	for rows.Next() {
		var c model.Concept
		if err := rows.Scan(&c.ID, &c.Name, &c.Kind); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan concept: %w", err)
		}
		snap.Concepts = append(snap.Concepts, c)
	}
	if err := closeRows(rows); err != nil {
		return snap, fmt.Errorf("load concepts: %w", err)
	}

	rows, err = b.db.QueryContext(ctx, `SELECT id, name, concept_id FROM instances`)
	if err != nil {
		return snap, fmt.Errorf("load instances: %w", err)
	}
	for rows.Next() {
		var in model.Instance
		if err := rows.Scan(&in.ID, &in.Name, &in.ConceptID); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan instance: %w", err)
		}
		snap.Instances = append(snap.Instances, in)
	}
	if err := closeRows(rows); err != nil {
		return snap, fmt.Errorf("load instances: %w", err)
	}

	rows, err = b.db.QueryContext(ctx, `SELECT type, source, target FROM relationships`)
	if err != nil {
		return snap, fmt.Errorf("load relationships: %w", err)
	}
	for rows.Next() {
		var r model.Relationship
		if err := rows.Scan(&r.Type, &r.Source, &r.Target); err != nil {
			rows.Close()
			return snap, fmt.Errorf("scan relationship: %w", err)
		}
		snap.Relationships = append(snap.Relationships, r)
	}
	if err := closeRows(rows); err != nil {
		return snap, fmt.Errorf("load relationships: %w", err)
	}

	snap.Sort()
	return snap, nil
}

// Commit writes one delta in a single SQL transaction.
func (b *SQLiteBackend) Commit(ctx context.Context, d Delta) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, c := range d.Concepts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO concepts (id, name, kind) VALUES (?, ?, ?)`,
			c.ID, c.Name, string(c.Kind)); err != nil {
			return fmt.Errorf("insert concept %q: %w", c.Name, err)
		}
	}
	for _, in := range d.Instances {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO instances (id, name, concept_id) VALUES (?, ?, ?)`,
			in.ID, in.Name, in.ConceptID); err != nil {
			return fmt.Errorf("insert instance %q: %w", in.Name, err)
		}
	}
	for _, r := range d.Removed {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM relationships WHERE type = ? AND source = ? AND target = ?`,
			string(r.Type), r.Source, r.Target); err != nil {
			return fmt.Errorf("delete %s edge: %w", r.Type, err)
		}
	}
	for _, r := range d.Added {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO relationships (type, source, target) VALUES (?, ?, ?)`,
			string(r.Type), r.Source, r.Target); err != nil {
			return fmt.Errorf("insert %s edge: %w", r.Type, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}
