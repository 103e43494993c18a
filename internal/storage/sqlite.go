// Package storage is the sqlite record store for the paper library.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"paperagent/internal/paper"
)

// DB wraps the sqlite database connection.
type DB struct {
	db *sql.DB
}

// Open opens or creates the library database at path, creating parent
// directories as needed.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			authors_json TEXT NOT NULL,
			pub_year INTEGER,
			abstract TEXT,
			file_path TEXT NOT NULL UNIQUE,
			added_at TEXT NOT NULL,
			summarized INTEGER NOT NULL DEFAULT 0,
			summary TEXT,
			doi TEXT,
			url TEXT
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_papers_doi
			ON papers(doi) WHERE doi IS NOT NULL AND doi != '';

		CREATE TABLE IF NOT EXISTS tags (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS paper_tags (
			paper_id INTEGER NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (paper_id, tag_id)
		);

		CREATE TABLE IF NOT EXISTS sections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			paper_id INTEGER NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			title TEXT,
			content TEXT NOT NULL,
			page INTEGER,
			embedding BLOB NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sections_paper ON sections(paper_id);

		CREATE TABLE IF NOT EXISTS cited_refs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			paper_id INTEGER NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			title TEXT,
			authors TEXT,
			year INTEGER,
			doi TEXT,
			url TEXT,
			in_library INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_cited_refs_paper ON cited_refs(paper_id);

		CREATE TABLE IF NOT EXISTS library_meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);
	`
	_, err := db.Exec(schema)
	return err
}

// EmbeddingMeta returns the embedding model and dimensionality recorded at
// first ingestion, or ("", 0, nil) for an empty library.
func (d *DB) EmbeddingMeta() (model string, dims int, err error) {
	rows, err := d.db.Query(`SELECT key, value FROM library_meta WHERE key IN ('embedding_model', 'embedding_dims')`)
	if err != nil {
		return "", 0, fmt.Errorf("querying library meta: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return "", 0, err
		}
		switch key {
		case "embedding_model":
			model = value
		case "embedding_dims":
			dims, err = strconv.Atoi(value)
			if err != nil {
				return "", 0, fmt.Errorf("%w: library meta embedding_dims %q: %v",
					paper.ErrConfiguration, value, err)
			}
		}
	}
	return model, dims, rows.Err()
}

// setEmbeddingMeta records the active embedding model inside tx.
func setEmbeddingMeta(tx *sql.Tx, model string, dims int) error {
	_, err := tx.Exec(`INSERT OR REPLACE INTO library_meta (key, value) VALUES
		('embedding_model', ?), ('embedding_dims', ?)`, model, fmt.Sprintf("%d", dims))
	return err
}

// wrapConstraint maps sqlite uniqueness violations onto ErrDuplicate so
// callers can match the error kind without driver knowledge.
func wrapConstraint(err error, context string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %s", paper.ErrDuplicate, context)
	}
	return fmt.Errorf("%s: %w", context, err)
}
