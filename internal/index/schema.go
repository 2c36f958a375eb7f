// Package index provides a SQLite-backed index of parsed Haven FS
// descriptions with optional FTS5 node-name search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	path             TEXT PRIMARY KEY,
	checksum         TEXT NOT NULL DEFAULT '',
	branch_base      TEXT NOT NULL DEFAULT '',
	branch_parent    TEXT NOT NULL DEFAULT '',
	branch_head      TEXT NOT NULL DEFAULT '',
	node_count       INTEGER NOT NULL DEFAULT 0,
	diagnostic_count INTEGER NOT NULL DEFAULT 0,
	updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS nodes (
	path     TEXT NOT NULL REFERENCES documents(path) ON DELETE CASCADE,
	id       TEXT NOT NULL,
	type     TEXT NOT NULL,
	parent   TEXT NOT NULL,
	name     TEXT NOT NULL,
	size     INTEGER NOT NULL DEFAULT 0,
	tags     TEXT NOT NULL DEFAULT '[]',
	libs     TEXT NOT NULL DEFAULT '[]',
	metadata TEXT NOT NULL DEFAULT '{}',
	ord      INTEGER NOT NULL,
	PRIMARY KEY (path, id)
);

CREATE TABLE IF NOT EXISTS tags (
	path  TEXT NOT NULL REFERENCES documents(path) ON DELETE CASCADE,
	id    TEXT NOT NULL,
	name  TEXT NOT NULL,
	color TEXT NOT NULL,
	PRIMARY KEY (path, id)
);

CREATE TABLE IF NOT EXISTS tag_files (
	path    TEXT NOT NULL REFERENCES documents(path) ON DELETE CASCADE,
	tag_id  TEXT NOT NULL,
	file_id TEXT NOT NULL,
	UNIQUE(path, tag_id, file_id)
);

CREATE TABLE IF NOT EXISTS libraries (
	path   TEXT NOT NULL REFERENCES documents(path) ON DELETE CASCADE,
	id     TEXT NOT NULL,
	name   TEXT NOT NULL,
	tag_id TEXT NOT NULL,
	UNIQUE(path, id, tag_id)
);

CREATE TABLE IF NOT EXISTS diagnostics (
	path    TEXT NOT NULL REFERENCES documents(path) ON DELETE CASCADE,
	ord     INTEGER NOT NULL,
	line    INTEGER NOT NULL,
	col     INTEGER NOT NULL,
	code    TEXT NOT NULL,
	message TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nodes_name ON nodes(name);
CREATE INDEX IF NOT EXISTS idx_tags_name ON tags(name);
CREATE INDEX IF NOT EXISTS idx_tag_files_tag ON tag_files(path, tag_id);
CREATE INDEX IF NOT EXISTS idx_diagnostics_path ON diagnostics(path);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}
