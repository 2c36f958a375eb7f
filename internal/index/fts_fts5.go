//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS nodes_fts USING fts5(
			path UNINDEXED,
			id UNINDEXED,
			name,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, path string, rows []ftsRow) error {
	if len(rows) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT INTO nodes_fts (path, id, name, tags) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare fts insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(path, r.ID, r.Name, r.Tags); err != nil {
			return fmt.Errorf("index: insert fts: %w", err)
		}
	}
	return nil
}

func ftsDelete(tx *sql.Tx, path string) error {
	if _, err := tx.Exec(`DELETE FROM nodes_fts WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete fts: %w", err)
	}
	return nil
}

// SearchNodes performs an FTS5 search over node names and tag names and
// returns matching nodes with snippets.
func (db *DB) SearchNodes(query string, limit int) ([]NodeHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT `+nodeColumns+`,
		       snippet(nodes_fts, 2, '<b>', '</b>', '...', 16)
		FROM nodes_fts
		JOIN nodes n ON n.path = nodes_fts.path AND n.id = nodes_fts.id
		WHERE nodes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []NodeHit
	for rows.Next() {
		var snippet string
		hit, err := scanNode(rows, &snippet)
		if err != nil {
			return nil, err
		}
		hit.Snippet = snippet
		out = append(out, hit)
	}
	return out, rows.Err()
}
