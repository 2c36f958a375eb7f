//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; node search uses LIKE over nodes.name and tag names.
	return nil
}

func ftsInsert(_ *sql.Tx, _ string, _ []ftsRow) error { return nil }

func ftsDelete(_ *sql.Tx, _ string) error { return nil }

// SearchNodes matches nodes whose name or tag name contains query
// (fallback when FTS5 is not compiled in).
func (db *DB) SearchNodes(query string, limit int) ([]NodeHit, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT `+nodeColumns+`
		FROM nodes n
		WHERE n.name LIKE ?
		   OR EXISTS (
			SELECT 1 FROM tag_files tf
			JOIN tags t ON t.path = tf.path AND t.id = tf.tag_id
			WHERE tf.path = n.path AND tf.file_id = n.id AND t.name LIKE ?
		   )
		ORDER BY n.path, n.ord
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []NodeHit
	for rows.Next() {
		hit, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		hit.Snippet = hit.Node.Name
		out = append(out, hit)
	}
	return out, rows.Err()
}
