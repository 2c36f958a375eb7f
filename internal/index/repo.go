package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/havenfs/internal/apperr"
	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/document"
	"github.com/starford/havenfs/internal/models"
)

// DocumentRow represents a row in the documents table.
type DocumentRow struct {
	Path            string    `json:"path"`
	Checksum        string    `json:"checksum"`
	BranchBase      string    `json:"branch_base,omitempty"`
	BranchParent    string    `json:"branch_parent,omitempty"`
	BranchHead      string    `json:"branch_head,omitempty"`
	NodeCount       int       `json:"node_count"`
	DiagnosticCount int       `json:"diagnostic_count"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NodeHit is a node found by a cross-document query.
type NodeHit struct {
	Path    string      `json:"path"`
	Node    models.Node `json:"node"`
	Snippet string      `json:"snippet,omitempty"`
}

// ftsRow is the searchable projection of one node.
type ftsRow struct {
	ID   string
	Name string
	Tags string
}

const nodeColumns = `n.path, n.id, n.type, n.parent, n.name, n.size, n.tags, n.libs, n.metadata`

var childTables = []string{"nodes", "tags", "tag_files", "libraries", "diagnostics"}

// UpsertDocument replaces everything indexed for path with the content of
// res inside one transaction.
func (db *DB) UpsertDocument(path, checksum string, res document.Result, updatedAt time.Time) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	var base, parent, head string
	if b := res.Branch; b != nil {
		base, parent, head = b.Base.Value, b.Parent.Value, b.Head.Value
	}
	_, err = tx.Exec(`
		INSERT INTO documents (path, checksum, branch_base, branch_parent, branch_head, node_count, diagnostic_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum         = excluded.checksum,
			branch_base      = excluded.branch_base,
			branch_parent    = excluded.branch_parent,
			branch_head      = excluded.branch_head,
			node_count       = excluded.node_count,
			diagnostic_count = excluded.diagnostic_count,
			updated_at       = excluded.updated_at
	`, path, checksum, base, parent, head, len(res.Nodes), len(res.Diagnostics), updatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	if err := clearChildren(tx, path); err != nil {
		return err
	}
	if err := insertNodes(tx, path, res); err != nil {
		return err
	}
	if err := insertTags(tx, path, res); err != nil {
		return err
	}
	if err := insertLibraries(tx, path, res.Libraries); err != nil {
		return err
	}
	if err := insertDiagnostics(tx, path, res.Diagnostics); err != nil {
		return err
	}
	return tx.Commit()
}

func clearChildren(tx *sql.Tx, path string) error {
	for _, table := range childTables {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE path = ?`, path); err != nil {
			return fmt.Errorf("index: clear %s: %w", table, err)
		}
	}
	return ftsDelete(tx, path)
}

func insertNodes(tx *sql.Tx, path string, res document.Result) error {
	stmt, err := tx.Prepare(`
		INSERT INTO nodes (path, id, type, parent, name, size, tags, libs, metadata, ord)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare node insert: %w", err)
	}
	defer stmt.Close()

	search := make([]ftsRow, 0, len(res.Nodes))
	for i, n := range res.Nodes {
		tagsJSON, _ := json.Marshal(nonNil(n.Tags))
		libsJSON, _ := json.Marshal(nonNil(n.Libs))
		metaJSON, _ := json.Marshal(nonNilMap(n.Metadata))
		if _, err := stmt.Exec(path, n.ID, string(n.Type), n.Parent, n.Name, n.Size,
			string(tagsJSON), string(libsJSON), string(metaJSON), i); err != nil {
			return fmt.Errorf("index: insert node %s: %w", n.ID, err)
		}

		names := make([]string, 0, len(n.Tags))
		for _, id := range n.Tags {
			if e, ok := res.Tags[id]; ok {
				names = append(names, e.Tag.Name)
			}
		}
		search = append(search, ftsRow{ID: n.ID, Name: n.Name, Tags: strings.Join(names, " ")})
	}
	return ftsInsert(tx, path, search)
}

// insertTags stores the tag index and the tag/file associations declared
// from either side: TAG ... FR= and FILE ... tags=.
func insertTags(tx *sql.Tx, path string, res document.Result) error {
	tagStmt, err := tx.Prepare(`INSERT INTO tags (path, id, name, color) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare tag insert: %w", err)
	}
	defer tagStmt.Close()
	linkStmt, err := tx.Prepare(`INSERT OR IGNORE INTO tag_files (path, tag_id, file_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare tag link insert: %w", err)
	}
	defer linkStmt.Close()

	for id, e := range res.Tags {
		if _, err := tagStmt.Exec(path, id, e.Tag.Name, e.Tag.Color); err != nil {
			return fmt.Errorf("index: insert tag %s: %w", id, err)
		}
		for _, file := range e.FileRefs {
			if _, err := linkStmt.Exec(path, id, file); err != nil {
				return fmt.Errorf("index: insert tag link: %w", err)
			}
		}
	}
	for _, n := range res.Nodes {
		for _, id := range n.Tags {
			if _, err := linkStmt.Exec(path, id, n.ID); err != nil {
				return fmt.Errorf("index: insert tag link: %w", err)
			}
		}
	}
	return nil
}

func insertLibraries(tx *sql.Tx, path string, libs models.Libraries) error {
	if len(libs) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO libraries (path, id, name, tag_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare library insert: %w", err)
	}
	defer stmt.Close()
	for _, entries := range libs {
		for _, l := range entries {
			if _, err := stmt.Exec(path, l.ID, l.Name, l.TagID); err != nil {
				return fmt.Errorf("index: insert library %s: %w", l.ID, err)
			}
		}
	}
	return nil
}

func insertDiagnostics(tx *sql.Tx, path string, ds []diag.Diagnostic) error {
	if len(ds) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT INTO diagnostics (path, ord, line, col, code, message) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare diagnostic insert: %w", err)
	}
	defer stmt.Close()
	for i, d := range ds {
		if _, err := stmt.Exec(path, i, d.Position.Line, d.Position.Column, string(d.Code), d.Message); err != nil {
			return fmt.Errorf("index: insert diagnostic: %w", err)
		}
	}
	return nil
}

// DeleteDocument removes a document and everything indexed from it.
func (db *DB) DeleteDocument(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := clearChildren(tx, path); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a document, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

const documentColumns = `path, checksum, branch_base, branch_parent, branch_head, node_count, diagnostic_count, updated_at`

func scanDocument(s interface{ Scan(...any) error }) (DocumentRow, error) {
	var r DocumentRow
	err := s.Scan(&r.Path, &r.Checksum, &r.BranchBase, &r.BranchParent, &r.BranchHead,
		&r.NodeCount, &r.DiagnosticCount, &r.UpdatedAt)
	return r, err
}

// GetDocument returns the indexed summary of one document.
func (db *DB) GetDocument(path string) (*DocumentRow, error) {
	r, err := scanDocument(db.conn.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	return &r, nil
}

// ListDocuments returns a page of documents ordered by path and the total count.
func (db *DB) ListDocuments(limit, offset int) ([]DocumentRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count documents: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+documentColumns+` FROM documents ORDER BY path LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentRow
	for rows.Next() {
		r, err := scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// Nodes returns the nodes of one document in document order.
func (db *DB) Nodes(path string) ([]models.Node, error) {
	rows, err := db.conn.Query(`SELECT `+nodeColumns+` FROM nodes n WHERE n.path = ? ORDER BY n.ord`, path)
	if err != nil {
		return nil, fmt.Errorf("index: nodes: %w", err)
	}
	defer rows.Close()

	var out []models.Node
	for rows.Next() {
		hit, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, hit.Node)
	}
	return out, rows.Err()
}

// Diagnostics returns the diagnostics recorded for one document in report order.
func (db *DB) Diagnostics(path string) ([]diag.Diagnostic, error) {
	rows, err := db.conn.Query(`SELECT line, col, code, message FROM diagnostics WHERE path = ? ORDER BY ord`, path)
	if err != nil {
		return nil, fmt.Errorf("index: diagnostics: %w", err)
	}
	defer rows.Close()

	var out []diag.Diagnostic
	for rows.Next() {
		var d diag.Diagnostic
		var code string
		if err := rows.Scan(&d.Position.Line, &d.Position.Column, &code, &d.Message); err != nil {
			return nil, err
		}
		d.Code = diag.Code(code)
		out = append(out, d)
	}
	return out, rows.Err()
}

// NodesByTag returns every node, across documents, tagged with a tag of the
// given display name.
func (db *DB) NodesByTag(tagName string) ([]NodeHit, error) {
	rows, err := db.conn.Query(`
		SELECT `+nodeColumns+`
		FROM tags t
		JOIN tag_files tf ON tf.path = t.path AND tf.tag_id = t.id
		JOIN nodes n ON n.path = tf.path AND n.id = tf.file_id
		WHERE t.name = ?
		GROUP BY n.path, n.id
		ORDER BY n.path, n.ord
	`, tagName)
	if err != nil {
		return nil, fmt.Errorf("index: nodes by tag: %w", err)
	}
	defer rows.Close()

	var out []NodeHit
	for rows.Next() {
		hit, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, hit)
	}
	return out, rows.Err()
}

// AllPaths returns every indexed document path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns the stored checksum of every indexed document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// scanNode reads nodeColumns followed by any extra destinations.
func scanNode(s interface{ Scan(...any) error }, extra ...any) (NodeHit, error) {
	var (
		hit                  NodeHit
		typ                  string
		tags, libs, metadata string
	)
	dest := append([]any{&hit.Path, &hit.Node.ID, &typ, &hit.Node.Parent, &hit.Node.Name, &hit.Node.Size,
		&tags, &libs, &metadata}, extra...)
	if err := s.Scan(dest...); err != nil {
		return NodeHit{}, err
	}
	hit.Node.Type = models.NodeType(typ)
	if hit.Node.IsFile() {
		_ = json.Unmarshal([]byte(tags), &hit.Node.Tags)
		_ = json.Unmarshal([]byte(libs), &hit.Node.Libs)
		hit.Node.Tags = nilIfEmpty(hit.Node.Tags)
		hit.Node.Libs = nilIfEmpty(hit.Node.Libs)
	}
	_ = json.Unmarshal([]byte(metadata), &hit.Node.Metadata)
	if len(hit.Node.Metadata) == 0 {
		hit.Node.Metadata = nil
	}
	return hit, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
