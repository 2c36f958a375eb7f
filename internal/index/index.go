package index

import (
	"time"

	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/document"
	"github.com/starford/havenfs/internal/models"
)

// DocumentIndex defines the interface for description indexing operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with mocks.
type DocumentIndex interface {
	UpsertDocument(path, checksum string, res document.Result, updatedAt time.Time) error
	DeleteDocument(path string) error
	GetChecksum(path string) (string, error)
	GetDocument(path string) (*DocumentRow, error)
	ListDocuments(limit, offset int) ([]DocumentRow, int, error)
	Nodes(path string) ([]models.Node, error)
	Diagnostics(path string) ([]diag.Diagnostic, error)
	NodesByTag(tagName string) ([]NodeHit, error)
	SearchNodes(query string, limit int) ([]NodeHit, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*DB)(nil)
