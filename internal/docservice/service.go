// Package docservice coordinates workspace storage, parsing and the index.
package docservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/havenfs/internal/apperr"
	"github.com/starford/havenfs/internal/checksum"
	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/document"
	"github.com/starford/havenfs/internal/index"
	"github.com/starford/havenfs/internal/storage"
)

// DocumentDetail is the full representation of one description file.
type DocumentDetail struct {
	Path      string          `json:"path"`
	Content   string          `json:"content"`
	Checksum  string          `json:"checksum"`
	Result    document.Result `json:"result"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store  storage.Provider
	db     index.DocumentIndex
	logger *slog.Logger
}

// NewService creates a new document service. A nil logger uses slog.Default.
func NewService(store storage.Provider, db index.DocumentIndex, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, db: db, logger: logger}
}

// Extension returns the suffix of description files in the workspace.
func (s *Service) Extension() string { return s.store.Extension() }

// GetDocument reads a description from storage and parses it.
func (s *Service) GetDocument(_ context.Context, path string) (*DocumentDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	return s.detail(path, data), nil
}

// CreateDocument writes a new description and indexes it.
func (s *Service) CreateDocument(_ context.Context, path string, content []byte) (*DocumentDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	return s.index(path, content)
}

// UpdateDocument writes updated content with optimistic concurrency.
// An empty ifMatch skips the checksum comparison.
func (s *Service) UpdateDocument(_ context.Context, path string, content []byte, ifMatch string) (*DocumentDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		return nil, err
	}
	if !checksum.Match(existing, ifMatch) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	return s.index(path, content)
}

// DeleteDocument removes a description from storage and index.
func (s *Service) DeleteDocument(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteDocument(path)
}

// ListDocuments returns a page of indexed documents and the total count.
func (s *Service) ListDocuments(_ context.Context, limit, offset int) ([]index.DocumentRow, int, error) {
	rows, total, err := s.db.ListDocuments(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if rows == nil {
		rows = []index.DocumentRow{}
	}
	return rows, total, nil
}

// SearchNodes matches node names and tag names across the workspace.
func (s *Service) SearchNodes(_ context.Context, query string, limit int) ([]index.NodeHit, error) {
	hits, err := s.db.SearchNodes(query, limit)
	return nonNil(hits), err
}

// NodesByTag returns every node carrying a tag with the given name.
func (s *Service) NodesByTag(_ context.Context, tagName string) ([]index.NodeHit, error) {
	hits, err := s.db.NodesByTag(tagName)
	return nonNil(hits), err
}

// Diagnostics returns the stored diagnostics of an indexed document.
func (s *Service) Diagnostics(_ context.Context, path string) ([]diag.Diagnostic, error) {
	if _, err := s.db.GetDocument(path); err != nil {
		return nil, err
	}
	ds, err := s.db.Diagnostics(path)
	if ds == nil {
		ds = []diag.Diagnostic{}
	}
	return ds, err
}

// ParseText parses text without touching storage or the index.
func (s *Service) ParseText(_ context.Context, text string) document.Result {
	return document.Parse(text, diag.NewSink())
}

func (s *Service) index(path string, data []byte) (*DocumentDetail, error) {
	res, err := index.IndexFile(s.db, path, data)
	if err != nil {
		return nil, fmt.Errorf("docservice: index %s: %w", path, err)
	}
	s.logger.Debug("docservice: indexed",
		slog.String("path", path),
		slog.Int("nodes", len(res.Nodes)),
		slog.Int("diagnostics", len(res.Diagnostics)))
	return &DocumentDetail{
		Path:      path,
		Content:   string(data),
		Checksum:  checksum.Sum(data),
		Result:    res,
		UpdatedAt: time.Now(),
	}, nil
}

func (s *Service) detail(path string, data []byte) *DocumentDetail {
	return &DocumentDetail{
		Path:      path,
		Content:   string(data),
		Checksum:  checksum.Sum(data),
		Result:    document.Parse(string(data), diag.NewSink()),
		UpdatedAt: time.Now(),
	}
}

func nonNil(hits []index.NodeHit) []index.NodeHit {
	if hits == nil {
		return []index.NodeHit{}
	}
	return hits
}
