package api

import (
	"github.com/starford/havenfs/internal/diag"
	"github.com/starford/havenfs/internal/docservice"
	"github.com/starford/havenfs/internal/document"
	"github.com/starford/havenfs/internal/index"
)

// CreateDocumentRequest is the request body for creating a document.
type CreateDocumentRequest struct {
	Path    string `json:"path" example:"photos.havenfs" validate:"required"`
	Content string `json:"content" example:"#CHUNK directories @0\nDIR d0001 parent=root name=docs" validate:"required"`
}

// UpdateDocumentRequest is the request body for updating a document.
type UpdateDocumentRequest struct {
	Content string `json:"content" validate:"required"`
}

// DocumentDetail is the full document response type (aliased from the domain layer).
type DocumentDetail = docservice.DocumentDetail

// DocumentListResponse wraps paginated document listings.
type DocumentListResponse struct {
	Documents []index.DocumentRow `json:"documents" validate:"required"`
	Total     int                 `json:"total" example:"42" validate:"required"`
}

// NodeListResponse wraps cross-document node hits.
type NodeListResponse struct {
	Results []index.NodeHit `json:"results" validate:"required"`
}

// DiagnosticsResponse lists the stored diagnostics of one document.
type DiagnosticsResponse struct {
	Path        string            `json:"path" example:"photos.havenfs" validate:"required"`
	Diagnostics []diag.Diagnostic `json:"diagnostics" validate:"required"`
}

// ParseResponse is the result of a stateless parse.
type ParseResponse = document.Result
