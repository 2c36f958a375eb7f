package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/havenfs/internal/docservice"
)

const maxBody = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *docservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *docservice.Service) *Handler {
	return &Handler{svc: svc}
}

// wildcardPath extracts the document path from the URL (everything after
// the route prefix). Supports encoded slashes from OpenAPI clients
// (e.g. photos%2F2024.havenfs).
func wildcardPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List indexed documents
//	@Tags			documents
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	DocumentListResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	docs, total, err := h.svc.ListDocuments(r.Context(), limit, offset)
	if err != nil {
		writeError(w, "list documents", "", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs, Total: total})
}

// GetDocument handles GET /api/documents/*.
//
//	@Summary		Get and parse a single document by path
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	DocumentDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	doc, err := h.svc.GetDocument(r.Context(), path)
	if err != nil {
		writeError(w, "get document", path, err)
		return
	}
	w.Header().Set("ETag", `"`+doc.Checksum+`"`)
	writeJSON(w, http.StatusOK, doc)
}

// CreateDocument handles POST /api/documents.
//
//	@Summary		Create a new document
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDocumentRequest	true	"Document to create"
//	@Success		201		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [post]
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and content are required"))
		return
	}
	doc, err := h.svc.CreateDocument(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		writeError(w, "create document", req.Path, err)
		return
	}
	w.Header().Set("ETag", `"`+doc.Checksum+`"`)
	writeJSON(w, http.StatusCreated, doc)
}

// UpdateDocument handles PUT /api/documents/*.
//
//	@Summary		Update a document with optimistic concurrency
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string					true	"Document path"
//	@Param			If-Match	header	string					false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	UpdateDocumentRequest	true	"Updated content"
//	@Success		200		{object}	DocumentDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [put]
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}

	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}

	doc, err := h.svc.UpdateDocument(r.Context(), path, []byte(req.Content), r.Header.Get("If-Match"))
	if err != nil {
		writeError(w, "update document", path, err)
		return
	}
	w.Header().Set("ETag", `"`+doc.Checksum+`"`)
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/documents/*.
//
//	@Summary		Delete a document
//	@Tags			documents
//	@Param			path	path	string	true	"Document path"
//	@Success		204		"Document deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{path} [delete]
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteDocument(r.Context(), path); err != nil {
		writeError(w, "delete document", path, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Parse handles POST /api/parse. The request body is the raw description
// text; nothing is stored.
//
//	@Summary		Parse a description without storing it
//	@Tags			parse
//	@Accept			plain
//	@Produce		json
//	@Success		200	{object}	ParseResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parse [post]
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ParseText(r.Context(), string(body)))
}

// SearchNodes handles GET /api/search.
//
//	@Summary		Search node and tag names across documents
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	NodeListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) SearchNodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	hits, err := h.svc.SearchNodes(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", q, err)
		return
	}
	writeJSON(w, http.StatusOK, NodeListResponse{Results: hits})
}

// NodesByTag handles GET /api/tags/{name}/nodes.
//
//	@Summary		List nodes carrying a tag
//	@Tags			search
//	@Produce		json
//	@Param			name	path		string	true	"Tag name"
//	@Success		200		{object}	NodeListResponse
//	@Security		BearerAuth
//	@Router			/tags/{name}/nodes [get]
func (h *Handler) NodesByTag(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	hits, err := h.svc.NodesByTag(r.Context(), name)
	if err != nil {
		writeError(w, "nodes by tag", name, err)
		return
	}
	writeJSON(w, http.StatusOK, NodeListResponse{Results: hits})
}

// Diagnostics handles GET /api/diagnostics/*.
//
//	@Summary		Get stored diagnostics of a document
//	@Tags			documents
//	@Produce		json
//	@Param			path	path		string	true	"Document path"
//	@Success		200		{object}	DiagnosticsResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/diagnostics/{path} [get]
func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	path := wildcardPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	ds, err := h.svc.Diagnostics(r.Context(), path)
	if err != nil {
		writeError(w, "diagnostics", path, err)
		return
	}
	writeJSON(w, http.StatusOK, DiagnosticsResponse{Path: path, Diagnostics: ds})
}
