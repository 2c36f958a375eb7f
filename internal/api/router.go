package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/havenfs/internal/docservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *docservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents CRUD.
	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.CreateDocument)
	r.Get("/documents/*", h.GetDocument)
	r.Put("/documents/*", h.UpdateDocument)
	r.Delete("/documents/*", h.DeleteDocument)

	// Stateless parsing.
	r.Post("/parse", h.Parse)

	// Cross-document queries.
	r.Get("/search", h.SearchNodes)
	r.Get("/tags/{name}/nodes", h.NodesByTag)
	r.Get("/diagnostics/*", h.Diagnostics)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
