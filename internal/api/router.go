package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/wikimark/internal/renderservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *renderservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Rendered pages.
	r.Get("/pages", h.ListPages)
	r.Get("/pages/*", h.GetPage)
	r.Post("/render", h.Render)

	// Links.
	r.Get("/resolve", h.Resolve)
	r.Get("/links/unresolved", h.Unresolved)
	r.Get("/backlinks/*", h.Backlinks)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// NewSiteRouter serves rendered HTML: GET /pages/* by vault path, and any
// other URL as a page or asset URL.
func NewSiteRouter(svc *renderservice.Service, authEnabled bool, token string) chi.Router {
	sh := NewSiteHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))
	r.Get("/pages/*", sh.ServePage)
	r.NotFound(sh.ServeURL)
	return r
}
