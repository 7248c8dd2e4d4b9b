package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/wikimark/internal/renderservice"
)

const maxRenderBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *renderservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *renderservice.Service) *Handler {
	return &Handler{svc: svc}
}

// pagePath extracts the vault path from the URL (everything after the
// route prefix). Supports encoded slashes from OpenAPI clients (e.g.
// topics%2Fnote.md).
func pagePath(r *http.Request) string {
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

// ListPages handles GET /api/pages.
//
//	@Summary		List indexed pages with optional pagination and filtering
//	@Tags			pages
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			tag		query		string	false	"Filter by tag"
//	@Success		200		{object}	PageListResponse
//	@Security		BearerAuth
//	@Router			/pages [get]
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListPages(r.Context(), limit, offset, q.Get("tag"))
	if err != nil {
		writeError(w, "list pages", err)
		return
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: items, Total: total})
}

// GetPage handles GET /api/pages/*.
//
//	@Summary		Render a single note by path
//	@Tags			pages
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	PageDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{path} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	page, err := h.svc.RenderPage(r.Context(), path)
	if err != nil {
		writeError(w, "render page", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Render handles POST /api/render.
//
//	@Summary		Render Markdown that is not stored in the vault
//	@Tags			pages
//	@Accept			json
//	@Produce		json
//	@Param			body	body		RenderRequest	true	"Markdown to render"
//	@Success		200		{object}	PageDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/render [post]
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRenderBytes)
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	page, err := h.svc.RenderSource(r.Context(), []byte(req.Content))
	if err != nil {
		writeError(w, "render source", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Resolve handles GET /api/resolve.
//
//	@Summary		Resolve a wiki link target against the vault
//	@Tags			links
//	@Produce		json
//	@Param			target	query		string	true	"Wiki target, e.g. Page#Heading|Alias"
//	@Success		200		{object}	Resolution
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resolve [get]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'target' is required"))
		return
	}
	res, err := h.svc.Resolve(r.Context(), target)
	if err != nil {
		writeError(w, "resolve", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Unresolved handles GET /api/links/unresolved.
//
//	@Summary		List wiki links that point at no vault file
//	@Tags			links
//	@Produce		json
//	@Success		200	{object}	LinksResponse
//	@Security		BearerAuth
//	@Router			/links/unresolved [get]
func (h *Handler) Unresolved(w http.ResponseWriter, r *http.Request) {
	links, err := h.svc.Unresolved(r.Context())
	if err != nil {
		writeError(w, "unresolved links", err)
		return
	}
	writeJSON(w, http.StatusOK, LinksResponse{Links: links})
}

// Backlinks handles GET /api/backlinks/*.
//
//	@Summary		List links that resolve to a vault file
//	@Tags			links
//	@Produce		json
//	@Param			path	path		string	true	"Vault path"
//	@Success		200		{object}	BacklinksResponse
//	@Security		BearerAuth
//	@Router			/backlinks/{path} [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	links, err := h.svc.Backlinks(r.Context(), path)
	if err != nil {
		slog.Error("backlinks failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, BacklinksResponse{Path: path, Backlinks: links})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across pages
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
