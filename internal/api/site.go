package api

import (
	"bytes"
	"errors"
	"net/http"
	"path"
	"time"

	"github.com/starford/wikimark/internal/apperr"
	"github.com/starford/wikimark/internal/renderservice"
)

// SiteHandler serves rendered pages and vault assets as a browsable site.
type SiteHandler struct {
	svc *renderservice.Service
}

// NewSiteHandler creates a handler backed by svc.
func NewSiteHandler(svc *renderservice.Service) *SiteHandler {
	return &SiteHandler{svc: svc}
}

// ServePage handles GET /pages/{path}: the note at a vault path as HTML.
func (h *SiteHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	p := pagePath(r)
	if p == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	page, err := h.svc.RenderPage(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writePage(w, page)
}

// ServeURL resolves any other URL: first as a page URL, then as an asset.
func (h *SiteHandler) ServeURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	page, err := h.svc.PageForURL(r.Context(), r.URL.Path)
	if err == nil {
		h.writePage(w, page)
		return
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		h.fail(w, r, err)
		return
	}

	rel, ok := h.svc.AssetForURL(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	data, err := h.svc.Read(rel)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.ServeContent(w, r, path.Base(rel), time.Time{}, bytes.NewReader(data))
}

func (h *SiteHandler) writePage(w http.ResponseWriter, page *renderservice.PageDetail) {
	var buf bytes.Buffer
	if err := renderservice.WriteDocument(&buf, page); err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if page.Checksum != "" {
		w.Header().Set("ETag", `"`+page.Checksum+`"`)
	}
	_, _ = w.Write(buf.Bytes())
}

func (h *SiteHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, apperr.ErrInvalidPath):
		http.Error(w, "invalid path", http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
