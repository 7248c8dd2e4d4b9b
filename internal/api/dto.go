package api

import (
	"github.com/starford/wikimark/internal/linkdb"
	"github.com/starford/wikimark/internal/models"
	"github.com/starford/wikimark/internal/renderservice"
	"github.com/starford/wikimark/internal/transform"
)

// RenderRequest is the request body for rendering ad-hoc Markdown.
type RenderRequest struct {
	Content string `json:"content" example:"See [[Other Page#Intro|intro]]" validate:"required"`
}

// PageDetail is the rendered page response type (aliased from the domain layer).
type PageDetail = renderservice.PageDetail

// PageItem is a lightweight item in a list response (aliased from the domain layer).
type PageItem = renderservice.PageItem

// Resolution is the response of the resolve endpoint.
type Resolution = transform.Resolution

// Link is a wiki link edge between pages.
type Link = models.Link

// PageListResponse wraps paginated page listings.
type PageListResponse struct {
	Pages []PageItem `json:"pages" validate:"required"`
	Total int        `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []linkdb.SearchResult `json:"results" validate:"required"`
}

// LinksResponse wraps a list of links.
type LinksResponse struct {
	Links []Link `json:"links" validate:"required"`
}

// BacklinksResponse lists the links pointing at a page.
type BacklinksResponse struct {
	Path      string `json:"path" example:"notes/hello.md" validate:"required"`
	Backlinks []Link `json:"backlinks" validate:"required"`
}
