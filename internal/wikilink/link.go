package wikilink

import (
	"strings"

	"github.com/gosimple/slug"

	"github.com/starford/wikimark/internal/mdast"
)

// LinkOptions configures slug fallback URLs.
type LinkOptions struct {
	// BaseURL prefixes slug URLs of pages that could not be resolved.
	BaseURL string
}

// ResolvedLink is the hyperlink built from a target.
type ResolvedLink struct {
	URL      string
	Title    string
	Children []mdast.Node
	NotFound bool
}

// Node converts the link into a tree node.
func (l ResolvedLink) Node() *mdast.Link {
	n := &mdast.Link{URL: l.URL, Title: l.Title, Children: l.Children}
	if l.NotFound {
		n.Class = []string{"not-found"}
	}
	return n
}

var headingOnlyStrip = strings.NewReplacer(".", "", ",", "")

// PageSlug returns the slug form of a page name.
func PageSlug(page string) string {
	return slug.Make(page)
}

// AnchorHash returns the URL fragment for the target's anchor, or "".
func AnchorHash(t Target) string {
	if t.Anchor == "" {
		return ""
	}
	switch t.AnchorKind {
	case AnchorBlock:
		return "#^" + t.Anchor
	case AnchorHeading:
		if t.Page == "" {
			return "#" + slug.Make(headingOnlyStrip.Replace(t.Anchor))
		}
		return "#" + slug.Make(t.Anchor)
	}
	return ""
}

// DisplayText returns the text shown for a link to t.
func DisplayText(t Target) string {
	alias := strings.TrimSpace(t.Alias)
	if alias != "" && alias != strings.TrimSpace(t.Value) {
		return alias
	}
	if t.Page != "" {
		return t.Page
	}
	return t.Anchor
}

// BuildLink builds a hyperlink for t. pageURL is the resolved URL of the
// target page; when empty a slug URL under opts.BaseURL is used instead.
func BuildLink(t Target, pageURL string, opts LinkOptions) ResolvedLink {
	text := DisplayText(t)
	hash := AnchorHash(t)

	var url string
	if t.Page == "" {
		url = hash
		if url == "" {
			url = "#"
		}
	} else {
		if pageURL == "" {
			pageURL = strings.TrimSuffix(opts.BaseURL, "/") + "/" + PageSlug(t.Page)
		}
		url = pageURL + hash
	}

	link := ResolvedLink{URL: url, Title: text}
	if text != "" {
		link.Children = []mdast.Node{&mdast.Text{Value: text}}
	}
	return link
}
