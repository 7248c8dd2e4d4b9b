// Package embed classifies ![[...]] targets and renders them as tree nodes.
package embed

import (
	"path"
	"strings"

	"github.com/starford/wikimark/internal/resolver"
	"github.com/starford/wikimark/internal/wikilink"
)

// Kind is the media kind of an embed target.
type Kind string

const (
	KindNote        Kind = "note"
	KindImage       Kind = "image"
	KindVideo       Kind = "video"
	KindUnsupported Kind = "unsupported"
)

var (
	imageExts = map[string]bool{
		"apng": true, "avif": true, "gif": true, "jpeg": true,
		"jpg": true, "png": true, "svg": true, "webp": true,
	}
	videoExts = map[string]bool{
		"m4v": true, "mov": true, "mp4": true, "ogv": true, "webm": true,
	}
)

// Extension returns the lower-cased extension of the page's file name, or
// "" when the name has none. Only alphanumeric suffixes count, so a page
// named "Mr. Smith" is a note.
func Extension(page string) string {
	name := path.Base(resolver.NormalizePath(page))
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	ext := name[i+1:]
	for _, r := range ext {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return strings.ToLower(ext)
}

// Classify returns the kind of media t refers to.
func Classify(t wikilink.Target) Kind {
	switch ext := Extension(t.Page); {
	case ext == "" || ext == "md" || ext == "mdx":
		return KindNote
	case imageExts[ext]:
		return KindImage
	case videoExts[ext]:
		return KindVideo
	}
	return KindUnsupported
}

// URLContext is what a PathTransform sees when an embed URL is computed.
type URLContext struct {
	Kind         Kind
	Target       wikilink.Target
	ContentRoot  string
	ResolvedPath string
	// ResolvedURL is the default URL, extension included.
	ResolvedURL string
}

// PathTransform may override the URL of an embed by returning (url, true).
type PathTransform func(URLContext) (string, bool)

// ResolveURL computes the URL of a resolved embed. prefix is the site prefix
// of the content root. Embed URLs keep the file extension so the browser can
// fetch the asset directly.
func ResolveURL(t wikilink.Target, contentRoot, resolvedPath, prefix string, transform PathTransform) string {
	var url string
	if resolvedPath != "" {
		url = resolver.ResolveURL(resolvedPath, contentRoot, prefix, true)
	}
	if transform == nil {
		return url
	}
	if out, ok := transform(URLContext{
		Kind:         Classify(t),
		Target:       t,
		ContentRoot:  contentRoot,
		ResolvedPath: resolvedPath,
		ResolvedURL:  url,
	}); ok {
		return out
	}
	return url
}
