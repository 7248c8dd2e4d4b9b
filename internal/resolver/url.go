package resolver

import (
	"regexp"
	"strings"
)

var trailingExt = regexp.MustCompile(`\.[^/.]+$`)

// ResolveURL maps a resolved file path to a site URL. The content root is
// stripped from the path and prefix is prepended. The extension is dropped
// unless keepExt is set.
func ResolveURL(resolvedPath, contentRoot, prefix string, keepExt bool) string {
	p := NormalizePath(resolvedPath)
	if contentRoot != "" {
		root := strings.TrimSuffix(NormalizePath(contentRoot), "/")
		if root != "" && strings.HasPrefix(p, root) && (len(p) == len(root) || p[len(root)] == '/') {
			p = p[len(root):]
		}
	}
	p = strings.TrimLeft(p, "/")
	if !keepExt {
		p = trailingExt.ReplaceAllString(p, "")
	}

	pre := strings.Trim(NormalizePath(prefix), "/")
	switch {
	case pre == "":
		return "/" + p
	case p == "":
		return "/" + pre
	}
	return "/" + pre + "/" + p
}
