package resolver

import (
	"path"
	"regexp"
	"strings"
)

// Link is a wiki link target prepared for index lookup.
type Link struct {
	Embed     bool
	RawTarget string
	Display   string
	// PathHint is the directory part of the target, if any.
	PathHint string
	Name     string
	Ext      string
}

var linkLiteral = regexp.MustCompile(`^!?\[\[(.+)\]\]$`)

// ParseLink parses a complete [[target|display]] or ![[target]] literal.
func ParseLink(raw string) (Link, bool) {
	trimmed := strings.TrimSpace(raw)
	m := linkLiteral.FindStringSubmatch(trimmed)
	if m == nil {
		return Link{}, false
	}

	target, display, _ := strings.Cut(strings.TrimSpace(m[1]), "|")
	if i := strings.IndexByte(display, '|'); i >= 0 {
		display = display[:i]
	}
	l, ok := LinkFor(target)
	if !ok {
		return Link{}, false
	}
	l.Embed = strings.HasPrefix(trimmed, "!")
	l.Display = strings.TrimSpace(display)
	return l, true
}

// LinkFor builds a lookup link from a bare target such as "dir/Note.md#H".
func LinkFor(target string) (Link, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Link{}, false
	}

	stripped := target
	if i := strings.IndexAny(stripped, "#^"); i >= 0 {
		stripped = stripped[:i]
	}
	stripped = strings.TrimSpace(NormalizePath(stripped))
	if stripped == "" {
		return Link{}, false
	}

	dir, file := path.Split(stripped)
	name, ext := splitBasename(file)
	return Link{
		RawTarget: target,
		PathHint:  strings.TrimSuffix(dir, "/"),
		Name:      name,
		Ext:       ext,
	}, true
}
