// Package mark converts ==highlight== spans into <mark> elements.
package mark

import "github.com/starford/wikimark/internal/mdast"

// TagName is the element emitted for highlights.
const TagName = "mark"

// Transform returns the element replacing m. Children are moved, not copied.
func Transform(m *mdast.Mark) *mdast.TextElement {
	return &mdast.TextElement{Name: TagName, Children: m.Children}
}
