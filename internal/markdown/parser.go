// Package markdown parses Markdown with Obsidian extensions into an mdast
// tree and splits frontmatter from note bodies.
package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/starford/wikimark/internal/mdast"
	"github.com/starford/wikimark/internal/wikilink"
)

// Parser parses Markdown source. It is safe for concurrent use.
type Parser struct {
	md goldmark.Markdown
}

// Option configures a Parser.
type Option func(*options)

type options struct {
	divider byte
	linkify bool
}

// WithAliasDivider sets the byte separating target from alias in wiki links.
func WithAliasDivider(b byte) Option {
	return func(o *options) { o.divider = b }
}

// WithLinkify toggles bare URL detection.
func WithLinkify(enabled bool) Option {
	return func(o *options) { o.linkify = enabled }
}

// NewParser returns a GFM parser with wiki link and highlight syntax.
func NewParser(opts ...Option) *Parser {
	o := options{divider: wikilink.DefaultDivider, linkify: true}
	for _, opt := range opts {
		opt(&o)
	}

	exts := []goldmark.Extender{
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
		&WikiLinks{Divider: o.divider},
		Mark,
	}
	if o.linkify {
		exts = append(exts, extension.Linkify)
	}
	return &Parser{md: goldmark.New(goldmark.WithExtensions(exts...))}
}

// Parse parses src into a tree. Parsing never fails: malformed input is
// read as text.
func (p *Parser) Parse(src []byte) *mdast.Root {
	doc := p.md.Parser().Parse(text.NewReader(src))
	c := converter{src: src}
	return c.root(doc)
}

var defaultParser = NewParser()

// Parse parses src with the default parser.
func Parse(src []byte) *mdast.Root {
	return defaultParser.Parse(src)
}
