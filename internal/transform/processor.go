package transform

import (
	"bytes"
	"fmt"

	"github.com/starford/wikimark/internal/htmlrender"
	"github.com/starford/wikimark/internal/markdown"
)

// Result is a fully processed page.
type Result struct {
	*markdown.Document
	HTML  string
	Links []LinkRecord
}

// Processor parses, transforms and renders Markdown sources.
type Processor struct {
	t    *Transformer
	html []htmlrender.Option
}

// NewProcessor returns a Processor backed by t. opts apply to every render.
func NewProcessor(t *Transformer, opts ...htmlrender.Option) *Processor {
	return &Processor{t: t, html: opts}
}

// Transformer returns the underlying transformer.
func (p *Processor) Transformer() *Transformer { return p.t }

// Process runs the full pipeline over src.
func (p *Processor) Process(src []byte) (Result, error) {
	return p.ProcessPage("", src)
}

// ProcessPage runs the full pipeline over src read from path.
func (p *Processor) ProcessPage(path string, src []byte) (Result, error) {
	doc := p.t.parser.ParseDocument(src)
	report := p.t.TransformPage(doc.Root, path)

	var buf bytes.Buffer
	if err := htmlrender.Render(&buf, doc.Root, p.html...); err != nil {
		return Result{}, fmt.Errorf("transform: render: %w", err)
	}
	return Result{Document: doc, HTML: buf.String(), Links: report.Links}, nil
}
