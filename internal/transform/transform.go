// Package transform rewrites Obsidian syntax in a parsed Markdown tree:
// wiki links, embeds, callouts and highlights.
package transform

import (
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/starford/wikimark/internal/callout"
	"github.com/starford/wikimark/internal/embed"
	"github.com/starford/wikimark/internal/mark"
	"github.com/starford/wikimark/internal/markdown"
	"github.com/starford/wikimark/internal/mdast"
	"github.com/starford/wikimark/internal/resolver"
	"github.com/starford/wikimark/internal/wikilink"
)

const maxEmbedDepth = 8

// LinkRecord describes one wiki link or embed met during a transform.
type LinkRecord struct {
	Raw          string `json:"raw"`
	Target       string `json:"target"`
	Embed        bool   `json:"embed"`
	ResolvedPath string `json:"resolved_path,omitempty"`
	URL          string `json:"url,omitempty"`
	Resolved     bool   `json:"resolved"`
}

// Report lists the links of a transformed page in document order.
type Report struct {
	Links []LinkRecord
}

// Transformer applies the Obsidian rewrites to trees. It is safe for
// concurrent use as long as the index is only changed through its methods.
type Transformer struct {
	opts     Options
	index    *resolver.Index
	root     string
	manifest map[string]ManifestFile
	parser   *markdown.Parser
	logger   *slog.Logger
}

// New returns a Transformer. The lookup index comes from opts.Index, a scan
// of opts.ContentRoot or the manifest file names, in that order.
func New(opts Options) *Transformer {
	t := &Transformer{
		opts:   opts,
		root:   opts.ContentRoot,
		parser: opts.Parser,
		logger: opts.Logger,
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.parser == nil {
		t.parser = markdown.NewParser()
	}
	t.opts.Callout.TypeMap = callout.NormalizeTypeMap(opts.Callout.TypeMap)

	if len(opts.MarkdownFiles) > 0 {
		t.manifest = make(map[string]ManifestFile, len(opts.MarkdownFiles))
		for _, f := range opts.MarkdownFiles {
			t.manifest[resolver.NormalizePath(f.File)] = f
		}
	}

	switch {
	case opts.Index != nil:
		t.index = opts.Index
		if t.root == "" {
			t.root = opts.Index.Root()
		}
	case opts.ContentRoot != "":
		idx, err := resolver.BuildIndexFromRoot(opts.ContentRoot)
		if err != nil {
			t.logger.Warn("transform: scan content root", "root", opts.ContentRoot, "error", err)
			idx = resolver.NewIndex()
		}
		t.index = idx
	case t.manifest != nil:
		paths := make([]string, 0, len(opts.MarkdownFiles))
		for _, f := range opts.MarkdownFiles {
			paths = append(paths, f.File)
		}
		t.index = resolver.BuildIndex(paths)
	}
	return t
}

// Index returns the lookup index, or nil when links are not resolved.
func (t *Transformer) Index() *resolver.Index { return t.index }

// Parser returns the parser used for embedded notes.
func (t *Transformer) Parser() *markdown.Parser { return t.parser }

// Transform rewrites root in place.
func (t *Transformer) Transform(root *mdast.Root) Report {
	return t.TransformPage(root, "")
}

// TransformPage rewrites root in place. path is the file the tree was read
// from; it keeps a note from embedding itself.
func (t *Transformer) TransformPage(root *mdast.Root, path string) Report {
	p := &pass{t: t, seen: make(map[*mdast.WikiLink]struct{}), report: &Report{}}
	if path != "" {
		p.stack = []string{resolver.NormalizePath(path)}
	}
	p.run(root)
	return *p.report
}

// pass holds the state of one Transform call. Embedded notes run in a child
// pass that shares seen but records no links.
type pass struct {
	t      *Transformer
	seen   map[*mdast.WikiLink]struct{}
	stack  []string
	report *Report
}

func (p *pass) run(root *mdast.Root) {
	p.standaloneEmbeds(root)
	p.wikiLinks(root)
	p.callouts(root)
	p.marks(root)
}

// standaloneEmbeds replaces paragraphs holding nothing but one embed with the
// embed itself, so block output is not nested in a paragraph.
func (p *pass) standaloneEmbeds(root *mdast.Root) {
	mdast.Visit(root, mdast.TypeParagraph, func(n mdast.Node, i int, parent mdast.Parent) mdast.Action {
		wl := soleEmbed(n.(*mdast.Paragraph))
		if wl == nil || parent == nil {
			return mdast.Continue
		}
		p.seen[wl] = struct{}{}
		out := p.embed(wl)
		if out == nil {
			return mdast.Skip
		}
		if !mdast.IsBlock(out) {
			out = &mdast.FlowElement{Name: "div", Children: []mdast.Node{out}}
		}
		mdast.Replace(parent, i, out)
		return mdast.Skip
	})
}

func soleEmbed(para *mdast.Paragraph) *mdast.WikiLink {
	var found *mdast.WikiLink
	for _, c := range para.Children {
		if txt, ok := c.(*mdast.Text); ok && strings.TrimSpace(txt.Value) == "" {
			continue
		}
		wl, ok := c.(*mdast.WikiLink)
		if !ok || !wl.Embed || found != nil {
			return nil
		}
		found = wl
	}
	return found
}

func (p *pass) wikiLinks(root *mdast.Root) {
	mdast.Visit(root, mdast.TypeWikiLink, func(n mdast.Node, i int, parent mdast.Parent) mdast.Action {
		wl := n.(*mdast.WikiLink)
		if _, done := p.seen[wl]; done || parent == nil {
			return mdast.Continue
		}
		p.seen[wl] = struct{}{}

		var out mdast.Node
		if wl.Embed {
			out = p.embed(wl)
		} else {
			out = p.link(wl)
		}
		if out == nil {
			return mdast.Continue
		}
		mdast.Replace(parent, i, out)
		return mdast.Skip
	})
}

func (p *pass) callouts(root *mdast.Root) {
	mdast.Visit(root, mdast.TypeBlockquote, func(n mdast.Node, i int, parent mdast.Parent) mdast.Action {
		if parent == nil {
			return mdast.Continue
		}
		if el := callout.Build(n.(*mdast.Blockquote), p.t.opts.Callout); el != nil {
			mdast.Replace(parent, i, el)
		}
		return mdast.Continue
	})
}

func (p *pass) marks(root *mdast.Root) {
	mdast.Visit(root, mdast.TypeMark, func(n mdast.Node, i int, parent mdast.Parent) mdast.Action {
		if parent != nil {
			mdast.Replace(parent, i, mark.Transform(n.(*mdast.Mark)))
		}
		return mdast.Continue
	})
}

func (p *pass) link(wl *mdast.WikiLink) mdast.Node {
	target, ok := wikilink.ParseTarget(wl.Value)
	if !ok {
		return nil
	}
	target.Alias = wl.Alias

	resolved, _ := p.t.resolve(target)
	url := p.t.pageURL(target, resolved)
	notFound := p.t.index != nil && target.Page != "" && resolved == ""

	link := wikilink.BuildLink(target, url, wikilink.LinkOptions{BaseURL: p.t.opts.BaseURL})
	link.NotFound = notFound
	p.record(wl, target, resolved, link.URL)
	return link.Node()
}

func (p *pass) embed(wl *mdast.WikiLink) mdast.Node {
	target, ok := wikilink.ParseTarget(wl.Value)
	if !ok {
		return nil
	}
	alias := strings.TrimSpace(wl.Alias)
	target.Alias = alias

	resolved, _ := p.t.resolve(target)
	in := embed.RenderInput{
		Target:       target,
		Alias:        alias,
		ContentRoot:  p.t.root,
		ResolvedPath: resolved,
		Lookup:       p.t.index != nil,
	}
	in.ResolvedURL = embed.ResolveURL(target, p.t.root, resolved, p.t.opts.ContentRootURLPrefix, p.t.opts.EmbeddingPathTransform)
	if resolved != "" {
		in.PageURL = p.t.pageURL(target, resolved)
	}
	p.record(wl, target, resolved, in.ResolvedURL)

	hooks := p.t.opts.EmbedRendering
	if hooks.Note == nil && p.t.canLoad() {
		hooks.Note = p.embedNote
	}
	return embed.Render(in, hooks)
}

// embedNote inlines the transformed content of a resolved note.
func (p *pass) embedNote(ctx embed.RenderContext) mdast.Node {
	if ctx.ResolvedPath == "" {
		return nil
	}
	path := resolver.NormalizePath(ctx.ResolvedPath)
	if slices.Contains(p.stack, path) {
		p.t.logger.Debug("transform: embed cycle", "path", path)
		return nil
	}
	if len(p.stack) >= maxEmbedDepth {
		p.t.logger.Debug("transform: embed depth exceeded", "path", path)
		return nil
	}
	src, ok := p.t.load(path)
	if !ok {
		return nil
	}

	doc := p.t.parser.ParseDocument(src)
	child := &pass{t: p.t, seen: p.seen, stack: append(slices.Clone(p.stack), path)}
	child.run(doc.Root)
	return &mdast.FlowElement{
		Name: "div",
		Attributes: []mdast.Attribute{
			{Name: "class", Value: "embed-note"},
			{Name: "data-path", Value: ctx.PageURL},
		},
		Children: doc.Root.Children,
	}
}

func (p *pass) record(wl *mdast.WikiLink, target wikilink.Target, resolved, url string) {
	if p.report == nil {
		return
	}
	p.report.Links = append(p.report.Links, LinkRecord{
		Raw:          wl.Raw(),
		Target:       target.Page,
		Embed:        wl.Embed,
		ResolvedPath: resolved,
		URL:          url,
		Resolved:     target.Page == "" || resolved != "" || p.t.index == nil,
	})
}

// resolve looks the target page up in the index.
func (t *Transformer) resolve(target wikilink.Target) (string, bool) {
	if t.index == nil || target.Page == "" {
		return "", false
	}
	l, ok := resolver.LinkFor(target.Page)
	if !ok {
		return "", false
	}
	found := t.index.Candidates(l)
	switch len(found) {
	case 0:
		t.logger.Debug("transform: unresolved link", "target", target.Page)
		return "", false
	case 1:
	default:
		t.logger.Debug("transform: ambiguous link", "target", target.Page, "candidates", found, "chosen", found[0])
	}
	return found[0], true
}

// pageURL returns the URL of a page without its anchor. An empty result
// means BuildLink falls back to a slug URL.
func (t *Transformer) pageURL(target wikilink.Target, resolved string) string {
	var url string
	if resolved != "" {
		if m, ok := t.manifest[resolved]; ok {
			url = m.Permalink
		} else {
			url = resolver.ResolveURL(resolved, t.root, t.opts.ContentRootURLPrefix, false)
		}
	}
	if t.opts.WikiLinkPathTransform != nil && target.Page != "" {
		if out, ok := t.opts.WikiLinkPathTransform(LinkContext{
			Target:      target,
			ContentRoot: t.root,
			ResolvedURL: url,
		}); ok {
			url = out
		}
	}
	return url
}

func (t *Transformer) canLoad() bool {
	return t.opts.LoadNote != nil || t.manifest != nil
}

func (t *Transformer) load(path string) ([]byte, bool) {
	if t.opts.LoadNote != nil {
		return t.opts.LoadNote(path)
	}
	if m, ok := t.manifest[path]; ok && m.Content != "" {
		return []byte(m.Content), true
	}
	return nil, false
}

// Resolution describes where a wiki target points.
type Resolution struct {
	Target       wikilink.Target `json:"-"`
	Page         string          `json:"page"`
	Anchor       string          `json:"anchor,omitempty"`
	Candidates   []string        `json:"candidates"`
	ResolvedPath string          `json:"resolved_path,omitempty"`
	URL          string          `json:"url"`
	Found        bool            `json:"found"`
}

// Resolve resolves a bare wiki target such as "Page#Heading" without a tree.
func (t *Transformer) Resolve(value string) (Resolution, error) {
	target, err := wikilink.MustParseTarget(value)
	if err != nil {
		return Resolution{}, err
	}

	res := Resolution{Target: target, Page: target.Page, Anchor: target.Anchor, Candidates: []string{}}
	if t.index != nil && target.Page != "" {
		if l, ok := resolver.LinkFor(target.Page); ok {
			res.Candidates = append(res.Candidates, t.index.Candidates(l)...)
		}
	}
	if len(res.Candidates) > 0 {
		res.ResolvedPath = res.Candidates[0]
	}
	res.Found = target.Page == "" || res.ResolvedPath != ""

	link := wikilink.BuildLink(target, t.pageURL(target, res.ResolvedPath), wikilink.LinkOptions{BaseURL: t.opts.BaseURL})
	res.URL = link.URL
	return res, nil
}

// PageURL returns the URL a resolved file is served at: its manifest
// permalink, its path below the content root, or for manifest entries
// without a permalink the slug of its basename.
func (t *Transformer) PageURL(file string) string {
	np := resolver.NormalizePath(file)
	if url := t.pageURL(wikilink.Target{}, np); url != "" {
		return url
	}
	base := strings.TrimSuffix(path.Base(np), path.Ext(np))
	return wikilink.BuildLink(wikilink.Target{Page: base}, "", wikilink.LinkOptions{BaseURL: t.opts.BaseURL}).URL
}
