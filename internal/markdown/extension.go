package markdown

import (
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/starford/wikimark/internal/wikilink"
)

// KindWikiLink is the goldmark node kind of [[...]] tokens.
var KindWikiLink = gast.NewNodeKind("WikiLink")

// WikiLinkNode is the goldmark inline node for a wiki link.
type WikiLinkNode struct {
	gast.BaseInline
	Target string
	Alias  string
	Embed  bool
}

func (n *WikiLinkNode) Kind() gast.NodeKind { return KindWikiLink }

func (n *WikiLinkNode) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{
		"Target": n.Target,
		"Alias":  n.Alias,
	}, nil)
}

type wikiLinkParser struct {
	divider byte
}

func (p *wikiLinkParser) Trigger() []byte {
	return []byte{'!', '['}
}

func (p *wikiLinkParser) Parse(_ gast.Node, block text.Reader, _ parser.Context) gast.Node {
	line, _ := block.PeekLine()
	tok, ok := wikilink.Scan(line, p.divider)
	if !ok {
		return nil
	}
	block.Advance(tok.Length)
	return &WikiLinkNode{Target: tok.Target, Alias: tok.Alias, Embed: tok.Embed}
}

// WikiLinks registers the wiki link tokenizer. It runs ahead of the
// standard link parser so [[x]] is never read as a link label.
type WikiLinks struct {
	Divider byte
}

func (e *WikiLinks) Extend(m goldmark.Markdown) {
	divider := e.Divider
	if divider == 0 {
		divider = wikilink.DefaultDivider
	}
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&wikiLinkParser{divider: divider}, 199),
	))
}

// KindMark is the goldmark node kind of ==highlight== spans.
var KindMark = gast.NewNodeKind("Mark")

// MarkNode is the goldmark inline node for a highlight span.
type MarkNode struct {
	gast.BaseInline
}

func (n *MarkNode) Kind() gast.NodeKind { return KindMark }

func (n *MarkNode) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, nil, nil)
}

type markDelimiterProcessor struct{}

func (p *markDelimiterProcessor) IsDelimiter(b byte) bool { return b == '=' }

func (p *markDelimiterProcessor) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	return opener.Char == closer.Char
}

func (p *markDelimiterProcessor) OnMatch(int) gast.Node { return &MarkNode{} }

var defaultMarkDelimiterProcessor = &markDelimiterProcessor{}

type markParser struct{}

func (p *markParser) Trigger() []byte {
	return []byte{'='}
}

func (p *markParser) Parse(_ gast.Node, block text.Reader, pc parser.Context) gast.Node {
	before := block.PrecendingCharacter()
	line, segment := block.PeekLine()
	node := parser.ScanDelimiter(line, before, 2, defaultMarkDelimiterProcessor)
	if node == nil || node.OriginalLength != 2 || before == '=' {
		return nil
	}

	node.Segment = segment.WithStop(segment.Start + node.OriginalLength)
	block.Advance(node.OriginalLength)
	pc.PushDelimiter(node)
	return node
}

// Mark registers the ==highlight== delimiter.
var Mark goldmark.Extender = &markExtension{}

type markExtension struct{}

func (e *markExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&markParser{}, 500),
	))
}
