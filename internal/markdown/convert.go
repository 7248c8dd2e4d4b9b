package markdown

import (
	"bytes"
	"strings"

	gast "github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"

	"github.com/starford/wikimark/internal/mdast"
)

// converter maps a goldmark document onto the mdast tree. Adjacent text
// runs are merged and soft line breaks become "\n" inside text values.
type converter struct {
	src []byte
}

func (c *converter) root(doc gast.Node) *mdast.Root {
	return &mdast.Root{Children: c.children(doc)}
}

func (c *converter) children(n gast.Node) []mdast.Node {
	var out []mdast.Node
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		for _, m := range c.convert(ch) {
			if t, ok := m.(*mdast.Text); ok && len(out) > 0 {
				if prev, ok := out[len(out)-1].(*mdast.Text); ok {
					prev.Value += t.Value
					continue
				}
			}
			out = append(out, m)
		}
	}
	return out
}

func (c *converter) convert(n gast.Node) []mdast.Node {
	switch v := n.(type) {
	case *gast.Paragraph:
		return one(&mdast.Paragraph{Children: c.children(v)})
	case *gast.TextBlock:
		return one(&mdast.Paragraph{Children: c.children(v)})
	case *gast.Heading:
		return one(&mdast.Heading{Depth: v.Level, Children: c.children(v)})
	case *gast.Blockquote:
		return one(&mdast.Blockquote{Children: c.children(v)})
	case *gast.List:
		return one(&mdast.List{Ordered: v.IsOrdered(), Start: v.Start, Tight: v.IsTight, Children: c.children(v)})
	case *gast.ListItem:
		return one(c.listItem(v))
	case *gast.FencedCodeBlock:
		return one(&mdast.Code{Lang: string(v.Language(c.src)), Value: c.lines(v)})
	case *gast.CodeBlock:
		return one(&mdast.Code{Value: c.lines(v)})
	case *gast.HTMLBlock:
		value := c.lines(v)
		if v.HasClosure() {
			value += string(v.ClosureLine.Value(c.src))
		}
		return one(&mdast.HTML{Value: value, Block: true})
	case *gast.ThematicBreak:
		return one(&mdast.ThematicBreak{})
	case *gast.Text:
		return c.text(v)
	case *gast.String:
		return one(&mdast.Text{Value: string(v.Value)})
	case *gast.CodeSpan:
		return one(&mdast.InlineCode{Value: c.codeSpan(v)})
	case *gast.Emphasis:
		if v.Level >= 2 {
			return one(&mdast.Strong{Children: c.children(v)})
		}
		return one(&mdast.Emphasis{Children: c.children(v)})
	case *gast.Link:
		return one(&mdast.Link{URL: string(v.Destination), Title: string(v.Title), Children: c.children(v)})
	case *gast.Image:
		return one(&mdast.Image{
			URL:   string(v.Destination),
			Title: string(v.Title),
			Alt:   mdast.NodesToString(c.children(v)),
		})
	case *gast.AutoLink:
		url := string(v.URL(c.src))
		if v.AutoLinkType == gast.AutoLinkEmail && !strings.HasPrefix(strings.ToLower(url), "mailto:") {
			url = "mailto:" + url
		}
		return one(&mdast.Link{URL: url, Children: []mdast.Node{&mdast.Text{Value: string(v.Label(c.src))}}})
	case *gast.RawHTML:
		var b bytes.Buffer
		for i := 0; i < v.Segments.Len(); i++ {
			seg := v.Segments.At(i)
			b.Write(seg.Value(c.src))
		}
		return one(&mdast.HTML{Value: b.String()})
	case *east.Strikethrough:
		return one(&mdast.Delete{Children: c.children(v)})
	case *east.Table:
		align := make([]mdast.Align, len(v.Alignments))
		for i, a := range v.Alignments {
			align[i] = alignment(a)
		}
		return one(&mdast.Table{Align: align, Children: c.children(v)})
	case *east.TableHeader:
		return one(&mdast.TableRow{Header: true, Children: c.children(v)})
	case *east.TableRow:
		return one(&mdast.TableRow{Children: c.children(v)})
	case *east.TableCell:
		return one(&mdast.TableCell{Children: c.children(v)})
	case *east.TaskCheckBox:
		// carried by the enclosing list item
		return nil
	case *WikiLinkNode:
		return one(&mdast.WikiLink{Value: v.Target, Alias: v.Alias, Embed: v.Embed})
	case *MarkNode:
		return one(&mdast.Mark{Children: c.children(v)})
	}
	return one(&mdast.Unknown{Kind: n.Kind().String(), Children: c.children(n)})
}

func (c *converter) text(v *gast.Text) []mdast.Node {
	raw := v.Segment.Value(c.src)
	value := string(raw)
	if !v.IsRaw() {
		value = string(util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(raw))))
	}
	if v.HardLineBreak() {
		return []mdast.Node{&mdast.Text{Value: value}, &mdast.Break{}}
	}
	if v.SoftLineBreak() {
		value += "\n"
	}
	return one(&mdast.Text{Value: value})
}

func (c *converter) codeSpan(v *gast.CodeSpan) string {
	var b strings.Builder
	for ch := v.FirstChild(); ch != nil; ch = ch.NextSibling() {
		switch t := ch.(type) {
		case *gast.Text:
			b.Write(t.Segment.Value(c.src))
		case *gast.String:
			b.Write(t.Value)
		}
	}
	return strings.ReplaceAll(b.String(), "\n", " ")
}

func (c *converter) listItem(v *gast.ListItem) *mdast.ListItem {
	item := &mdast.ListItem{Children: c.children(v)}
	if first := v.FirstChild(); first != nil {
		if box, ok := first.FirstChild().(*east.TaskCheckBox); ok {
			checked := box.IsChecked
			item.Checked = &checked
		}
	}
	return item
}

func (c *converter) lines(n gast.Node) string {
	var b bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(c.src))
	}
	return b.String()
}

func alignment(a east.Alignment) mdast.Align {
	switch a {
	case east.AlignLeft:
		return mdast.AlignLeft
	case east.AlignCenter:
		return mdast.AlignCenter
	case east.AlignRight:
		return mdast.AlignRight
	}
	return mdast.AlignNone
}

func one(n mdast.Node) []mdast.Node {
	return []mdast.Node{n}
}
