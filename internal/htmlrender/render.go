// Package htmlrender serializes mdast trees to HTML.
package htmlrender

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/gosimple/slug"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/starford/wikimark/internal/mdast"
)

var voidElements = map[string]bool{
	"area": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "source": true, "track": true, "wbr": true,
}

const rawHTMLOmitted = "<!-- raw HTML omitted -->"

// Option configures rendering.
type Option func(*renderer)

// WithUnsafe writes raw HTML and dangerous link targets such as
// javascript: URLs as they are. By default both are dropped.
func WithUnsafe(unsafe bool) Option {
	return func(r *renderer) { r.unsafe = unsafe }
}

// Render writes the HTML form of n to w.
func Render(w io.Writer, n mdast.Node, opts ...Option) error {
	bw := bufio.NewWriter(w)
	r := renderer{w: bw, ids: make(map[string]bool)}
	for _, opt := range opts {
		opt(&r)
	}
	r.node(n, false)
	return bw.Flush()
}

// String returns the HTML form of n.
func String(n mdast.Node, opts ...Option) string {
	var b bytes.Buffer
	_ = Render(&b, n, opts...)
	return b.String()
}

type renderer struct {
	w      *bufio.Writer
	unsafe bool
	ids    map[string]bool
}

func (r *renderer) str(s string) { _, _ = r.w.WriteString(s) }

func (r *renderer) text(s string) { _, _ = r.w.Write(util.EscapeHTML([]byte(s))) }

func (r *renderer) attr(name, value string) {
	r.str(" " + name + `="`)
	r.text(value)
	r.str(`"`)
}

func (r *renderer) url(u string) string {
	if !r.unsafe && html.IsDangerousURL([]byte(u)) {
		return ""
	}
	return string(util.URLEscape([]byte(u), false))
}

// headingID returns a unique id for a heading with the given text. Repeats
// get a numeric suffix: intro, intro-1, intro-2.
func (r *renderer) headingID(text string) string {
	base := slug.Make(text)
	if base == "" {
		return ""
	}
	id := base
	for i := 1; r.ids[id]; i++ {
		id = base + "-" + strconv.Itoa(i)
	}
	r.ids[id] = true
	return id
}

func (r *renderer) children(n mdast.Node, tight bool) {
	for _, c := range mdast.Children(n) {
		r.node(c, tight)
	}
}

func (r *renderer) node(n mdast.Node, tight bool) {
	switch v := n.(type) {
	case *mdast.Root:
		r.children(v, false)
	case *mdast.Paragraph:
		if tight {
			r.children(v, false)
			return
		}
		r.str("<p>")
		r.children(v, false)
		r.str("</p>\n")
	case *mdast.Heading:
		tag := "h" + strconv.Itoa(v.Depth)
		r.str("<" + tag)
		if id := r.headingID(mdast.ToString(v)); id != "" {
			r.attr("id", id)
		}
		r.str(">")
		r.children(v, false)
		r.str("</" + tag + ">\n")
	case *mdast.Blockquote:
		r.str("<blockquote>\n")
		r.children(v, false)
		r.str("</blockquote>\n")
	case *mdast.List:
		tag := "ul"
		if v.Ordered {
			tag = "ol"
		}
		r.str("<" + tag)
		if v.Ordered && v.Start != 1 && v.Start != 0 {
			r.attr("start", strconv.Itoa(v.Start))
		}
		r.str(">\n")
		for _, item := range v.Children {
			r.node(item, v.Tight)
		}
		r.str("</" + tag + ">\n")
	case *mdast.ListItem:
		r.str("<li>")
		if v.Checked != nil {
			r.str(`<input type="checkbox" disabled=""`)
			if *v.Checked {
				r.str(` checked=""`)
			}
			r.str("> ")
		}
		r.children(v, tight)
		r.str("</li>\n")
	case *mdast.Code:
		r.str("<pre><code")
		if v.Lang != "" {
			r.attr("class", "language-"+v.Lang)
		}
		r.str(">")
		r.text(v.Value)
		r.str("</code></pre>\n")
	case *mdast.HTML:
		switch {
		case r.unsafe:
			r.str(v.Value)
		case v.Block:
			r.str(rawHTMLOmitted + "\n")
		default:
			r.str(rawHTMLOmitted)
		}
	case *mdast.ThematicBreak:
		r.str("<hr>\n")
	case *mdast.Table:
		r.table(v)
	case *mdast.Text:
		r.text(v.Value)
	case *mdast.Emphasis:
		r.wrap("em", v)
	case *mdast.Strong:
		r.wrap("strong", v)
	case *mdast.Delete:
		r.wrap("del", v)
	case *mdast.InlineCode:
		r.str("<code>")
		r.text(v.Value)
		r.str("</code>")
	case *mdast.Break:
		r.str("<br>\n")
	case *mdast.Link:
		r.str("<a")
		r.attr("href", r.url(v.URL))
		if v.Title != "" {
			r.attr("title", v.Title)
		}
		if len(v.Class) > 0 {
			r.attr("class", strings.Join(v.Class, " "))
		}
		r.str(">")
		r.children(v, false)
		r.str("</a>")
	case *mdast.Image:
		r.str("<img")
		r.attr("src", r.url(v.URL))
		r.attr("alt", v.Alt)
		if v.Title != "" {
			r.attr("title", v.Title)
		}
		if v.Width > 0 {
			r.attr("width", strconv.Itoa(v.Width))
		}
		if v.Height > 0 {
			r.attr("height", strconv.Itoa(v.Height))
		}
		r.str(">")
	case *mdast.WikiLink:
		r.text(v.Raw())
	case *mdast.Mark:
		r.wrap("mark", v)
	case *mdast.FlowElement:
		r.element(v.Name, v.Attributes, v.Children)
		r.str("\n")
	case *mdast.TextElement:
		r.element(v.Name, v.Attributes, v.Children)
	case *mdast.Unknown:
		r.text(v.Value)
		r.children(v, tight)
	}
}

func (r *renderer) wrap(tag string, n mdast.Node) {
	r.str("<" + tag + ">")
	r.children(n, false)
	r.str("</" + tag + ">")
}

// element writes an element node. Capitalized names are components with no
// HTML counterpart; they become a div carrying the component name and its
// attributes as data attributes.
func (r *renderer) element(name string, attrs []mdast.Attribute, children []mdast.Node) {
	tag := name
	component := name != "" && unicode.IsUpper(rune(name[0]))
	if component || tag == "" {
		tag = "div"
	}

	r.str("<" + tag)
	if component {
		r.attr("class", strings.ToLower(name))
		r.attr("data-component", name)
	}
	for _, a := range attrs {
		if component {
			r.attr("data-"+a.Name, a.Value)
			continue
		}
		if a.Name == "src" || a.Name == "href" {
			r.attr(a.Name, r.url(a.Value))
			continue
		}
		r.attr(a.Name, a.Value)
	}
	r.str(">")
	if voidElements[tag] {
		return
	}

	if component {
		for _, a := range attrs {
			if a.Name == "title" {
				r.str(`<div class="` + strings.ToLower(name) + `-title">`)
				r.text(a.Value)
				r.str("</div>\n")
			}
		}
	}
	for _, c := range children {
		r.node(c, false)
	}
	r.str("</" + tag + ">")
}

func (r *renderer) table(t *mdast.Table) {
	r.str("<table>\n")
	bodyOpen := false
	for _, row := range t.Children {
		tr, ok := row.(*mdast.TableRow)
		if !ok {
			continue
		}
		cell := "td"
		if tr.Header {
			cell = "th"
			r.str("<thead>\n")
		} else if !bodyOpen {
			bodyOpen = true
			r.str("<tbody>\n")
		}
		r.str("<tr>\n")
		for j, c := range tr.Children {
			r.str("<" + cell)
			if j < len(t.Align) && t.Align[j] != mdast.AlignNone {
				r.attr("style", "text-align:"+string(t.Align[j]))
			}
			r.str(">")
			r.children(c, false)
			r.str("</" + cell + ">\n")
		}
		r.str("</tr>\n")
		if tr.Header {
			r.str("</thead>\n")
		}
	}
	if bodyOpen {
		r.str("</tbody>\n")
	}
	r.str("</table>\n")
}
