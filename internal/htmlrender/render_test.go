package htmlrender

import (
	"strings"
	"testing"

	"github.com/starford/wikimark/internal/mdast"
)

func TestString_Inline(t *testing.T) {
	root := &mdast.Root{Children: []mdast.Node{
		&mdast.Paragraph{Children: []mdast.Node{
			&mdast.Text{Value: "a < b "},
			&mdast.Link{URL: "/internal-link", Title: "Internal", Class: []string{"not-found"}, Children: []mdast.Node{&mdast.Text{Value: "Internal"}}},
			&mdast.Text{Value: " "},
			&mdast.TextElement{Name: "mark", Children: []mdast.Node{&mdast.Text{Value: "hi"}}},
			&mdast.Text{Value: " "},
			&mdast.WikiLink{Value: "doc.pdf", Embed: true},
		}},
	}}
	got := String(root)
	want := `<p>a &lt; b <a href="/internal-link" title="Internal" class="not-found">Internal</a> <mark>hi</mark> ![[doc.pdf]]</p>` + "\n"
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestString_Elements(t *testing.T) {
	video := &mdast.FlowElement{Name: "video", Attributes: []mdast.Attribute{{Name: "src", Value: "/clip.mp4"}, {Name: "controls", Value: "true"}}}
	if got := String(video); got != `<video src="/clip.mp4" controls="true"></video>`+"\n" {
		t.Errorf("video = %q", got)
	}

	img := &mdast.Image{URL: "/image.png", Alt: "", Width: 40, Height: 30}
	if got := String(img); got != `<img src="/image.png" alt="" width="40" height="30">` {
		t.Errorf("image = %q", got)
	}

	callout := &mdast.FlowElement{
		Name:       "Callout",
		Attributes: []mdast.Attribute{{Name: "type", Value: "warn"}, {Name: "title", Value: "Careful"}},
		Children:   []mdast.Node{&mdast.Paragraph{Children: []mdast.Node{&mdast.Text{Value: "body"}}}},
	}
	got := String(callout)
	for _, part := range []string{
		`<div class="callout" data-component="Callout" data-type="warn" data-title="Careful">`,
		`<div class="callout-title">Careful</div>`,
		"<p>body</p>",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("callout html %q missing %q", got, part)
		}
	}
}

func TestString_Blocks(t *testing.T) {
	checked := true
	root := &mdast.Root{Children: []mdast.Node{
		&mdast.Heading{Depth: 2, Children: []mdast.Node{&mdast.Text{Value: "Internal link"}}},
		&mdast.List{Tight: true, Children: []mdast.Node{
			&mdast.ListItem{Checked: &checked, Children: []mdast.Node{&mdast.Paragraph{Children: []mdast.Node{&mdast.Text{Value: "done"}}}}},
		}},
		&mdast.Code{Lang: "go", Value: "x := 1 < 2\n"},
		&mdast.Table{Align: []mdast.Align{mdast.AlignCenter}, Children: []mdast.Node{
			&mdast.TableRow{Header: true, Children: []mdast.Node{&mdast.TableCell{Children: []mdast.Node{&mdast.Text{Value: "h"}}}}},
			&mdast.TableRow{Children: []mdast.Node{&mdast.TableCell{Children: []mdast.Node{&mdast.Text{Value: "c"}}}}},
		}},
	}}
	got := String(root)
	for _, part := range []string{
		`<h2 id="internal-link">Internal link</h2>`,
		`<li><input type="checkbox" disabled="" checked=""> done</li>`,
		`<pre><code class="language-go">x := 1 &lt; 2` + "\n</code></pre>",
		`<th style="text-align:center">h</th>`,
		"<tbody>\n<tr>\n<td style=\"text-align:center\">c</td>",
	} {
		if !strings.Contains(got, part) {
			t.Errorf("html %q missing %q", got, part)
		}
	}
}

func TestString_DropsUnsafeMarkup(t *testing.T) {
	root := &mdast.Root{Children: []mdast.Node{
		&mdast.Paragraph{Children: []mdast.Node{
			&mdast.Link{URL: "javascript:alert(1)", Children: []mdast.Node{&mdast.Text{Value: "click"}}},
			&mdast.HTML{Value: "<img src=x onerror=alert(3)>"},
			&mdast.Image{URL: "vbscript:x", Alt: "v"},
			&mdast.Image{URL: "data:image/png;base64,AAAA", Alt: "d"},
		}},
		&mdast.HTML{Value: "<script>alert(2)</script>\n", Block: true},
		&mdast.FlowElement{Name: "video", Attributes: []mdast.Attribute{{Name: "src", Value: "javascript:alert(4)"}}},
	}}

	got := String(root)
	for _, part := range []string{
		`<a href="">click</a>`,
		`<!-- raw HTML omitted --><img src="" alt="v">`,
		`<img src="data:image/png;base64,AAAA" alt="d">`,
		"<!-- raw HTML omitted -->\n",
		`<video src=""></video>`,
	} {
		if !strings.Contains(got, part) {
			t.Errorf("html %q missing %q", got, part)
		}
	}
	for _, bad := range []string{"javascript:", "vbscript:", "<script>", "onerror"} {
		if strings.Contains(got, bad) {
			t.Errorf("html %q contains %q", got, bad)
		}
	}

	unsafe := String(root, WithUnsafe(true))
	for _, part := range []string{`<a href="javascript:alert(1)">`, "<script>alert(2)</script>", "<img src=x onerror=alert(3)>"} {
		if !strings.Contains(unsafe, part) {
			t.Errorf("unsafe html %q missing %q", unsafe, part)
		}
	}
}

func TestString_UniqueHeadingIDs(t *testing.T) {
	h := func(text string) mdast.Node {
		return &mdast.Heading{Depth: 2, Children: []mdast.Node{&mdast.Text{Value: text}}}
	}
	got := String(&mdast.Root{Children: []mdast.Node{h("Intro"), h("Intro"), h("Intro 1"), h("Intro")}})
	for _, part := range []string{
		`<h2 id="intro">Intro</h2>`,
		`<h2 id="intro-1">Intro</h2>`,
		`<h2 id="intro-1-1">Intro 1</h2>`,
		`<h2 id="intro-2">Intro</h2>`,
	} {
		if !strings.Contains(got, part) {
			t.Errorf("html %q missing %q", got, part)
		}
	}
}
