package callout

import (
	"testing"

	"github.com/starford/wikimark/internal/mdast"
)

func quote(children ...mdast.Node) *mdast.Blockquote {
	return &mdast.Blockquote{Children: children}
}

func para(children ...mdast.Node) *mdast.Paragraph {
	return &mdast.Paragraph{Children: children}
}

func text(s string) *mdast.Text { return &mdast.Text{Value: s} }

func TestBuild_TitleAndBody(t *testing.T) {
	bq := quote(para(text("[!NOTE] Custom title\nThis is a note")))
	el := Build(bq, Options{})
	if el == nil {
		t.Fatal("expected callout")
	}
	if el.Name != "Callout" {
		t.Errorf("name = %q", el.Name)
	}
	if v, _ := el.Attr("type"); v != "info" {
		t.Errorf("type = %q, want info", v)
	}
	if v, _ := el.Attr("title"); v != "Custom title" {
		t.Errorf("title = %q", v)
	}
	if len(el.Children) != 1 || mdast.ToString(el.Children[0]) != "This is a note" {
		t.Errorf("children = %#v", el.Children)
	}
}

func TestBuild_KeepsInlineFormatting(t *testing.T) {
	bq := quote(para(
		text("[!INFO] Info\nI used to play "),
		&mdast.Emphasis{Children: []mdast.Node{text("Mario Kart NDS")}},
		text(" or Rhythm Hero"),
	))
	el := Build(bq, Options{})
	if el == nil {
		t.Fatal("expected callout")
	}
	body := el.Children[0].(*mdast.Paragraph)
	if len(body.Children) != 3 {
		t.Fatalf("body children = %d, want 3", len(body.Children))
	}
	if _, ok := body.Children[1].(*mdast.Emphasis); !ok {
		t.Errorf("emphasis lost: %T", body.Children[1])
	}
	if got := mdast.ToString(body); got != "I used to play Mario Kart NDS or Rhythm Hero" {
		t.Errorf("body = %q", got)
	}
}

func TestBuild_MarkerOnly(t *testing.T) {
	rest := para(text("second block"))
	el := Build(quote(para(text("[!warning]")), rest), Options{})
	if el == nil {
		t.Fatal("expected callout")
	}
	if v, _ := el.Attr("type"); v != "warn" {
		t.Errorf("type = %q", v)
	}
	if _, ok := el.Attr("title"); ok {
		t.Error("unexpected title attribute")
	}
	if len(el.Children) != 1 || el.Children[0] != rest {
		t.Errorf("children = %#v", el.Children)
	}
}

func TestBuild_NotACallout(t *testing.T) {
	cases := []*mdast.Blockquote{
		quote(),
		quote(para(text("just a quote"))),
		quote(&mdast.Code{Value: "[!NOTE]"}),
		quote(para(text("text [!NOTE] later"))),
	}
	for i, bq := range cases {
		if el := Build(bq, Options{}); el != nil {
			t.Errorf("case %d: unexpected callout %+v", i, el)
		}
	}
}

func TestBuild_HardBreakEndsMarkerLine(t *testing.T) {
	bq := quote(para(text("[!tip] Hint"), &mdast.Break{}, text("body")))
	c, ok := parse(bq, Options{}.withDefaults())
	if !ok {
		t.Fatal("expected callout")
	}
	if c.Kind != "idea" || c.Title != "Hint" {
		t.Errorf("callout = %+v", c)
	}
	if len(c.Body) != 1 || mdast.ToString(c.Body[0]) != "body" {
		t.Errorf("body = %#v", c.Body)
	}
}

func TestBuild_CustomOptions(t *testing.T) {
	opts := Options{
		ComponentName: "Admonition",
		TypePropName:  "variant",
		DefaultType:   "neutral",
		TypeMap:       map[string]string{" Bug ": "danger", "": "x", "empty": "  "},
	}
	el := Build(quote(para(text("[!BUG]"))), opts)
	if el.Name != "Admonition" {
		t.Errorf("name = %q", el.Name)
	}
	if v, _ := el.Attr("variant"); v != "danger" {
		t.Errorf("variant = %q", v)
	}

	// custom map replaces the defaults entirely
	el = Build(quote(para(text("[!note]"))), opts)
	if v, _ := el.Attr("variant"); v != "neutral" {
		t.Errorf("variant = %q, want neutral", v)
	}
	el = Build(quote(para(text("[!empty]"))), opts)
	if v, _ := el.Attr("variant"); v != "neutral" {
		t.Errorf("blank mapping not dropped: %q", v)
	}
}

func TestNormalizeTypeMap(t *testing.T) {
	m := NormalizeTypeMap(map[string]string{"A": " x ", " ": "y", "b": ""})
	if len(m) != 1 || m["a"] != "x" {
		t.Errorf("normalized = %v", m)
	}
	if NormalizeTypeMap(nil)["caution"] != "warn" {
		t.Error("default table missing caution")
	}
}
