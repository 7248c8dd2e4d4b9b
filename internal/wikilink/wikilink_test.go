package wikilink

import (
	"errors"
	"testing"

	"github.com/starford/wikimark/internal/apperr"
	"github.com/starford/wikimark/internal/mdast"
)

func TestParseTarget(t *testing.T) {
	cases := []struct {
		in     string
		page   string
		anchor string
		kind   AnchorKind
	}{
		{"Note", "Note", "", AnchorNone},
		{"Note#Heading", "Note", "Heading", AnchorHeading},
		{"Note#^block-id", "Note", "^block-id", AnchorHeading},
		{"Note^block-id", "Note", "block-id", AnchorBlock},
		{"#Heading", "", "Heading", AnchorHeading},
		{"  Note # Spaced  ", "Note", "Spaced", AnchorHeading},
		{"a^b#c", "a", "b#c", AnchorBlock},
	}
	for _, c := range cases {
		got, ok := ParseTarget(c.in)
		if !ok {
			t.Errorf("ParseTarget(%q) failed", c.in)
			continue
		}
		if got.Page != c.page || got.Anchor != c.anchor || got.AnchorKind != c.kind {
			t.Errorf("ParseTarget(%q) = {%q %q %v}, want {%q %q %v}",
				c.in, got.Page, got.Anchor, got.AnchorKind, c.page, c.anchor, c.kind)
		}
	}
}

func TestParseTarget_Empty(t *testing.T) {
	if _, ok := ParseTarget("   "); ok {
		t.Error("blank target should fail")
	}
	_, err := MustParseTarget("")
	if !errors.Is(err, apperr.ErrEmptyTarget) {
		t.Errorf("err = %v, want ErrEmptyTarget", err)
	}
}

func TestScan_Accepts(t *testing.T) {
	cases := []struct {
		in  string
		tok Token
	}{
		{"[[Page]]", Token{Target: "Page", Length: 8}},
		{"[[Page]] trailing", Token{Target: "Page", Length: 8}},
		{"![[image.png]]", Token{Embed: true, Target: "image.png", Length: 14}},
		{"[[Page|Alias]]", Token{Target: "Page", Alias: "Alias", Length: 14}},
		{"[[ spaced |a|b]]", Token{Target: " spaced ", Alias: "a|b", Length: 16}},
		{"[[[x]]", Token{Target: "[x", Length: 6}},
	}
	for _, c := range cases {
		got, ok := Scan([]byte(c.in), DefaultDivider)
		if !ok {
			t.Errorf("Scan(%q) rejected", c.in)
			continue
		}
		if got != c.tok {
			t.Errorf("Scan(%q) = %+v, want %+v", c.in, got, c.tok)
		}
	}
}

func TestScan_Rejects(t *testing.T) {
	for _, in := range []string{
		"[Page]]",
		"[[]]",
		"[[   ]]",
		"[[|alias]]",
		"[[Page| ]]",
		"[[Page]",
		"[[Pa]ge]]",
		"[[Page\nNext]]",
		"!Page",
		"![Page]",
		"[[Page",
		"",
	} {
		if tok, ok := Scan([]byte(in), DefaultDivider); ok {
			t.Errorf("Scan(%q) = %+v, want reject", in, tok)
		}
	}
}

func TestStep_TargetNeedsData(t *testing.T) {
	if tr := step(stTargetEmpty, clClose); tr.next != stReject {
		t.Errorf("close on empty target -> %v, want reject", tr.next)
	}
	if tr := step(stTargetEmpty, clSpace); tr.next != stTargetEmpty {
		t.Errorf("space on empty target -> %v", tr.next)
	}
	if tr := step(stTarget, clDivider); tr.next != stAliasEmpty || tr.act&actEndTarget == 0 {
		t.Errorf("divider in target -> %+v", tr)
	}
	for c := class(0); c < numClasses; c++ {
		if c == clClose {
			continue
		}
		if tr := step(stClose, c); tr.next != stReject {
			t.Errorf("class %d after single ] -> %v, want reject", c, tr.next)
		}
	}
}

func TestBuildLink(t *testing.T) {
	cases := []struct {
		value, alias, pageURL string
		url, text             string
	}{
		{"Internal link", "", "", "/internal-link", "Internal link"},
		{"Internal link", "Custom text", "", "/internal-link", "Custom text"},
		{"Internal link", "Internal link", "", "/internal-link", "Internal link"},
		{"Internal link#heading", "", "", "/internal-link#heading", "Internal link"},
		{"#Heading", "", "", "#heading", "Heading"},
		{"#Section 1.2, intro", "", "", "#section-12-intro", "Section 1.2, intro"},
		{"Page^abc", "", "", "/page#^abc", "Page"},
		{"A & B", "", "", "/a-and-b", "A & B"},
		{"Productivité", "", "", "/productivite", "Productivité"},
		{"ProjectA#Goals", "", "/notes/ProjectA", "/notes/ProjectA#goals", "ProjectA"},
	}
	for _, c := range cases {
		target, ok := ParseTarget(c.value)
		if !ok {
			t.Fatalf("ParseTarget(%q) failed", c.value)
		}
		target.Alias = c.alias
		link := BuildLink(target, c.pageURL, LinkOptions{})
		if link.URL != c.url {
			t.Errorf("%q: url = %q, want %q", c.value, link.URL, c.url)
		}
		if got := mdast.NodesToString(link.Children); got != c.text {
			t.Errorf("%q: text = %q, want %q", c.value, got, c.text)
		}
		if link.Title != c.text {
			t.Errorf("%q: title = %q, want %q", c.value, link.Title, c.text)
		}
	}
}

func TestBuildLink_BaseURL(t *testing.T) {
	target, _ := ParseTarget("My Page")
	link := BuildLink(target, "", LinkOptions{BaseURL: "https://example.com/wiki/"})
	if link.URL != "https://example.com/wiki/my-page" {
		t.Errorf("url = %q", link.URL)
	}
}

func TestResolvedLinkNode_NotFoundClass(t *testing.T) {
	n := ResolvedLink{URL: "/x", NotFound: true}.Node()
	if len(n.Class) != 1 || n.Class[0] != "not-found" {
		t.Errorf("class = %v", n.Class)
	}
}
