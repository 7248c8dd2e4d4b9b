package mdast

import "testing"

func sample() *Root {
	return &Root{Children: []Node{
		&Paragraph{Children: []Node{
			&Text{Value: "see "},
			&WikiLink{Value: "Note"},
			&Emphasis{Children: []Node{&Text{Value: "em"}}},
		}},
		&Blockquote{Children: []Node{
			&Paragraph{Children: []Node{&Text{Value: "quoted"}}},
		}},
	}}
}

func TestVisit_FiltersByType(t *testing.T) {
	var got []string
	Visit(sample(), TypeText, func(n Node, _ int, _ Parent) Action {
		got = append(got, n.(*Text).Value)
		return Continue
	})
	want := []string{"see ", "em", "quoted"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestVisit_ReplaceDescendsIntoReplacement(t *testing.T) {
	root := sample()
	var texts int
	Visit(root, "", func(n Node, i int, p Parent) Action {
		switch v := n.(type) {
		case *WikiLink:
			Replace(p, i, &Link{URL: "/note", Children: []Node{&Text{Value: v.Value}}})
		case *Text:
			texts++
		}
		return Continue
	})
	para := root.Children[0].(*Paragraph)
	link, ok := para.Children[1].(*Link)
	if !ok {
		t.Fatalf("child 1 = %T, want *Link", para.Children[1])
	}
	if link.URL != "/note" {
		t.Errorf("url = %q", link.URL)
	}
	// see, Note (inside replacement), em, quoted
	if texts != 4 {
		t.Errorf("texts = %d, want 4", texts)
	}
}

func TestVisit_SkipAndStop(t *testing.T) {
	var seen int
	Visit(sample(), "", func(n Node, _ int, _ Parent) Action {
		seen++
		if n.Type() == TypeParagraph {
			return Skip
		}
		return Continue
	})
	// root, paragraph, blockquote, paragraph
	if seen != 4 {
		t.Errorf("seen = %d, want 4", seen)
	}

	seen = 0
	Visit(sample(), TypeText, func(Node, int, Parent) Action {
		seen++
		return Stop
	})
	if seen != 1 {
		t.Errorf("seen = %d after Stop, want 1", seen)
	}
}

func TestToString(t *testing.T) {
	p := &Paragraph{Children: []Node{
		&Text{Value: "a"},
		&Break{},
		&InlineCode{Value: "b"},
		&Strong{Children: []Node{&Text{Value: "c"}}},
	}}
	if got := ToString(p); got != "a\nbc" {
		t.Errorf("ToString = %q", got)
	}
}

func TestWikiLinkRaw(t *testing.T) {
	cases := []struct {
		n    WikiLink
		want string
	}{
		{WikiLink{Value: "Page"}, "[[Page]]"},
		{WikiLink{Value: "Page", Alias: "shown"}, "[[Page|shown]]"},
		{WikiLink{Value: "img.png", Embed: true}, "![[img.png]]"},
	}
	for _, c := range cases {
		if got := c.n.Raw(); got != c.want {
			t.Errorf("Raw() = %q, want %q", got, c.want)
		}
	}
}

func TestIsBlock(t *testing.T) {
	if !IsBlock(&FlowElement{Name: "div"}) {
		t.Error("flow element should be block")
	}
	if IsBlock(&TextElement{Name: "span"}) {
		t.Error("text element should be inline")
	}
	if IsBlock(&HTML{Value: "<b>"}) || !IsBlock(&HTML{Value: "<div>", Block: true}) {
		t.Error("html block flag not honoured")
	}
}
