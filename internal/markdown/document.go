package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/starford/wikimark/internal/mdast"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// yaml.v3 decodes nested maps with string keys, which keeps frontmatter
// JSON-encodable.
var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Document is a parsed note.
type Document struct {
	Frontmatter map[string]any
	Body        []byte
	Title       string
	Tags        []string
	Root        *mdast.Root
}

// ParseDocument splits frontmatter from data and parses the body.
func (p *Parser) ParseDocument(data []byte) *Document {
	fm, body := SplitFrontmatter(data)
	root := p.Parse(body)
	return &Document{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, root),
		Tags:        extractTags(fm, root),
		Root:        root,
	}
}

// ParseDocument parses data with the default parser.
func ParseDocument(data []byte) *Document {
	return defaultParser.ParseDocument(data)
}

// SplitFrontmatter separates YAML frontmatter from the Markdown body. Input
// without frontmatter, or with frontmatter that fails to decode, is returned
// whole as the body.
func SplitFrontmatter(data []byte) (map[string]any, []byte) {
	var fm map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm, yamlFormat)
	if err != nil {
		return nil, data
	}
	if len(fm) == 0 {
		fm = nil
	}
	return fm, bytes.TrimLeft(body, "\r\n")
}

// deriveTitle returns the frontmatter "title" if present, otherwise the text
// of the first level-one heading.
func deriveTitle(fm map[string]any, root *mdast.Root) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	var title string
	mdast.Visit(root, mdast.TypeHeading, func(n mdast.Node, _ int, _ mdast.Parent) mdast.Action {
		if n.(*mdast.Heading).Depth == 1 {
			title = strings.TrimSpace(mdast.ToString(n))
			return mdast.Stop
		}
		return mdast.Skip
	})
	return title
}

// extractTags collects tags from the frontmatter "tags" list and from
// #hashtags in text nodes. Code is not scanned.
func extractTags(fm map[string]any, root *mdast.Root) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	switch v := fm["tags"].(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			add(s)
		}
	}

	mdast.Visit(root, mdast.TypeText, func(n mdast.Node, _ int, _ mdast.Parent) mdast.Action {
		for _, m := range tagRe.FindAllStringSubmatch(n.(*mdast.Text).Value, -1) {
			add(m[1])
		}
		return mdast.Continue
	})
	return out
}
