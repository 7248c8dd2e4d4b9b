// Package callout turns Obsidian "> [!type] title" blockquotes into
// component elements.
package callout

import (
	"regexp"
	"strings"

	"github.com/starford/wikimark/internal/mdast"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultComponentName = "Callout"
	DefaultTypePropName  = "type"
	DefaultType          = "info"
)

var marker = regexp.MustCompile(`^\[!(\w+)\]\s*(.*)$`)

// Options configures the emitted element.
type Options struct {
	ComponentName string            `yaml:"component_name"`
	TypePropName  string            `yaml:"type_prop_name"`
	DefaultType   string            `yaml:"default_type"`
	TypeMap       map[string]string `yaml:"type_map"`
}

// Callout is a recognised callout blockquote.
type Callout struct {
	// Kind is the mapped type, e.g. "warn" for [!caution].
	Kind  string
	Title string
	Body  []mdast.Node
}

// DefaultTypeMap returns a fresh copy of the built-in alias table.
func DefaultTypeMap() map[string]string {
	return map[string]string{
		"note": "info", "abstract": "info", "summary": "info", "tldr": "info",
		"info": "info", "todo": "info", "quote": "info",
		"tip": "idea", "hint": "idea", "example": "idea", "question": "idea",
		"warn": "warn", "warning": "warn", "caution": "warn", "attention": "warn",
		"danger": "error", "error": "error", "fail": "error", "failure": "error", "bug": "error",
		"success": "success", "done": "success", "check": "success",
	}
}

// NormalizeTypeMap lower-cases keys and trims values. Entries with a blank
// key or value are dropped. A nil map yields the default table; a non-nil
// map replaces it entirely.
func NormalizeTypeMap(m map[string]string) map[string]string {
	if m == nil {
		return DefaultTypeMap()
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func (o Options) withDefaults() Options {
	if o.ComponentName == "" {
		o.ComponentName = DefaultComponentName
	}
	if o.TypePropName == "" {
		o.TypePropName = DefaultTypePropName
	}
	if o.DefaultType == "" {
		o.DefaultType = DefaultType
	}
	o.TypeMap = NormalizeTypeMap(o.TypeMap)
	return o
}

// parse recognises a callout in bq. The blockquote is not modified.
func parse(bq *mdast.Blockquote, opts Options) (Callout, bool) {
	if len(bq.Children) == 0 {
		return Callout{}, false
	}
	first, ok := bq.Children[0].(*mdast.Paragraph)
	if !ok {
		return Callout{}, false
	}

	line, _, _ := strings.Cut(mdast.ToString(first), "\n")
	m := marker.FindStringSubmatch(line)
	if m == nil {
		return Callout{}, false
	}

	kind := opts.TypeMap[strings.ToLower(m[1])]
	if kind == "" {
		kind = opts.DefaultType
	}

	var body []mdast.Node
	if rest := dropFirstLine(first.Children); len(rest) > 0 && strings.TrimSpace(mdast.NodesToString(rest)) != "" {
		body = append(body, &mdast.Paragraph{Children: rest})
	}
	body = append(body, bq.Children[1:]...)

	return Callout{Kind: kind, Title: strings.TrimSpace(m[2]), Body: body}, true
}

// dropFirstLine returns the inline nodes after the first line break. Nodes
// on the marker line are discarded, formatting on later lines is kept.
func dropFirstLine(nodes []mdast.Node) []mdast.Node {
	for i, n := range nodes {
		switch v := n.(type) {
		case *mdast.Break:
			return nodes[i+1:]
		case *mdast.Text:
			_, after, found := strings.Cut(v.Value, "\n")
			if !found {
				continue
			}
			rest := make([]mdast.Node, 0, len(nodes)-i)
			if after != "" {
				rest = append(rest, &mdast.Text{Value: after})
			}
			return append(rest, nodes[i+1:]...)
		}
	}
	return nil
}

// Build converts bq into a callout element, or returns nil when bq has no
// callout marker.
func Build(bq *mdast.Blockquote, opts Options) *mdast.FlowElement {
	opts = opts.withDefaults()
	c, ok := parse(bq, opts)
	if !ok {
		return nil
	}

	attrs := []mdast.Attribute{{Name: opts.TypePropName, Value: c.Kind}}
	if c.Title != "" {
		attrs = append(attrs, mdast.Attribute{Name: "title", Value: c.Title})
	}
	return &mdast.FlowElement{
		Name:       opts.ComponentName,
		Attributes: attrs,
		Children:   c.Body,
	}
}
