package mdast

import "strings"

// Action tells Visit how to continue after a callback.
type Action int

const (
	// Continue descends into the node now stored at the visited index.
	Continue Action = iota
	// Skip does not descend into the visited node.
	Skip
	// Stop ends the traversal.
	Stop
)

// Visitor is called for every matching node with its index in parent.
// parent is nil for the root. A visitor may replace the node at index via
// Replace; traversal then continues into the replacement.
type Visitor func(n Node, index int, parent Parent) Action

// Visit walks the tree depth-first in document order, calling fn for every
// node of type t. An empty t matches all nodes.
func Visit(root Node, t Type, fn Visitor) {
	walk(root, -1, nil, t, fn)
}

func walk(n Node, index int, parent Parent, t Type, fn Visitor) bool {
	if t == "" || n.Type() == t {
		switch fn(n, index, parent) {
		case Stop:
			return true
		case Skip:
			return false
		}
		if parent != nil {
			kids := *parent.childList()
			if index >= len(kids) {
				return false
			}
			n = kids[index]
		}
	}

	p, ok := n.(Parent)
	if !ok {
		return false
	}
	kids := p.childList()
	for i := 0; i < len(*kids); i++ {
		if walk((*kids)[i], i, p, t, fn) {
			return true
		}
	}
	return false
}

// Children returns the child slice of n, or nil for leaf nodes.
func Children(n Node) []Node {
	if p, ok := n.(Parent); ok {
		return *p.childList()
	}
	return nil
}

// Replace stores n at index i of p's children.
func Replace(p Parent, i int, n Node) {
	(*p.childList())[i] = n
}

// IsBlock reports whether n is flow content.
func IsBlock(n Node) bool {
	switch v := n.(type) {
	case *Paragraph, *Heading, *Blockquote, *List, *Code, *ThematicBreak, *Table, *FlowElement, *Root:
		return true
	case *HTML:
		return v.Block
	}
	return false
}

// ToString returns the concatenated text content of n.
func ToString(n Node) string {
	var b strings.Builder
	writeString(&b, n)
	return b.String()
}

// NodesToString concatenates the text content of nodes.
func NodesToString(nodes []Node) string {
	var b strings.Builder
	for _, n := range nodes {
		writeString(&b, n)
	}
	return b.String()
}

func writeString(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Text:
		b.WriteString(v.Value)
	case *InlineCode:
		b.WriteString(v.Value)
	case *Code:
		b.WriteString(v.Value)
	case *Break:
		b.WriteByte('\n')
	case *Image:
		b.WriteString(v.Alt)
	case *WikiLink:
		if v.Alias != "" {
			b.WriteString(v.Alias)
		} else {
			b.WriteString(v.Value)
		}
	case *Unknown:
		b.WriteString(v.Value)
		for _, c := range v.Children {
			writeString(b, c)
		}
	default:
		for _, c := range Children(n) {
			writeString(b, c)
		}
	}
}
