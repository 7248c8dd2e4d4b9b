// Package mdast defines the Markdown syntax tree the wiki pipeline rewrites.
//
// The tree is a closed set of node variants discriminated by Type. Parent
// nodes own their children exclusively; a node is never shared between two
// parents, so replacing the node at an index is a plain slice store.
package mdast

// Type discriminates node variants.
type Type string

// Node types.
const (
	TypeRoot          Type = "root"
	TypeParagraph     Type = "paragraph"
	TypeHeading       Type = "heading"
	TypeBlockquote    Type = "blockquote"
	TypeList          Type = "list"
	TypeListItem      Type = "listItem"
	TypeCode          Type = "code"
	TypeHTML          Type = "html"
	TypeThematicBreak Type = "thematicBreak"
	TypeTable         Type = "table"
	TypeTableRow      Type = "tableRow"
	TypeTableCell     Type = "tableCell"
	TypeText          Type = "text"
	TypeEmphasis      Type = "emphasis"
	TypeStrong        Type = "strong"
	TypeDelete        Type = "delete"
	TypeInlineCode    Type = "inlineCode"
	TypeBreak         Type = "break"
	TypeLink          Type = "link"
	TypeImage         Type = "image"
	TypeWikiLink      Type = "wikiLink"
	TypeMark          Type = "mark"
	TypeFlowElement   Type = "flowElement"
	TypeTextElement   Type = "textElement"
	TypeUnknown       Type = "unknown"
)

// Node is implemented by every tree variant. The unexported marker keeps the
// set of variants closed to this package.
type Node interface {
	Type() Type
	node()
}

// Parent is a node that owns an ordered child sequence.
type Parent interface {
	Node
	childList() *[]Node
}

// Align is a table column alignment.
type Align string

// Column alignments.
const (
	AlignNone   Align = ""
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Attribute is a name/value pair carried by element nodes.
type Attribute struct {
	Name  string
	Value string
}

type (
	// Root is the document node.
	Root struct{ Children []Node }
	// Paragraph holds inline content.
	Paragraph struct{ Children []Node }
	// Heading is an ATX or setext heading.
	Heading struct {
		Depth    int
		Children []Node
	}
	// Blockquote is a "> " quoted block.
	Blockquote struct{ Children []Node }
	// List is an ordered or bullet list.
	List struct {
		Ordered  bool
		Start    int
		Tight    bool
		Children []Node
	}
	// ListItem is a list entry; Checked is set for task items.
	ListItem struct {
		Checked  *bool
		Children []Node
	}
	// Table is a GFM table.
	Table struct {
		Align    []Align
		Children []Node
	}
	// TableRow is a table row; the first row of a table is its header.
	TableRow struct {
		Header   bool
		Children []Node
	}
	// TableCell is a single table cell.
	TableCell struct{ Children []Node }
	// Emphasis is *text*.
	Emphasis struct{ Children []Node }
	// Strong is **text**.
	Strong struct{ Children []Node }
	// Delete is ~~text~~.
	Delete struct{ Children []Node }
	// Link is a resolved hyperlink.
	Link struct {
		URL      string
		Title    string
		Class    []string
		Children []Node
	}
	// Mark is a ==highlight== span produced by the tokenizer.
	Mark struct{ Children []Node }
	// FlowElement is a block-level element (div, video, Callout component).
	FlowElement struct {
		Name       string
		Attributes []Attribute
		Children   []Node
	}
	// TextElement is an inline element (mark, span).
	TextElement struct {
		Name       string
		Attributes []Attribute
		Children   []Node
	}
	// Unknown passes through node kinds the pipeline does not model.
	Unknown struct {
		Kind     string
		Value    string
		Children []Node
	}
)

type (
	// Code is a fenced or indented code block.
	Code struct {
		Lang  string
		Value string
	}
	// HTML is raw HTML, block or inline.
	HTML struct {
		Value string
		Block bool
	}
	// ThematicBreak is a horizontal rule.
	ThematicBreak struct{}
	// Text is literal text.
	Text struct{ Value string }
	// InlineCode is `code`.
	InlineCode struct{ Value string }
	// Break is a hard line break.
	Break struct{}
	// Image is an image reference. Zero Width/Height means unknown.
	Image struct {
		URL    string
		Title  string
		Alt    string
		Width  int
		Height int
	}
	// WikiLink is a raw [[target|alias]] or ![[target]] token.
	WikiLink struct {
		Value string
		Alias string
		Embed bool
	}
)

func (*Root) Type() Type          { return TypeRoot }
func (*Paragraph) Type() Type     { return TypeParagraph }
func (*Heading) Type() Type       { return TypeHeading }
func (*Blockquote) Type() Type    { return TypeBlockquote }
func (*List) Type() Type          { return TypeList }
func (*ListItem) Type() Type      { return TypeListItem }
func (*Table) Type() Type         { return TypeTable }
func (*TableRow) Type() Type      { return TypeTableRow }
func (*TableCell) Type() Type     { return TypeTableCell }
func (*Emphasis) Type() Type      { return TypeEmphasis }
func (*Strong) Type() Type        { return TypeStrong }
func (*Delete) Type() Type        { return TypeDelete }
func (*Link) Type() Type          { return TypeLink }
func (*Mark) Type() Type          { return TypeMark }
func (*FlowElement) Type() Type   { return TypeFlowElement }
func (*TextElement) Type() Type   { return TypeTextElement }
func (*Unknown) Type() Type       { return TypeUnknown }
func (*Code) Type() Type          { return TypeCode }
func (*HTML) Type() Type          { return TypeHTML }
func (*ThematicBreak) Type() Type { return TypeThematicBreak }
func (*Text) Type() Type          { return TypeText }
func (*InlineCode) Type() Type    { return TypeInlineCode }
func (*Break) Type() Type         { return TypeBreak }
func (*Image) Type() Type         { return TypeImage }
func (*WikiLink) Type() Type      { return TypeWikiLink }

func (*Root) node()          {}
func (*Paragraph) node()     {}
func (*Heading) node()       {}
func (*Blockquote) node()    {}
func (*List) node()          {}
func (*ListItem) node()      {}
func (*Table) node()         {}
func (*TableRow) node()      {}
func (*TableCell) node()     {}
func (*Emphasis) node()      {}
func (*Strong) node()        {}
func (*Delete) node()        {}
func (*Link) node()          {}
func (*Mark) node()          {}
func (*FlowElement) node()   {}
func (*TextElement) node()   {}
func (*Unknown) node()       {}
func (*Code) node()          {}
func (*HTML) node()          {}
func (*ThematicBreak) node() {}
func (*Text) node()          {}
func (*InlineCode) node()    {}
func (*Break) node()         {}
func (*Image) node()         {}
func (*WikiLink) node()      {}

func (n *Root) childList() *[]Node        { return &n.Children }
func (n *Paragraph) childList() *[]Node   { return &n.Children }
func (n *Heading) childList() *[]Node     { return &n.Children }
func (n *Blockquote) childList() *[]Node  { return &n.Children }
func (n *List) childList() *[]Node        { return &n.Children }
func (n *ListItem) childList() *[]Node    { return &n.Children }
func (n *Table) childList() *[]Node       { return &n.Children }
func (n *TableRow) childList() *[]Node    { return &n.Children }
func (n *TableCell) childList() *[]Node   { return &n.Children }
func (n *Emphasis) childList() *[]Node    { return &n.Children }
func (n *Strong) childList() *[]Node      { return &n.Children }
func (n *Delete) childList() *[]Node      { return &n.Children }
func (n *Link) childList() *[]Node        { return &n.Children }
func (n *Mark) childList() *[]Node        { return &n.Children }
func (n *FlowElement) childList() *[]Node { return &n.Children }
func (n *TextElement) childList() *[]Node { return &n.Children }
func (n *Unknown) childList() *[]Node     { return &n.Children }

// Raw returns the source form of the wiki link token.
func (n *WikiLink) Raw() string {
	s := "[[" + n.Value
	if n.Alias != "" {
		s += "|" + n.Alias
	}
	s += "]]"
	if n.Embed {
		s = "!" + s
	}
	return s
}

// Attr returns the value of the named attribute.
func (n *FlowElement) Attr(name string) (string, bool) { return findAttr(n.Attributes, name) }

// Attr returns the value of the named attribute.
func (n *TextElement) Attr(name string) (string, bool) { return findAttr(n.Attributes, name) }

func findAttr(attrs []Attribute, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}
