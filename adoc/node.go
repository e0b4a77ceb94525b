package adoc

import (
	"fmt"
	"strconv"
	"strings"
)

// A NodeType is the type of a block Node.
type NodeType uint32

const (
	DocumentNode NodeType = iota
	SectionNode
	ParagraphNode
	ListingNode
	LiteralNode
	VerseNode
	ListNode
	ListItemNode
	DListNode
	DListItemNode
	SidebarNode
	ExampleNode
	QuoteNode
	OpenNode
	AdmonitionNode
	TableNode
	BlockMacroNode
	MathBlockNode
	DiscreteHeadingNode
)

// String returns a string representation of the NodeType.
func (n NodeType) String() string {
	switch n {
	case DocumentNode:
		return "Document"
	case SectionNode:
		return "Section"
	case ParagraphNode:
		return "Paragraph"
	case ListingNode:
		return "Listing"
	case LiteralNode:
		return "Literal"
	case VerseNode:
		return "Verse"
	case ListNode:
		return "List"
	case ListItemNode:
		return "ListItem"
	case DListNode:
		return "DList"
	case DListItemNode:
		return "DListItem"
	case SidebarNode:
		return "Sidebar"
	case ExampleNode:
		return "Example"
	case QuoteNode:
		return "Quote"
	case OpenNode:
		return "Open"
	case AdmonitionNode:
		return "Admonition"
	case TableNode:
		return "Table"
	case BlockMacroNode:
		return "BlockMacro"
	case MathBlockNode:
		return "MathBlock"
	case DiscreteHeadingNode:
		return "DiscreteHeading"
	}
	return "Invalid(" + strconv.Itoa(int(n)) + ")"
}

// TreeNode holds the links of the block tree. The parent owns its
// children outright: no sharing, no cycles beyond the back links.
type TreeNode struct {
	Parent, FirstChild, LastChild, PrevSibling, NextSibling *Node
}

// A Node is one block of the parsed document. The Type discriminates
// which payload fields are meaningful; every node owns the common
// metadata (id, title, reference text, roles, options, attributes) and a
// source span.
type Node struct {
	TreeNode
	Type NodeType

	// Common block metadata
	Id         string
	Title      []*Inline
	RefText    string
	Roles      []string
	Options    []string
	Attributes map[string]string
	Positional []string
	Span       Span

	// Section / discrete heading
	Level int

	// Paragraph and heading rich text; also the inline description of a
	// description list item
	Content []*Inline

	// Verbatim leaves (listing/literal/verse/math) and table raw content
	Raw string

	// Delimited blocks remember their fence text
	Delimiter string

	// Style is the primary style that selected this node ('source',
	// 'verse', admonition labels, ...)
	Style string

	// List payload
	ListKind ListKind
	Marker   string
	Checkbox Checkbox

	// Description list item terms
	Terms [][]*Inline

	// Quote attribution
	Attribution string
	CiteTitle   string

	// Math kind ('stem', 'latexmath', 'asciimath')
	MathKind string

	// Table payload
	Table *TableData

	// Block macro payload
	Name   string
	Target string
}

// InsertBefore inserts newChild as a child of n, immediately before
// oldChild in the sequence of n's children. oldChild may be nil, in which
// case newChild is appended to the end of n's children.
//
// It will panic if newChild already has a parent or siblings.
func (n *Node) InsertBefore(newChild, oldChild *Node) {
	if newChild.Parent != nil || newChild.PrevSibling != nil || newChild.NextSibling != nil {
		panic("InsertBefore called for an attached child Node")
	}
	var prev, next *Node
	if oldChild != nil {
		prev, next = oldChild.PrevSibling, oldChild
	} else {
		prev = n.LastChild
	}
	if prev != nil {
		prev.NextSibling = newChild
	} else {
		n.FirstChild = newChild
	}
	if next != nil {
		next.PrevSibling = newChild
	} else {
		n.LastChild = newChild
	}
	newChild.Parent = n
	newChild.PrevSibling = prev
	newChild.NextSibling = next
}

// AppendChild adds child as the last child of parent.
//
// It will panic if child already has a parent or siblings.
func (parent *Node) AppendChild(child *Node) {
	if child.Parent != nil || child.PrevSibling != nil || child.NextSibling != nil {
		panic("AppendChild called for an already attached child Node")
	}
	last := parent.LastChild
	if last != nil {
		last.NextSibling = child
	} else {
		parent.FirstChild = child
	}
	parent.LastChild = child
	child.Parent = parent
	child.PrevSibling = last
}

// RemoveChild removes child from parent. Afterwards, child has no parent
// and no siblings.
//
// It will panic if child's parent is not parent.
func (parent *Node) RemoveChild(child *Node) {
	if child.Parent != parent {
		panic("RemoveChild called for a non-child Node")
	}
	if parent.FirstChild == child {
		parent.FirstChild = child.NextSibling
	}
	if child.NextSibling != nil {
		child.NextSibling.PrevSibling = child.PrevSibling
	}
	if parent.LastChild == child {
		parent.LastChild = child.PrevSibling
	}
	if child.PrevSibling != nil {
		child.PrevSibling.NextSibling = child.NextSibling
	}
	child.Parent = nil
	child.PrevSibling = nil
	child.NextSibling = nil
}

// ReparentChildren reparents all of src's child nodes to n.
func (n *Node) ReparentChildren(src *Node) {
	for {
		child := src.FirstChild
		if child == nil {
			break
		}
		src.RemoveChild(child)
		n.AppendChild(child)
	}
}

// Children returns the child sequence as a slice, for callers that prefer
// range loops over link walking.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Alignment is a horizontal or vertical cell alignment.
type Alignment uint32

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
	AlignTop
	AlignMiddle
	AlignBottom
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignTop:
		return "top"
	case AlignMiddle:
		return "middle"
	case AlignBottom:
		return "bottom"
	}
	return "none"
}

// TableFormat identifies the cell separator dialect of a table.
type TableFormat uint32

const (
	PSVFormat TableFormat = iota
	CSVFormat
	TSVFormat
	DSVFormat
)

func (f TableFormat) String() string {
	switch f {
	case CSVFormat:
		return "csv"
	case TSVFormat:
		return "tsv"
	case DSVFormat:
		return "dsv"
	}
	return "psv"
}

// CellStyle is the per-cell style letter of a PSV cell specifier.
type CellStyle uint32

const (
	DefaultCellStyle CellStyle = iota
	HeaderCellStyle
	AsciidocCellStyle
	LiteralCellStyle
	MonospaceCellStyle
	EmphasisCellStyle
	StrongCellStyle
	PassCellStyle
	DataCellStyle
	UnknownCellStyle
)

// A TableCell is one cell of a parsed table row.
type TableCell struct {
	Text        string
	ColSpan     int // 1 when not spanning
	RowSpan     int
	HAlign      Alignment
	VAlign      Alignment
	Style       CellStyle
	StyleLetter byte // set for UnknownCellStyle
}

// TableData is the payload of a Table node: the resolved format and
// separator, the raw row strings collected between the boundary lines,
// the parsed cells, the derived header-row count and the per-column
// alignments from a 'cols=' spec.
type TableData struct {
	Format     TableFormat
	Separator  string
	RawRows    []string
	Rows       [][]*TableCell
	HeaderRows int
	ColAligns  []Alignment
}

// Dump renders an indented one-line-per-node sketch of the tree. It backs
// the CLI dump command and the round-trip tests, which compare trees
// modulo spans.
func (n *Node) Dump() string {
	var sb strings.Builder
	n.dump(&sb, 0)
	return sb.String()
}

func (n *Node) dump(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(n.Type.String())

	switch n.Type {
	case SectionNode, DiscreteHeadingNode:
		fmt.Fprintf(sb, " level=%d title=%q", n.Level, PlainText(n.Title))
	case ListNode:
		fmt.Fprintf(sb, " kind=%s marker=%q", n.ListKind, n.Marker)
	case ListItemNode:
		fmt.Fprintf(sb, " text=%q", PlainText(n.Content))
		if n.Checkbox != NoCheckbox {
			fmt.Fprintf(sb, " checkbox=%v", n.Checkbox == CheckboxChecked)
		}
	case DListNode:
		fmt.Fprintf(sb, " sep=%q", n.Marker)
	case DListItemNode:
		var terms []string
		for _, term := range n.Terms {
			terms = append(terms, PlainText(term))
		}
		fmt.Fprintf(sb, " terms=%q", terms)
		if len(n.Content) > 0 {
			fmt.Fprintf(sb, " desc=%q", PlainText(n.Content))
		}
	case ParagraphNode:
		fmt.Fprintf(sb, " text=%q", PlainText(n.Content))
	case ListingNode, LiteralNode, VerseNode, MathBlockNode:
		fmt.Fprintf(sb, " raw=%q", n.Raw)
	case AdmonitionNode:
		fmt.Fprintf(sb, " style=%s", n.Style)
	case QuoteNode:
		if n.Attribution != "" {
			fmt.Fprintf(sb, " attribution=%q", n.Attribution)
		}
		if n.CiteTitle != "" {
			fmt.Fprintf(sb, " citetitle=%q", n.CiteTitle)
		}
	case TableNode:
		if n.Table != nil {
			fmt.Fprintf(sb, " format=%s rows=%d header=%d", n.Table.Format, len(n.Table.Rows), n.Table.HeaderRows)
		}
	case BlockMacroNode:
		fmt.Fprintf(sb, " name=%s target=%q", n.Name, n.Target)
	}

	if n.Id != "" {
		fmt.Fprintf(sb, " id=%q", n.Id)
	}
	if len(n.Roles) > 0 {
		fmt.Fprintf(sb, " roles=%v", n.Roles)
	}
	if n.Type != SectionNode && n.Type != DiscreteHeadingNode && len(n.Title) > 0 {
		fmt.Fprintf(sb, " title=%q", PlainText(n.Title))
	}
	sb.WriteByte('\n')

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		c.dump(sb, depth+1)
	}
}
