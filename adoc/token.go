package adoc

import (
	"fmt"
	"strconv"
)

// A TokenType is the classification of one physical source line.
type TokenType uint32

const (
	// ErrorToken means that an error occurred during scanning.
	ErrorToken TokenType = iota
	// BlankToken is an empty line.
	BlankToken
	// TextToken is a line with no structural meaning of its own.
	TextToken
	// AttrSetToken is an attribute definition line like ':name: value'.
	AttrSetToken
	// AttrUnsetToken is an attribute removal line like ':name!:'.
	AttrUnsetToken
	// BlockMetaToken is a bracketed metadata line like '[NOTE%option.role]'.
	BlockMetaToken
	// ListItemToken is an unordered, ordered or callout list item line.
	ListItemToken
	// DListItemToken is a description list item line like 'term:: text'.
	DListItemToken
	// ContinuationToken is a line consisting of a single '+'.
	ContinuationToken
	// FenceToken is a delimited block fence like '====' or '--'.
	FenceToken
	// HeadingToken is a section heading line like '== Title'.
	HeadingToken
	// TableToken is a table boundary line like '|==='.
	TableToken
	// DirectiveToken is a block macro or preprocessor-shaped line 'name::target[body]'.
	DirectiveToken
)

// String returns a string representation of the TokenType.
func (t TokenType) String() string {
	switch t {
	case ErrorToken:
		return "Error"
	case BlankToken:
		return "Blank"
	case TextToken:
		return "Text"
	case AttrSetToken:
		return "AttrSet"
	case AttrUnsetToken:
		return "AttrUnset"
	case BlockMetaToken:
		return "BlockMeta"
	case ListItemToken:
		return "ListItem"
	case DListItemToken:
		return "DListItem"
	case ContinuationToken:
		return "Continuation"
	case FenceToken:
		return "Fence"
	case HeadingToken:
		return "Heading"
	case TableToken:
		return "Table"
	case DirectiveToken:
		return "Directive"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// FileLoc is one link of a provenance chain: the (possibly empty) name of
// a source file and a 1-based line number inside it.
type FileLoc struct {
	File string
	Line int
}

// Pos is a position in the flattened source text. Col counts UTF-16 code
// units so that positions are stable across platforms and editors.
// Stack, when present, records the chain of include files the line came
// from, outermost first.
type Pos struct {
	Line  int
	Col   int
	Stack []FileLoc
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Span is a half-open [Start, End) range in the source text.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// FenceKind identifies the family of a delimited block fence.
type FenceKind uint32

const (
	NoFence FenceKind = iota
	ListingFence
	ExampleFence
	SidebarFence
	QuoteFence
	PassFence
	LiteralFence
	OpenFence
)

func (k FenceKind) String() string {
	switch k {
	case ListingFence:
		return "listing"
	case ExampleFence:
		return "example"
	case SidebarFence:
		return "sidebar"
	case QuoteFence:
		return "quote"
	case PassFence:
		return "pass"
	case LiteralFence:
		return "literal"
	case OpenFence:
		return "open"
	}
	return "none"
}

// ListKind identifies the family of a list.
type ListKind uint32

const (
	NoList ListKind = iota
	UnorderedList
	OrderedList
	CalloutList
)

func (k ListKind) String() string {
	switch k {
	case UnorderedList:
		return "unordered"
	case OrderedList:
		return "ordered"
	case CalloutList:
		return "callout"
	}
	return "none"
}

// Checkbox is the optional checkbox state of a list item.
type Checkbox uint32

const (
	NoCheckbox Checkbox = iota
	CheckboxUnchecked
	CheckboxChecked
)

// DirectiveKind is the closed set of preprocessor directives; any other
// macro-shaped line keeps its name as an open-ended block macro.
type DirectiveKind uint32

const (
	OtherDirective DirectiveKind = iota
	IncludeDirective
	IfdefDirective
	IfndefDirective
	IfevalDirective
	EndifDirective
)

// LineMeta is the payload of a BlockMetaToken: the shorthand pieces of a
// '[...]' metadata line in encounter order, plus the raw interior for
// later attribute-pair parsing.
type LineMeta struct {
	ID       string
	Roles    []string
	Options  []string
	Interior string
}

// A Token is the classification of one physical line, produced by the
// Scanner. The payload fields are byte offsets into Text, so later code
// can slice exact sub-ranges without re-scanning the line.
type Token struct {
	Type       TokenType
	LineNumber int    // 1-based line in the flattened text
	Text       string // the complete line
	Span       Span

	// Fence / table payload
	Fence    FenceKind
	FenceLen int
	Style    byte // table boundary style character

	// Heading payload
	Level int // 0-based section level (number of '=' minus one)

	// List item payload
	List         ListKind
	Marker       string // the literal marker text, e.g. "**", "." or "<1>"
	EnumStyle    byte   // explicit enumerator style: '1', 'a' or 'A'
	MarkerDepth  int    // nesting depth implied by the marker
	Checkbox     Checkbox
	ContentStart int // byte offset of the item content in Text

	// Description list payload
	Term      string // the term text before the separator
	Separator string // the literal separator, e.g. "::" or ";;"
	DescStart int    // byte offset of the inline description, -1 if none

	// Attribute line payload
	AttrName  string
	AttrValue string

	// Block metadata payload
	Meta *LineMeta

	// Directive payload
	Directive DirectiveKind
	DirName   string
	DirTarget string
	DirBody   string
}

// utf16Len returns the length of s in UTF-16 code units.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// colOf converts a byte offset in line to a UTF-16 column.
func colOf(line string, byteOff int) int {
	if byteOff > len(line) {
		byteOff = len(line)
	}
	return utf16Len(line[:byteOff])
}
