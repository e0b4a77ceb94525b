package adoc

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ByteRenderer accumulates the output document. It wraps a bytes.Buffer
// with variadic helpers so callers can mix strings, byte slices, bytes
// and integers in one call without manual conversion.
type ByteRenderer struct {
	bytes.Buffer
}

// Render writes its arguments in sequence.
func (r *ByteRenderer) Render(inputs ...any) {
	for _, s := range inputs {
		switch v := s.(type) {
		case string:
			r.WriteString(v)
		case []byte:
			r.Write(v)
		case byte:
			r.WriteByte(v)
		case rune:
			r.WriteRune(v)
		case int:
			r.WriteString(strconv.Itoa(v))
		case nil:
			// skip
		default:
			fmt.Fprint(r, v)
		}
	}
}

// Renderln writes its arguments followed by a newline.
func (r *ByteRenderer) Renderln(inputs ...any) {
	r.Render(inputs...)
	r.WriteByte('\n')
}

// CloneBytes returns an independent copy of the accumulated bytes.
func (r *ByteRenderer) CloneBytes() []byte {
	return bytes.Clone(r.Bytes())
}

// RenderAdoc writes the document back out as canonical source markup.
// Parsing the result yields the same tree (modulo source spans), which
// the tests rely on.
func RenderAdoc(doc *Document) []byte {
	br := &ByteRenderer{}
	if doc.Header != nil {
		br.Render("= ")
		renderInlines(br, doc.Header.Title)
		br.Renderln()
		br.Renderln()
	}
	for _, block := range doc.Blocks() {
		renderBlock(br, block)
	}
	return br.CloneBytes()
}

// delimiterFor returns the canonical fence line for a delimited block,
// preferring the one recorded at parse time.
func delimiterFor(n *Node, fallback string) string {
	if n.Delimiter != "" {
		return n.Delimiter
	}
	return fallback
}

func renderMeta(br *ByteRenderer, n *Node) {
	if n.Id != "" {
		if n.RefText != "" {
			br.Renderln("[[", n.Id, ",", n.RefText, "]]")
		} else {
			br.Renderln("[[", n.Id, "]]")
		}
	}
	if n.Title != nil {
		br.Render(".")
		renderInlines(br, n.Title)
		br.Renderln()
	}
	var parts []string
	if n.Style != "" && !implicitStyle(n) {
		parts = append(parts, n.Style)
	}
	// Positional args beyond the style slot, e.g. the language of a
	// source listing. Block macros carry theirs in the macro body.
	if n.Type != BlockMacroNode && len(n.Positional) > 1 {
		parts = append(parts, n.Positional[1:]...)
	}
	for _, role := range n.Roles {
		if role == n.Style {
			continue
		}
		parts = append(parts, "."+role)
	}
	for _, opt := range n.Options {
		parts = append(parts, "%"+opt)
	}
	for key, value := range n.Attributes {
		parts = append(parts, key+"=\""+value+"\"")
	}
	if len(parts) > 0 {
		br.Renderln("[", strings.Join(parts, ","), "]")
	}
}

// implicitStyle reports whether the node's style is already implied by
// its rendered form and need not be repeated on a metadata line.
func implicitStyle(n *Node) bool {
	switch n.Type {
	case AdmonitionNode:
		// the LABEL: shorthand or the explicit line carries it
		return n.FirstChild != nil && n.FirstChild.NextSibling == nil &&
			n.FirstChild.Type == ParagraphNode
	case ListingNode:
		return n.Style == "pass"
	case DiscreteHeadingNode:
		return true
	}
	return false
}

func renderBlock(br *ByteRenderer, n *Node) {
	switch n.Type {
	case SectionNode:
		renderMeta(br, n)
		br.Render(strings.Repeat("=", n.Level+1), " ")
		renderInlines(br, n.Title)
		br.Renderln()
		br.Renderln()
		for _, child := range n.Children() {
			renderBlock(br, child)
		}

	case DiscreteHeadingNode:
		br.Renderln("[discrete]")
		br.Render(strings.Repeat("=", n.Level+1), " ")
		renderInlines(br, n.Title)
		br.Renderln()
		br.Renderln()

	case ParagraphNode:
		renderMeta(br, n)
		renderInlines(br, n.Content)
		br.Renderln()
		br.Renderln()

	case AdmonitionNode:
		only := n.FirstChild
		if only != nil && only.NextSibling == nil && only.Type == ParagraphNode {
			br.Render(n.Style, ": ")
			renderInlines(br, only.Content)
			br.Renderln()
			br.Renderln()
			return
		}
		renderMeta(br, n)
		delim := delimiterFor(n, "====")
		br.Renderln(delim)
		for _, child := range n.Children() {
			renderBlock(br, child)
		}
		br.Renderln(delim)
		br.Renderln()

	case ListingNode:
		renderMeta(br, n)
		delim := delimiterFor(n, "----")
		if n.Style == "pass" {
			delim = delimiterFor(n, "++++")
		}
		br.Renderln(delim)
		br.Renderln(n.Raw)
		br.Renderln(delim)
		br.Renderln()

	case LiteralNode:
		if n.Delimiter != "" {
			renderMeta(br, n)
			br.Renderln(n.Delimiter)
			br.Renderln(n.Raw)
			br.Renderln(n.Delimiter)
		} else {
			br.Renderln("[literal]")
			br.Renderln(n.Raw)
		}
		br.Renderln()

	case VerseNode:
		br.Renderln("[verse]")
		delim := delimiterFor(n, "____")
		br.Renderln(delim)
		br.Renderln(n.Raw)
		br.Renderln(delim)
		br.Renderln()

	case MathBlockNode:
		kind := n.MathKind
		if kind == "" {
			kind = "stem"
		}
		br.Renderln("[", kind, "]")
		delim := delimiterFor(n, "++++")
		br.Renderln(delim)
		br.Renderln(n.Raw)
		br.Renderln(delim)
		br.Renderln()

	case QuoteNode, ExampleNode, SidebarNode, OpenNode:
		renderMeta(br, n)
		delim := n.Delimiter
		if delim == "" {
			switch n.Type {
			case QuoteNode:
				delim = "____"
			case ExampleNode:
				delim = "===="
			case SidebarNode:
				delim = "****"
			default:
				delim = "--"
			}
		}
		br.Renderln(delim)
		for _, child := range n.Children() {
			renderBlock(br, child)
		}
		br.Renderln(delim)
		if n.Attribution != "" {
			br.Renderln("-- ", n.Attribution)
			if n.CiteTitle != "" {
				br.Renderln(n.CiteTitle)
			}
		}
		br.Renderln()

	case ListNode:
		renderMeta(br, n)
		renderList(br, n, 1)
		br.Renderln()

	case DListNode:
		renderMeta(br, n)
		renderDList(br, n, 1)
		br.Renderln()

	case TableNode:
		renderMeta(br, n)
		delim := delimiterFor(n, "|===")
		br.Renderln(delim)
		br.Renderln(n.Raw)
		br.Renderln(delim)
		br.Renderln()

	case BlockMacroNode:
		renderMeta(br, n)
		var body []string
		body = append(body, n.Positional...)
		for key, value := range n.Attributes {
			body = append(body, key+"="+value)
		}
		br.Renderln(n.Name, "::", n.Target, "[", strings.Join(body, ","), "]")
		br.Renderln()
	}
}

// listMarker reconstructs a marker of the given depth for a list flavor.
func listMarker(list *Node, depth int) string {
	if list.Marker != "" && depth == 1 {
		return list.Marker
	}
	switch list.ListKind {
	case OrderedList:
		return strings.Repeat(".", depth)
	case CalloutList:
		return list.Marker
	default:
		sym := byte('*')
		if list.Marker != "" {
			sym = list.Marker[0]
		}
		return strings.Repeat(string(sym), depth)
	}
}

func renderList(br *ByteRenderer, list *Node, depth int) {
	for _, item := range list.Children() {
		marker := item.Marker
		if marker == "" {
			marker = listMarker(list, depth)
		}
		br.Render(marker, " ")
		switch item.Checkbox {
		case CheckboxUnchecked:
			br.Render("[ ] ")
		case CheckboxChecked:
			br.Render("[x] ")
		}
		renderInlines(br, item.Content)
		br.Renderln()
		renderItemExtras(br, item, depth)
	}
}

func renderDList(br *ByteRenderer, list *Node, depth int) {
	for _, item := range list.Children() {
		sep := item.Marker
		if sep == "" {
			sep = "::"
		}
		for i, term := range item.Terms {
			renderInlines(br, term)
			br.Render(sep)
			if i == len(item.Terms)-1 && item.Content != nil {
				br.Render(" ")
				renderInlines(br, item.Content)
			}
			br.Renderln()
		}
		renderItemExtras(br, item, depth)
	}
}

// renderItemExtras writes the nested lists and continuation blocks of a
// list item.
func renderItemExtras(br *ByteRenderer, item *Node, depth int) {
	for _, child := range item.Children() {
		switch child.Type {
		case ListNode:
			renderList(br, child, depth+1)
		case DListNode:
			renderDList(br, child, depth+1)
		default:
			br.Renderln("+")
			renderBlock(br, child)
		}
	}
}

func renderInlines(br *ByteRenderer, nodes []*Inline) {
	for _, n := range nodes {
		renderInline(br, n)
	}
}

var spanMarkup = map[InlineType]string{
	InlineStrong:   "*",
	InlineEmphasis: "_",
	InlineMono:     "`",
	InlineMark:     "#",
	InlineSuper:    "^",
	InlineSub:      "~",
}

func renderInline(br *ByteRenderer, n *Inline) {
	switch n.Type {
	case InlineText:
		br.Render(n.Text)

	case InlineStrong, InlineEmphasis, InlineMono, InlineMark, InlineSuper, InlineSub:
		mark := spanMarkup[n.Type]
		br.Render(mark)
		renderInlines(br, n.Children)
		br.Render(mark)

	case InlineLink:
		br.Render("link:", n.Target, "[")
		renderInlines(br, n.Children)
		br.Render("]")

	case InlineXref:
		br.Render("xref:", n.Target, "[")
		renderInlines(br, n.Children)
		br.Render("]")

	case InlinePass:
		br.Render("pass:[", n.Text, "]")

	case InlineMath:
		if n.MathKind == "dollar" {
			text := strings.ReplaceAll(n.Text, "$", "\\$")
			if n.Display {
				br.Render("$$", text, "$$")
			} else {
				br.Render("$", text, "$")
			}
			return
		}
		kind := n.MathKind
		if kind == "" {
			kind = "stem"
		}
		br.Render(kind, ":[", n.Text, "]")

	case InlineFootnote:
		br.Render("footnote:", n.Ref, "[")
		renderInlines(br, n.Children)
		br.Render("]")

	case InlineIndexTerm:
		if n.Visible {
			br.Render("((", strings.Join(n.Terms, ","), "))")
		} else {
			br.Render("(((", strings.Join(n.Terms, ","), ")))")
		}

	case InlineMacro:
		br.Render(n.Name, ":", n.Target, "[", n.Text, "]")
	}
}
