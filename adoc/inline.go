package adoc

import (
	"strconv"
	"strings"
)

// An InlineType is the type of an Inline node.
type InlineType uint32

const (
	InlineText InlineType = iota
	InlineStrong
	InlineEmphasis
	InlineMono
	InlineMark
	InlineSuper
	InlineSub
	InlineLink
	InlineXref
	InlinePass
	InlineMath
	InlineMacro
	InlineFootnote
	InlineIndexTerm
)

// String returns a string representation of the InlineType.
func (t InlineType) String() string {
	switch t {
	case InlineText:
		return "Text"
	case InlineStrong:
		return "Strong"
	case InlineEmphasis:
		return "Emphasis"
	case InlineMono:
		return "Mono"
	case InlineMark:
		return "Mark"
	case InlineSuper:
		return "Superscript"
	case InlineSub:
		return "Subscript"
	case InlineLink:
		return "Link"
	case InlineXref:
		return "Xref"
	case InlinePass:
		return "Pass"
	case InlineMath:
		return "Math"
	case InlineMacro:
		return "Macro"
	case InlineFootnote:
		return "Footnote"
	case InlineIndexTerm:
		return "IndexTerm"
	}
	return "Invalid(" + strconv.Itoa(int(t)) + ")"
}

// An Inline is one node of the rich-text tree inside a block. The inline
// tree is acyclic and owned by its block.
type Inline struct {
	Type InlineType

	// Text is the literal content of Text nodes, the raw content of
	// Pass nodes and the body of Math nodes.
	Text string

	// Children hold span content, link and xref labels and footnote
	// content.
	Children []*Inline

	// Link and macro target; raw xref target.
	Target string

	// Generic macro name.
	Name string

	// Math payload
	MathKind string // "stem", "latexmath", "asciimath" or "dollar"
	Display  bool

	// Footnote payload. ID is resolved by a later pass, not here.
	Ref string
	ID  *int

	// Index term payload
	Terms   []string
	Visible bool

	// Advisory decomposition of an xref target, nil when the raw target
	// does not use the multi-part addressing syntax.
	Coord *XrefCoord
}

// PlainText renders an inline sequence to plain text by concatenating the
// plain text of each leaf, recursively.
func PlainText(nodes []*Inline) string {
	var sb strings.Builder
	for _, n := range nodes {
		n.plainText(&sb)
	}
	return sb.String()
}

func (n *Inline) plainText(sb *strings.Builder) {
	switch n.Type {
	case InlineText, InlinePass, InlineMath:
		sb.WriteString(n.Text)
	case InlineLink, InlineXref:
		if len(n.Children) == 0 {
			sb.WriteString(n.Target)
			return
		}
		for _, c := range n.Children {
			c.plainText(sb)
		}
	case InlineIndexTerm:
		if n.Visible && len(n.Terms) > 0 {
			sb.WriteString(n.Terms[0])
		}
	default:
		for _, c := range n.Children {
			c.plainText(sb)
		}
	}
}

// admonition labels recognized in paragraph shorthand and block styles.
var admonitionLabels = []string{"NOTE", "TIP", "WARNING", "CAUTION", "IMPORTANT"}

// spanDelims maps a span delimiter character to its node type. The '*'
// and '_' (and '#') delimiters are constrained: they only act as markup
// at word boundaries.
var spanDelims = map[byte]InlineType{
	'*': InlineStrong,
	'_': InlineEmphasis,
	'`': InlineMono,
	'#': InlineMark,
	'^': InlineSuper,
	'~': InlineSub,
}

func constrainedDelim(c byte) bool {
	return c == '*' || c == '_' || c == '#'
}

// ParseInline tokenizes a text span into a tree of inline nodes in a
// single forward pass, with no backtracking. At each position the
// recognition rules are tried in order; on no match the character is
// buffered as plain text.
func ParseInline(text string) []*Inline {
	p := &inlineParser{src: text}
	p.run()
	return p.out
}

type inlineParser struct {
	src string
	i   int
	out []*Inline
	buf strings.Builder
}

// flush turns the accumulated plain text into a Text node.
func (p *inlineParser) flush() {
	if p.buf.Len() == 0 {
		return
	}
	p.out = append(p.out, &Inline{Type: InlineText, Text: p.buf.String()})
	p.buf.Reset()
}

func (p *inlineParser) emit(n *Inline) {
	p.flush()
	p.out = append(p.out, n)
}

// prevByte is the character immediately before the current position, or 0
// at the start of the span.
func (p *inlineParser) prevByte() byte {
	if p.i == 0 {
		return 0
	}
	return p.src[p.i-1]
}

func (p *inlineParser) run() {
	for p.i < len(p.src) {
		c := p.src[p.i]

		// 1. Backslash escape: the next character is literal
		if c == '\\' && p.i+1 < len(p.src) {
			p.buf.WriteByte(p.src[p.i+1])
			p.i += 2
			continue
		}

		// 2. Explicit link/xref macros, before generic macro recognition
		if (c == 'l' || c == 'x') && p.tryLinkOrXref() {
			continue
		}

		// 3. Generic named inline macro
		if isMacroNameStart(c) && p.tryMacro() {
			continue
		}

		// 4. Inline/display math
		if c == '$' && p.tryDollarMath() {
			continue
		}

		// 5. Index term shorthand
		if c == '(' && p.tryIndexTerm() {
			continue
		}

		// 6. Chevron cross-reference
		if c == '<' && p.tryChevronXref() {
			continue
		}

		// 7. Bare autolink
		if c == 'h' && p.tryAutolink() {
			continue
		}

		// 8. Delimited spans
		if _, ok := spanDelims[c]; ok && p.trySpan() {
			continue
		}

		p.buf.WriteByte(c)
		p.i++
	}
	p.flush()
}

// readMacroTail reads 'target[body]' starting at p.i and returns the
// pieces without consuming on failure. The target is a possibly empty run
// of non-whitespace, non-'[' characters; the body runs to the next
// unescaped ']' with no nested-bracket support.
func (p *inlineParser) readMacroTail(start int) (target, body string, end int, ok bool) {
	i := start
	for i < len(p.src) && p.src[i] != '[' && !isSpace(p.src[i]) {
		i++
	}
	if i >= len(p.src) || p.src[i] != '[' {
		return "", "", 0, false
	}
	target = p.src[start:i]
	i++
	var sb strings.Builder
	for i < len(p.src) {
		if p.src[i] == '\\' && i+1 < len(p.src) {
			sb.WriteByte(p.src[i+1])
			i += 2
			continue
		}
		if p.src[i] == ']' {
			return target, sb.String(), i + 1, true
		}
		sb.WriteByte(p.src[i])
		i++
	}
	return "", "", 0, false
}

func (p *inlineParser) tryLinkOrXref() bool {
	var name string
	switch {
	case strings.HasPrefix(p.src[p.i:], "link:"):
		name = "link"
	case strings.HasPrefix(p.src[p.i:], "xref:"):
		name = "xref"
	default:
		return false
	}
	if isWordByte(p.prevByte()) {
		return false
	}

	target, body, end, ok := p.readMacroTail(p.i + len(name) + 1)
	if !ok {
		return false
	}

	n := &Inline{Target: target}
	if body != "" {
		n.Children = ParseInline(body)
	}
	if name == "link" {
		n.Type = InlineLink
		if body == "" {
			n.Children = []*Inline{{Type: InlineText, Text: target}}
		}
	} else {
		n.Type = InlineXref
		n.Coord = ParseXrefCoord(target)
	}
	p.emit(n)
	p.i = end
	return true
}

// tryMacro recognizes 'name:target[body]' and specializes the node by
// name: math macros, index terms, footnotes and passthroughs; anything
// else stays a generic Macro node.
func (p *inlineParser) tryMacro() bool {
	if isWordByte(p.prevByte()) {
		return false
	}

	j := p.i
	for j < len(p.src) && isMacroNameByte(p.src[j]) {
		j++
	}
	if j == p.i || j >= len(p.src) || p.src[j] != ':' {
		return false
	}
	name := p.src[p.i:j]

	target, body, end, ok := p.readMacroTail(j + 1)
	if !ok {
		return false
	}

	var n *Inline
	switch name {
	case "stem", "latexmath", "asciimath":
		expr := body
		if expr == "" {
			// The target doubles as the expression when no body is given
			expr = target
		}
		n = &Inline{Type: InlineMath, MathKind: name, Text: expr}
	case "indexterm", "indexterm2":
		n = &Inline{
			Type:    InlineIndexTerm,
			Terms:   splitTerms(body),
			Visible: name == "indexterm2",
		}
	case "footnote":
		n = &Inline{Type: InlineFootnote, Ref: target}
		if body != "" {
			n.Children = ParseInline(body)
		}
	case "pass":
		n = &Inline{Type: InlinePass, Text: body}
	default:
		n = &Inline{Type: InlineMacro, Name: name, Target: target, Text: body}
	}
	p.emit(n)
	p.i = end
	return true
}

// tryDollarMath recognizes '$...$' inline and '$$...$$' display math,
// honoring backslash escapes inside the expression.
func (p *inlineParser) tryDollarMath() bool {
	delim := "$"
	display := false
	if strings.HasPrefix(p.src[p.i:], "$$") {
		delim = "$$"
		display = true
	}

	start := p.i + len(delim)
	var sb strings.Builder
	for j := start; j < len(p.src); j++ {
		if p.src[j] == '\\' && j+1 < len(p.src) {
			sb.WriteByte(p.src[j+1])
			j++
			continue
		}
		if strings.HasPrefix(p.src[j:], delim) {
			if sb.Len() == 0 {
				return false
			}
			p.emit(&Inline{Type: InlineMath, MathKind: "dollar", Text: sb.String(), Display: display})
			p.i = j + len(delim)
			return true
		}
		sb.WriteByte(p.src[j])
	}
	return false
}

// tryIndexTerm recognizes '((term))' (visible, single term) and
// '(((a, b)))' (invisible, comma-split terms).
func (p *inlineParser) tryIndexTerm() bool {
	open, close := "((", "))"
	visible := true
	if strings.HasPrefix(p.src[p.i:], "(((") {
		open, close = "(((", ")))"
		visible = false
	} else if !strings.HasPrefix(p.src[p.i:], "((") {
		return false
	}

	start := p.i + len(open)
	end := strings.Index(p.src[start:], close)
	if end < 0 {
		return false
	}
	inner := p.src[start : start+end]

	n := &Inline{Type: InlineIndexTerm, Visible: visible}
	if visible {
		n.Terms = []string{strings.TrimSpace(inner)}
	} else {
		n.Terms = splitTerms(inner)
	}
	p.emit(n)
	p.i = start + end + len(close)
	return true
}

// tryChevronXref recognizes '<<target>>' and '<<target,label>>'.
func (p *inlineParser) tryChevronXref() bool {
	if !strings.HasPrefix(p.src[p.i:], "<<") {
		return false
	}
	start := p.i + 2
	end := strings.Index(p.src[start:], ">>")
	if end < 0 {
		return false
	}
	inner := p.src[start : start+end]

	target, label, hasLabel := strings.Cut(inner, ",")
	n := &Inline{
		Type:   InlineXref,
		Target: strings.TrimSpace(target),
	}
	n.Coord = ParseXrefCoord(n.Target)
	if hasLabel {
		n.Children = ParseInline(strings.TrimSpace(label))
	}
	p.emit(n)
	p.i = start + end + 2
	return true
}

// tryAutolink recognizes a bare http:// or https:// URL running to the
// next whitespace.
func (p *inlineParser) tryAutolink() bool {
	rest := p.src[p.i:]
	if !strings.HasPrefix(rest, "http://") && !strings.HasPrefix(rest, "https://") {
		return false
	}
	if isWordByte(p.prevByte()) {
		return false
	}

	j := p.i
	for j < len(p.src) && !isSpace(p.src[j]) {
		j++
	}
	url := p.src[p.i:j]
	p.emit(&Inline{
		Type:     InlineLink,
		Target:   url,
		Children: []*Inline{{Type: InlineText, Text: url}},
	})
	p.i = j
	return true
}

// trySpan recognizes delimited spans like *strong* and _emphasis_. The
// run length of the opening delimiter must be matched exactly by the
// close. Constrained delimiters additionally require non-word characters
// (or the span boundary) immediately around the construct.
func (p *inlineParser) trySpan() bool {
	c := p.src[p.i]
	kind := spanDelims[c]

	n := 1
	for p.i+n < len(p.src) && p.src[p.i+n] == c {
		n++
	}
	delim := p.src[p.i : p.i+n]

	if constrainedDelim(c) && isWordByte(p.prevByte()) {
		return false
	}

	// Find a closing run of exactly the same length
	j := p.i + n
	for {
		idx := strings.Index(p.src[j:], delim)
		if idx < 0 {
			return false
		}
		close := j + idx
		if close == p.i+n {
			// Empty content: not a span
			return false
		}
		// The close must not be part of a longer run
		if close+n < len(p.src) && p.src[close+n] == c {
			j = close + 1
			continue
		}
		if p.src[close-1] == c {
			j = close + n
			continue
		}
		if constrainedDelim(c) && close+n < len(p.src) && isWordByte(p.src[close+n]) {
			j = close + n
			continue
		}

		inner := p.src[p.i+n : close]
		p.emit(&Inline{Type: kind, Children: ParseInline(inner)})
		p.i = close + n
		return true
	}
}

func splitTerms(s string) []string {
	var terms []string
	for _, term := range strings.Split(s, ",") {
		term = strings.TrimSpace(term)
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t'
}

func isWordByte(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isMacroNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isMacroNameByte(c byte) bool {
	return isMacroNameStart(c) || c >= '0' && c <= '9' || c == '-'
}
