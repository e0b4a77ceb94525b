package adoc

import (
	"strings"
)

// A Scanner classifies each physical line of the flattened text into
// exactly one Token. The only state carried across lines is the
// inside-table flag: table interiors are opaque to structural scanning
// and are re-interpreted later by the table parser.
type Scanner struct {
	insideTable bool
}

// ScanText classifies every line of text. It is the convenience form used
// when no preprocessing (and therefore no provenance) is involved.
func ScanText(text string) []*Token {
	return ScanLines(splitLines(text), nil)
}

// ScanPreprocessed classifies the output of the preprocessor, attaching
// the provenance stack of every line to its token positions.
func ScanPreprocessed(pp *Preprocessed) []*Token {
	return ScanLines(pp.Lines, pp.Provenance)
}

// ScanLines classifies lines one by one, in order. prov may be nil or
// shorter than lines; missing entries leave the position stacks empty.
func ScanLines(lines []string, prov [][]FileLoc) []*Token {
	s := &Scanner{}
	tokens := make([]*Token, 0, len(lines))
	for i, line := range lines {
		var stack []FileLoc
		if i < len(prov) {
			stack = prov[i]
		}
		tokens = append(tokens, s.ScanLine(line, i+1, stack))
	}
	return tokens
}

// fenceKinds maps a fence character to its block family.
var fenceKinds = map[byte]FenceKind{
	'-': ListingFence,
	'=': ExampleFence,
	'*': SidebarFence,
	'_': QuoteFence,
	'+': PassFence,
	'.': LiteralFence,
}

// directiveKinds is the closed set of preprocessor directive names; any
// other macro-shaped name stays an open-ended block macro.
var directiveKinds = map[string]DirectiveKind{
	"include": IncludeDirective,
	"ifdef":   IfdefDirective,
	"ifndef":  IfndefDirective,
	"ifeval":  IfevalDirective,
	"endif":   EndifDirective,
}

// ScanLine classifies a single line. num is the 1-based line number in
// the flattened text.
func (s *Scanner) ScanLine(line string, num int, stack []FileLoc) *Token {
	t := &Token{
		LineNumber: num,
		Text:       line,
		DescStart:  -1,
		Span: Span{
			Start: Pos{Line: num, Col: 0, Stack: stack},
			End:   Pos{Line: num, Col: utf16Len(line), Stack: stack},
		},
	}

	trimmed := strings.TrimSpace(line)
	lead := strings.Index(line, trimmed) // offset of trimmed content in line
	if trimmed == "" {
		lead = 0
	}

	// 1. Empty line
	if trimmed == "" {
		t.Type = BlankToken
		return t
	}

	// 2. Table boundary: one of '| , : ; !' followed by one or more '='
	if len(trimmed) >= 2 && strings.IndexByte("|,:;!", trimmed[0]) >= 0 &&
		strings.Count(trimmed[1:], "=") == len(trimmed)-1 {
		t.Type = TableToken
		t.Style = trimmed[0]
		t.FenceLen = len(trimmed)
		s.insideTable = !s.insideTable
		return t
	}

	// 3. Table interiors are opaque: everything is text
	if s.insideTable {
		t.Type = TextToken
		return t
	}

	// 4. Continuation
	if trimmed == "+" {
		t.Type = ContinuationToken
		return t
	}

	// 5. Block metadata line (but not a '[[...]]' anchor)
	if trimmed[0] == '[' && trimmed[len(trimmed)-1] == ']' && !strings.HasPrefix(trimmed, "[[") {
		t.Type = BlockMetaToken
		t.Meta = parseLineMeta(trimmed[1 : len(trimmed)-1])
		return t
	}

	// 6. Attribute definition
	if trimmed[0] == ':' {
		if m := reAttrLine.FindStringSubmatch(trimmed); m != nil {
			if m[2] == "!" {
				t.Type = AttrUnsetToken
			} else {
				t.Type = AttrSetToken
				t.AttrValue = strings.TrimSpace(m[3])
			}
			t.AttrName = m[1]
			return t
		}
	}

	// 7. Block fence: a whole line of one repeated fence character
	if kind, n := fenceRun(trimmed); kind != NoFence {
		t.Type = FenceToken
		t.Fence = kind
		t.FenceLen = n
		return t
	}

	// 8. Section heading
	if run := headingRun(trimmed); run >= 1 && run <= 6 && strings.TrimSpace(trimmed[run+1:]) != "" {
		t.Type = HeadingToken
		t.Level = run - 1
		t.ContentStart = lead + run + 1
		return t
	}

	// 9. List item
	if s.scanListItem(t, trimmed, lead) {
		return t
	}

	// 10. Description list item
	if s.scanDListItem(t, trimmed, lead) {
		return t
	}

	// 11. Directive / block macro
	if m := reDirective.FindStringSubmatch(trimmed); m != nil {
		t.Type = DirectiveToken
		t.DirName = m[1]
		t.DirTarget = m[2]
		t.DirBody = m[3]
		t.Directive = directiveKinds[m[1]]
		return t
	}

	// 12. Default
	t.Type = TextToken
	return t
}

// fenceRun reports the fence kind of a line consisting of one repeated
// character: at least 4 characters, or exactly 2 for the '--' open-block
// shorthand.
func fenceRun(trimmed string) (FenceKind, int) {
	c := trimmed[0]
	kind, ok := fenceKinds[c]
	if !ok {
		return NoFence, 0
	}
	for i := 1; i < len(trimmed); i++ {
		if trimmed[i] != c {
			return NoFence, 0
		}
	}
	if trimmed == "--" {
		return OpenFence, 2
	}
	if len(trimmed) < 4 {
		return NoFence, 0
	}
	return kind, len(trimmed)
}

// scanListItem recognizes unordered, ordered and callout list items.
func (s *Scanner) scanListItem(t *Token, trimmed string, lead int) bool {

	// Callout: '<N>' followed by a space
	if strings.HasPrefix(trimmed, "<") {
		if end := strings.IndexByte(trimmed, '>'); end > 1 {
			digits := trimmed[1:end]
			if isDigits(digits) && end+1 < len(trimmed) && trimmed[end+1] == ' ' {
				t.Type = ListItemToken
				t.List = CalloutList
				t.Marker = trimmed[:end+1]
				t.MarkerDepth = 1
				t.ContentStart = lead + end + 2
				return true
			}
		}
	}

	// Unordered: a '*' run (depth = run length), or a single '-' or '+'
	switch trimmed[0] {
	case '*':
		n := 1
		for n < len(trimmed) && trimmed[n] == '*' {
			n++
		}
		if n < len(trimmed) && trimmed[n] == ' ' {
			t.Type = ListItemToken
			t.List = UnorderedList
			t.Marker = trimmed[:n]
			t.MarkerDepth = n
			s.finishListItem(t, trimmed, lead, n+1)
			return true
		}
	case '-', '+':
		if len(trimmed) > 1 && trimmed[1] == ' ' {
			t.Type = ListItemToken
			t.List = UnorderedList
			t.Marker = trimmed[:1]
			t.MarkerDepth = 1
			s.finishListItem(t, trimmed, lead, 2)
			return true
		}
	case '.':
		// Dot-only ordered: depth = run length
		n := 1
		for n < len(trimmed) && trimmed[n] == '.' {
			n++
		}
		if n < len(trimmed) && trimmed[n] == ' ' {
			t.Type = ListItemToken
			t.List = OrderedList
			t.Marker = trimmed[:n]
			t.MarkerDepth = n
			s.finishListItem(t, trimmed, lead, n+1)
			return true
		}
	}

	// Explicit enumerator: one or more '<alnum>+.' groups and a space
	if groups, width := enumGroups(trimmed); groups > 0 {
		t.Type = ListItemToken
		t.List = OrderedList
		t.Marker = trimmed[:width]
		t.MarkerDepth = groups
		t.EnumStyle = enumStyleOf(trimmed[0])
		s.finishListItem(t, trimmed, lead, width+1)
		return true
	}

	return false
}

// finishListItem captures an optional checkbox and the content offset.
func (s *Scanner) finishListItem(t *Token, trimmed string, lead, after int) {
	rest := trimmed[after:]
	for _, box := range []string{"[ ] ", "[x] ", "[X] "} {
		if strings.HasPrefix(rest, box) {
			if box == "[ ] " {
				t.Checkbox = CheckboxUnchecked
			} else {
				t.Checkbox = CheckboxChecked
			}
			after += len(box)
			break
		}
	}
	t.ContentStart = lead + after
}

// enumGroups counts leading enumerator groups like '1.', 'a.' or '3.1.'
// and returns the byte width of the whole enumerator; the enumerator must
// be followed by a space.
func enumGroups(s string) (groups, width int) {
	i := 0
	for {
		start := i
		for i < len(s) && isAlnum(s[i]) {
			i++
		}
		if i == start || i >= len(s) || s[i] != '.' {
			break
		}
		i++
		groups++
		width = i
	}
	if groups == 0 || width >= len(s) || s[width] != ' ' {
		return 0, 0
	}
	return groups, width
}

func enumStyleOf(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return '1'
	case c >= 'a' && c <= 'z':
		return 'a'
	case c >= 'A' && c <= 'Z':
		return 'A'
	}
	return 0
}

// scanDListItem recognizes description list items: a term followed by a
// ':' run of length 2 to 4 (or ';;'), immediately followed by a space or
// the end of the line.
func (s *Scanner) scanDListItem(t *Token, trimmed string, lead int) bool {
	sep, idx := findDListSeparator(trimmed)
	if sep == "" {
		return false
	}

	t.Type = DListItemToken
	t.Term = strings.TrimSpace(trimmed[:idx])
	t.Separator = sep

	after := idx + len(sep)
	rest := trimmed[after:]
	if desc := strings.TrimLeft(rest, " "); desc != "" {
		t.DescStart = lead + after + (len(rest) - len(desc))
	}
	return true
}

func findDListSeparator(s string) (string, int) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ':':
			n := i
			for n < len(s) && s[n] == ':' {
				n++
			}
			run := n - i
			if run >= 2 && run <= 4 && (n == len(s) || s[n] == ' ') {
				return s[i:n], i
			}
			i = n - 1
		case ';':
			if strings.HasPrefix(s[i:], ";;") && (i+2 == len(s) || s[i+2] == ' ') {
				return ";;", i
			}
		}
	}
	return "", 0
}

// parseLineMeta extracts the shorthand '#id', '.role' and '%option' runs
// of the first positional segment, in encounter order, and keeps the raw
// interior for later attribute-pair parsing.
func parseLineMeta(interior string) *LineMeta {
	meta := &LineMeta{Interior: interior}

	first, _, _ := cutUnquoted(interior, ',')
	_, id, roles, options := splitShorthand(first)
	meta.ID = id
	meta.Roles = roles
	meta.Options = options
	return meta
}

// splitShorthand splits a first positional entry like 'style#id.role%opt'
// into its pieces.
func splitShorthand(s string) (style, id string, roles, options []string) {
	start := 0
	kind := byte(0)
	flush := func(end int) {
		part := s[start:end]
		switch kind {
		case 0:
			style = part
		case '#':
			if id == "" {
				id = part
			}
		case '.':
			if part != "" {
				roles = append(roles, part)
			}
		case '%':
			if part != "" {
				options = append(options, part)
			}
		}
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '#', '.', '%':
			flush(i)
			kind = s[i]
			start = i + 1
		}
	}
	flush(len(s))
	return style, id, roles, options
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
