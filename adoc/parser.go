package adoc

import (
	"os"
	"path/filepath"
	"strings"
)

// ParseOptions configure one parse. A parse is a pure function of the
// source text plus these options; nothing is shared between parses.
type ParseOptions struct {
	// FileName names the top-level source for diagnostics and
	// provenance. It may be empty.
	FileName string

	// BaseDir is the directory relative include targets resolve against.
	BaseDir string

	// Attributes seed the attribute environment.
	Attributes map[string]string

	// LockedAttributes are protected against in-document redefinition.
	LockedAttributes []string

	// HeaderAttributes derives attributes (doctitle) from the document
	// header when true.
	HeaderAttributes bool

	// Preprocessor options; FileName and BaseDir are copied in when
	// empty.
	Preprocessor PreprocessorOptions
}

// Header is the optional document header: the level-0 title at the top
// of the document.
type Header struct {
	Title []*Inline
	Span  Span
}

// Document is the result of one parse: the attribute environment as left
// by the document, the optional header, the block tree under Root and
// the diagnostics collected along the way. The tree is read-only after
// Parse returns.
type Document struct {
	Attributes *AttrEnv
	Header     *Header
	Root       *Node
	Span       Span
	Diags      []*Diag
}

// Blocks returns the top-level block sequence of the document.
func (doc *Document) Blocks() []*Node {
	return doc.Root.Children()
}

// Parser is the structural parser: a state machine over the token
// cursor. All of its mutable state lives on one call stack for one
// parse.
type Parser struct {
	cur      *Cursor
	env      *AttrEnv
	fileName string
	diags    []*Diag

	// pending holds metadata collected in front of a token that closed
	// the current block sequence, so the enclosing level can hand it to
	// the terminating block instead of dropping it.
	pending *blockMeta
}

// Parse preprocesses, scans and parses src into a Document. Malformed
// input never aborts the parse; problems are recorded as diagnostics on
// the returned document.
func Parse(src string, opts ParseOptions) *Document {
	env := NewAttrEnv(opts.Attributes, opts.LockedAttributes)

	ppOpts := opts.Preprocessor
	if ppOpts.FileName == "" {
		ppOpts.FileName = opts.FileName
	}
	if ppOpts.BaseDir == "" {
		ppOpts.BaseDir = opts.BaseDir
	}
	pp := Preprocess(src, env, ppOpts)

	p := &Parser{
		cur:      NewCursor(ScanPreprocessed(pp)),
		env:      env,
		fileName: opts.FileName,
		diags:    pp.Diags,
	}

	doc := &Document{Attributes: env}
	root := &Node{Type: DocumentNode}

	p.skipBlanks()
	if t := p.cur.Peek(); t != nil && t.Type == HeadingToken && t.Level == 0 {
		p.cur.Next()
		title := ParseInline(env.Expand(strings.TrimSpace(t.Text[t.ContentStart:])))
		doc.Header = &Header{Title: title, Span: t.Span}
		if opts.HeaderAttributes {
			env.Set("doctitle", PlainText(title))
		}
	}

	p.parseBlocks(root, func(*Token) bool { return false })

	doc.Root = root
	doc.Diags = p.diags
	if first := root.FirstChild; first != nil {
		doc.Span = Span{Start: first.Span.Start, End: root.LastChild.Span.End}
	}
	if doc.Header != nil {
		doc.Span.Start = doc.Header.Span.Start
		if root.LastChild == nil {
			doc.Span.End = doc.Header.Span.End
		}
	}
	return doc
}

// ParseFromFile reads and parses one top-level document. FileName and
// BaseDir are derived from the path unless already set in opts.
func ParseFromFile(path string, opts ParseOptions) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if opts.FileName == "" {
		opts.FileName = path
	}
	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(path)
	}
	return Parse(string(data), opts), nil
}

func (p *Parser) diag(t *Token, format string, args ...any) {
	file := p.fileName
	line := 0
	if t != nil {
		line = t.LineNumber
		if len(t.Span.Start.Stack) > 0 {
			loc := t.Span.Start.Stack[len(t.Span.Start.Stack)-1]
			file = loc.File
			line = loc.Line
		}
	}
	p.diags = append(p.diags, diagf(file, line, 0, format, args...))
}

func (p *Parser) skipBlanks() {
	for t := p.cur.Peek(); t != nil && t.Type == BlankToken; t = p.cur.Peek() {
		p.cur.Next()
	}
}

func (p *Parser) expand(text string) string {
	return p.env.Expand(text)
}

// blockMeta accumulates the metadata lines preceding a block: id, title,
// reference text, roles, options and free-form attributes, plus the span
// covering only the metadata lines. It is created fresh before every
// block and consumed exactly once.
type blockMeta struct {
	id         string
	refText    string
	title      []*Inline
	style      string
	roles      []string
	options    []string
	attrs      map[string]string
	positional []string
	span       Span
	present    bool
}

func newBlockMeta() *blockMeta {
	return &blockMeta{attrs: map[string]string{}}
}

func (m *blockMeta) cover(s Span) {
	if !m.present {
		m.span = s
		m.present = true
		return
	}
	m.span.End = s.End
}

// collectMeta consumes the run of metadata tokens in front of a block:
// '[...]' metadata lines, '[[id,reftext]]' anchors and '.Title'
// shorthand, stopping at the first token that is none of these.
func (p *Parser) collectMeta() *blockMeta {
	meta := newBlockMeta()
	if p.pending != nil {
		meta = p.pending
		p.pending = nil
	}

	for {
		t := p.cur.Peek()
		if t == nil {
			return meta
		}

		switch t.Type {
		case BlankToken:
			p.cur.Next()
			continue

		case BlockMetaToken:
			p.cur.Next()
			p.mergeMetaLine(meta, t)
			meta.cover(t.Span)
			continue

		case TextToken:
			trimmed := strings.TrimSpace(t.Text)

			// '[[id,reftext]]' anchor shorthand
			if strings.HasPrefix(trimmed, "[[") && strings.HasSuffix(trimmed, "]]") && len(trimmed) > 4 {
				p.cur.Next()
				inner := trimmed[2 : len(trimmed)-2]
				id, ref, _ := strings.Cut(inner, ",")
				if meta.id == "" {
					meta.id = strings.TrimSpace(id)
				}
				if meta.refText == "" {
					meta.refText = strings.TrimSpace(ref)
				}
				meta.cover(t.Span)
				continue
			}

			// '.Title' shorthand: a dot immediately followed by content
			if len(trimmed) > 1 && trimmed[0] == '.' && trimmed[1] != '.' && trimmed[1] != ' ' {
				p.cur.Next()
				meta.title = ParseInline(p.expand(trimmed[1:]))
				meta.cover(t.Span)
				continue
			}
		}

		return meta
	}
}

// mergeMetaLine folds one '[...]' line into the accumulator. The primary
// style is the explicit 'style=' attribute, else the first positional
// entry (with its shorthand stripped), else empty.
func (p *Parser) mergeMetaLine(meta *blockMeta, t *Token) {
	if t.Meta.ID != "" && meta.id == "" {
		meta.id = t.Meta.ID
	}
	meta.roles = append(meta.roles, t.Meta.Roles...)
	meta.options = append(meta.options, t.Meta.Options...)

	positional, named := parseAttrList(t.Meta.Interior)
	if len(positional) > 0 {
		style, _, _, _ := splitShorthand(positional[0])
		positional[0] = style
		if style != "" && meta.style == "" {
			meta.style = style
		}
	}
	meta.positional = append(meta.positional, positional...)

	for key, value := range named {
		switch key {
		case "style":
			meta.style = value
		case "id":
			if meta.id == "" {
				meta.id = value
			}
		case "reftext":
			if meta.refText == "" {
				meta.refText = value
			}
		case "role":
			meta.roles = append(meta.roles, strings.Fields(value)...)
		case "title":
			if meta.title == nil {
				meta.title = ParseInline(p.expand(value))
			}
		default:
			meta.attrs[key] = value
		}
	}

	// A style-named role also selects the primary style
	if meta.style == "" {
		for _, role := range meta.roles {
			if isStyleName(role) {
				meta.style = role
				break
			}
		}
	}
}

// styleNames are the roles that double as a primary style.
var styleNames = map[string]bool{
	"literal": true, "verse": true, "listing": true, "source": true,
	"quote": true, "sidebar": true, "example": true, "open": true,
	"discrete": true, "stem": true, "latexmath": true, "asciimath": true,
}

func isStyleName(name string) bool {
	if styleNames[name] {
		return true
	}
	return admonitionKind(name) != ""
}

// admonitionKind reports the admonition label when name is one,
// else "".
func admonitionKind(name string) string {
	for _, label := range admonitionLabels {
		if name == label {
			return label
		}
	}
	return ""
}

// mergeMeta merges the accumulated metadata into the finished node:
// id/title/reference text fill only when the node did not set them
// itself, roles/options/attributes merge additively, and the node span
// widens to cover the metadata lines.
func (p *Parser) mergeMeta(node *Node, meta *blockMeta) {
	if node.Id == "" {
		node.Id = meta.id
	}
	if node.Title == nil {
		node.Title = meta.title
	}
	if node.RefText == "" {
		node.RefText = meta.refText
	}
	if node.Style == "" {
		node.Style = meta.style
	}
	node.Roles = append(node.Roles, meta.roles...)
	node.Options = append(node.Options, meta.options...)
	node.Positional = append(node.Positional, meta.positional...)
	if len(meta.attrs) > 0 {
		if node.Attributes == nil {
			node.Attributes = map[string]string{}
		}
		for key, value := range meta.attrs {
			if _, exists := node.Attributes[key]; !exists {
				node.Attributes[key] = value
			}
		}
	}
	if meta.present {
		node.Span.Start = meta.span.Start
	}
}

// stopFunc decides, without consuming, whether a token terminates the
// current block sequence.
type stopFunc func(*Token) bool

// parseBlocks parses child blocks into parent until the cursor is
// exhausted or stop fires. Forward progress is guaranteed: every
// iteration either consumes at least one token or returns.
func (p *Parser) parseBlocks(parent *Node, stop stopFunc) {
	for {
		p.skipBlanks()
		before := p.cur.Pos()

		meta := p.collectMeta()

		t := p.cur.Peek()
		if t == nil || stop(t) {
			// Metadata in front of the terminating token belongs to the
			// block that token opens, one level up.
			if meta.present {
				p.pending = meta
			}
			return
		}

		node := p.parseOne(t, meta, stop)

		if node != nil {
			node = p.wrapAdmonition(node, meta)
			p.mergeMeta(node, meta)
			parent.AppendChild(node)
		}

		if p.cur.Pos() == before {
			// parseOne consumed nothing, force progress
			p.diag(t, "parser stalled on %s token, skipping", t.Type)
			p.cur.Next()
		}
	}
}

// parseOne parses a single block starting at t. The dispatch combines
// the token kind with the metadata's primary style.
func (p *Parser) parseOne(t *Token, meta *blockMeta, stop stopFunc) *Node {
	switch t.Type {
	case HeadingToken:
		if meta.style == "discrete" || hasRole(meta.roles, "discrete") {
			p.cur.Next()
			return &Node{
				Type:  DiscreteHeadingNode,
				Level: t.Level,
				Title: ParseInline(p.expand(strings.TrimSpace(t.Text[t.ContentStart:]))),
				Span:  t.Span,
			}
		}
		return p.parseSection(t, stop)

	case ListItemToken:
		return p.parseList(nil)

	case DListItemToken:
		return p.parseDList(nil)

	case ContinuationToken:
		// A stray continuation outside any list degrades to a literal
		// one-character paragraph
		p.cur.Next()
		return &Node{
			Type:    ParagraphNode,
			Content: []*Inline{{Type: InlineText, Text: "+"}},
			Span:    t.Span,
		}

	case TableToken:
		return p.parseTable(t, meta)

	case FenceToken:
		return p.parseFenced(t, meta)

	case DirectiveToken:
		p.cur.Next()
		node := &Node{
			Type:   BlockMacroNode,
			Name:   t.DirName,
			Target: p.expand(t.DirTarget),
			Span:   t.Span,
		}
		positional, named := parseAttrList(t.DirBody)
		node.Positional = positional
		if len(named) > 0 {
			node.Attributes = named
		}
		if t.Directive != OtherDirective {
			p.diag(t, "unexpected preprocessor directive %s::", t.DirName)
		}
		return node

	case AttrSetToken:
		p.cur.Next()
		if !p.env.Set(t.AttrName, t.AttrValue) {
			p.diag(t, "attribute %q is locked and cannot be redefined", t.AttrName)
		}
		return nil

	case AttrUnsetToken:
		p.cur.Next()
		if !p.env.Unset(t.AttrName) {
			p.diag(t, "attribute %q is locked and cannot be unset", t.AttrName)
		}
		return nil

	case TextToken:
		return p.parseTextBlock(t, meta)

	default:
		// Unknown or error token, skip it and keep moving
		p.cur.Next()
		p.diag(t, "skipping unexpected %s token", t.Type)
		return nil
	}
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// parseSection parses a section and, recursively, its body: everything
// up to the next heading of the same or a shallower level, which is left
// unconsumed for the caller.
func (p *Parser) parseSection(t *Token, stop stopFunc) *Node {
	p.cur.Next()

	node := &Node{
		Type:  SectionNode,
		Level: t.Level,
		Title: ParseInline(p.expand(strings.TrimSpace(t.Text[t.ContentStart:]))),
		Span:  t.Span,
	}

	p.parseBlocks(node, func(tok *Token) bool {
		if stop(tok) {
			return true
		}
		return tok.Type == HeadingToken && tok.Level <= t.Level
	})

	if last := node.LastChild; last != nil {
		node.Span.End = last.Span.End
	}
	return node
}

// parseTextBlock parses a paragraph-shaped block: consecutive text lines
// up to the first non-text token. The metadata's primary style may turn
// it into a literal, verse or listing leaf instead of a paragraph.
func (p *Parser) parseTextBlock(t *Token, meta *blockMeta) *Node {
	var lines, rawLines []string
	span := t.Span
	for tok := p.cur.Peek(); tok != nil && tok.Type == TextToken; tok = p.cur.Peek() {
		p.cur.Next()
		lines = append(lines, strings.TrimSpace(tok.Text))
		rawLines = append(rawLines, tok.Text)
		span.End = tok.Span.End
	}
	raw := strings.Join(lines, "\n")

	// Verbatim styles keep the line text untrimmed, the leading
	// whitespace is part of their content.
	verbatim := strings.Join(rawLines, "\n")
	switch meta.style {
	case "literal":
		return &Node{Type: LiteralNode, Raw: verbatim, Style: "literal", Span: span}
	case "verse":
		return &Node{Type: VerseNode, Raw: verbatim, Style: "verse", Span: span}
	case "listing", "source":
		return &Node{Type: ListingNode, Raw: verbatim, Style: meta.style, Span: span}
	case "stem", "latexmath", "asciimath":
		return &Node{Type: MathBlockNode, Raw: verbatim, MathKind: meta.style, Span: span}
	}

	return &Node{
		Type:    ParagraphNode,
		Content: ParseInline(p.expand(raw)),
		Raw:     raw,
		Span:    span,
	}
}

// wrapAdmonition applies the two orthogonal admonition paths: a
// style-declared admonition wraps the produced node; independently, a
// paragraph opening with 'LABEL: ' is rewritten into an admonition. The
// shorthand only fires when no style-based kind was detected.
func (p *Parser) wrapAdmonition(node *Node, meta *blockMeta) *Node {
	if kind := admonitionKind(meta.style); kind != "" {
		if node.Type == AdmonitionNode {
			return node
		}
		wrap := &Node{Type: AdmonitionNode, Style: kind, Span: node.Span}
		wrap.AppendChild(node)
		return wrap
	}

	if node.Type != ParagraphNode {
		return node
	}
	for _, label := range admonitionLabels {
		prefix := label + ": "
		if strings.HasPrefix(node.Raw, prefix) {
			rest := node.Raw[len(prefix):]
			para := &Node{
				Type:    ParagraphNode,
				Content: ParseInline(p.expand(rest)),
				Raw:     rest,
				Span:    node.Span,
			}
			wrap := &Node{Type: AdmonitionNode, Style: label, Span: node.Span}
			wrap.AppendChild(para)
			return wrap
		}
	}
	return node
}

// verbatimFences are the fence kinds whose interior stays raw text.
func verbatimFence(kind FenceKind) bool {
	return kind == ListingFence || kind == LiteralFence || kind == PassFence
}

// containerTypes maps container fence kinds to their node type.
var containerTypes = map[FenceKind]NodeType{
	ExampleFence: ExampleNode,
	SidebarFence: SidebarNode,
	QuoteFence:   QuoteNode,
	OpenFence:    OpenNode,
}

// parseFenced parses any delimited block: leaf verbatim blocks keep
// their interior raw; containers recurse. The closing fence must match
// the opening kind and exact length; an unterminated block runs to the
// end of input.
func (p *Parser) parseFenced(t *Token, meta *blockMeta) *Node {
	mathKind := ""
	switch meta.style {
	case "stem", "latexmath", "asciimath":
		mathKind = meta.style
	}

	if verbatimFence(t.Fence) || (t.Fence == QuoteFence && meta.style == "verse") {
		node := p.parseVerbatim(t)
		switch {
		case mathKind != "":
			node.Type = MathBlockNode
			node.MathKind = mathKind
		case t.Fence == QuoteFence:
			node.Type = VerseNode
		case t.Fence == LiteralFence:
			node.Type = LiteralNode
		case t.Fence == PassFence:
			node.Type = ListingNode
			node.Style = "pass"
		default:
			node.Type = ListingNode
			if meta.style == "source" || meta.attrs["source"] == "true" {
				node.Style = "source"
			}
		}
		return node
	}

	nodeType := containerTypes[t.Fence]
	if kind := admonitionKind(meta.style); kind != "" && t.Fence == ExampleFence {
		nodeType = AdmonitionNode
	}

	node := &Node{
		Type:      nodeType,
		Delimiter: strings.TrimSpace(t.Text),
		Span:      t.Span,
	}
	if node.Type == AdmonitionNode {
		node.Style = admonitionKind(meta.style)
	}

	p.cur.Next()
	p.parseBlocks(node, func(tok *Token) bool {
		return tok.Type == FenceToken && tok.Fence == t.Fence && tok.FenceLen == t.FenceLen
	})

	// Metadata stranded in front of the closing delimiter has no block
	// inside the container to attach to.
	p.pending = nil

	if closing := p.cur.Peek(); closing != nil && closing.Type == FenceToken &&
		closing.Fence == t.Fence && closing.FenceLen == t.FenceLen {
		p.cur.Next()
		node.Span.End = closing.Span.End
	} else if last := node.LastChild; last != nil {
		// Unterminated container: tolerate and close at the last child
		node.Span.End = last.Span.End
	}

	if node.Type == QuoteNode {
		p.parseQuoteAttribution(node)
	}
	return node
}

// parseQuoteAttribution folds an immediately following '-- Attribution'
// line, and an optional citation-title line directly after it, into the
// quote node instead of letting them become sibling blocks.
func (p *Parser) parseQuoteAttribution(node *Node) {
	t := p.cur.Peek()
	if t == nil || t.Type != TextToken {
		return
	}
	trimmed := strings.TrimSpace(t.Text)
	if !strings.HasPrefix(trimmed, "-- ") {
		return
	}
	p.cur.Next()
	node.Attribution = strings.TrimSpace(trimmed[3:])
	node.Span.End = t.Span.End

	if cite := p.cur.Peek(); cite != nil && cite.Type == TextToken {
		p.cur.Next()
		node.CiteTitle = strings.TrimSpace(cite.Text)
		node.Span.End = cite.Span.End
	}
}

// parseVerbatim consumes a leaf verbatim block: the opening fence, the
// raw interior and the matching closing fence.
func (p *Parser) parseVerbatim(t *Token) *Node {
	p.cur.Next()

	node := &Node{
		Delimiter: strings.TrimSpace(t.Text),
		Span:      t.Span,
	}

	var lines []string
	for {
		tok := p.cur.Peek()
		if tok == nil {
			break
		}
		if tok.Type == FenceToken && tok.Fence == t.Fence && tok.FenceLen == t.FenceLen {
			p.cur.Next()
			node.Span.End = tok.Span.End
			break
		}
		p.cur.Next()
		lines = append(lines, tok.Text)
		node.Span.End = tok.Span.End
	}
	node.Raw = strings.Join(lines, "\n")
	return node
}

// parseTable collects the raw interior of a table up to the matching
// boundary and hands it to the table cell parser.
func (p *Parser) parseTable(t *Token, meta *blockMeta) *Node {
	p.cur.Next()

	node := &Node{
		Type:      TableNode,
		Delimiter: strings.TrimSpace(t.Text),
		Span:      t.Span,
	}

	var rawLines []string
	for {
		tok := p.cur.Peek()
		if tok == nil {
			break
		}
		// Any boundary closes the table; the scanner leaves table mode
		// on any boundary line as well, and the two must agree.
		if tok.Type == TableToken {
			p.cur.Next()
			node.Span.End = tok.Span.End
			break
		}
		p.cur.Next()
		rawLines = append(rawLines, tok.Text)
		node.Span.End = tok.Span.End
	}

	node.Table = ParseTable(t.Style, rawLines, meta.attrs, meta.options)
	node.Raw = strings.Join(rawLines, "\n")
	return node
}
