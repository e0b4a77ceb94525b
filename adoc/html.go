package adoc

import (
	"bytes"
	"html"
	"strings"

	hlhtml "github.com/alecthomas/chroma/v2/formatters/html"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/hesusruiz/vcutils/yaml"
)

// HTMLRenderer converts a parsed document to an HTML fragment. The
// renderer only reads the tree, so one document can be rendered
// concurrently by several renderers.
type HTMLRenderer struct {
	// Config provides rendering options, in particular 'adoc.codeStyle'
	// for the highlight style of listing blocks.
	Config *yaml.YAML
}

func NewHTMLRenderer(config *yaml.YAML) *HTMLRenderer {
	if config == nil {
		config, _ = yaml.ParseYaml("")
	}
	return &HTMLRenderer{Config: config}
}

// RenderHTML renders the whole document, header included.
func (r *HTMLRenderer) RenderHTML(doc *Document) ([]byte, error) {
	br := &ByteRenderer{}
	if doc.Header != nil {
		br.Render("<h1>")
		r.renderInlines(br, doc.Header.Title)
		br.Renderln("</h1>")
	}
	for _, block := range doc.Blocks() {
		if err := r.renderBlock(br, block); err != nil {
			return nil, err
		}
	}
	return br.CloneBytes(), nil
}

func attrId(n *Node) string {
	if n.Id == "" {
		return ""
	}
	return ` id="` + html.EscapeString(n.Id) + `"`
}

func attrClass(n *Node, extra ...string) string {
	classes := append([]string{}, extra...)
	classes = append(classes, n.Roles...)
	if len(classes) == 0 {
		return ""
	}
	return ` class="` + html.EscapeString(strings.Join(classes, " ")) + `"`
}

func (r *HTMLRenderer) renderTitle(br *ByteRenderer, n *Node) {
	if n.Title == nil {
		return
	}
	br.Render(`<div class="title">`)
	r.renderInlines(br, n.Title)
	br.Renderln("</div>")
}

func (r *HTMLRenderer) renderChildren(br *ByteRenderer, n *Node) error {
	for _, child := range n.Children() {
		if err := r.renderBlock(br, child); err != nil {
			return err
		}
	}
	return nil
}

func (r *HTMLRenderer) renderBlock(br *ByteRenderer, n *Node) error {
	switch n.Type {
	case SectionNode:
		level := n.Level + 1
		if level > 6 {
			level = 6
		}
		br.Render("<h", level, attrId(n), ">")
		r.renderInlines(br, n.Title)
		br.Renderln("</h", level, ">")
		return r.renderChildren(br, n)

	case DiscreteHeadingNode:
		level := n.Level + 1
		if level > 6 {
			level = 6
		}
		br.Render("<h", level, attrId(n), ` class="discrete">`)
		r.renderInlines(br, n.Title)
		br.Renderln("</h", level, ">")

	case ParagraphNode:
		r.renderTitle(br, n)
		br.Render("<p", attrId(n), attrClass(n), ">")
		r.renderInlines(br, n.Content)
		br.Renderln("</p>")

	case AdmonitionNode:
		label := n.Style
		br.Renderln(`<div`, attrId(n), attrClass(n, "admonition", strings.ToLower(label)), `>`)
		br.Renderln(`<div class="admonition-label">`, label, `</div>`)
		if err := r.renderChildren(br, n); err != nil {
			return err
		}
		br.Renderln("</div>")

	case ListingNode:
		return r.renderListing(br, n)

	case LiteralNode:
		r.renderTitle(br, n)
		br.Render("<pre", attrId(n), attrClass(n, "literal"), ">")
		br.Render(html.EscapeString(n.Raw))
		br.Renderln("</pre>")

	case VerseNode:
		r.renderTitle(br, n)
		br.Render("<pre", attrId(n), attrClass(n, "verse"), ">")
		br.Render(html.EscapeString(n.Raw))
		br.Renderln("</pre>")

	case MathBlockNode:
		// The expression is left untouched for a client-side renderer
		br.Render(`<div class="math" data-math-kind="`, n.MathKind, `">`)
		br.Render(html.EscapeString(n.Raw))
		br.Renderln("</div>")

	case QuoteNode:
		r.renderTitle(br, n)
		br.Renderln("<blockquote", attrId(n), attrClass(n), ">")
		if err := r.renderChildren(br, n); err != nil {
			return err
		}
		if n.Attribution != "" {
			br.Render("<footer>", html.EscapeString(n.Attribution))
			if n.CiteTitle != "" {
				br.Render(", <cite>", html.EscapeString(n.CiteTitle), "</cite>")
			}
			br.Renderln("</footer>")
		}
		br.Renderln("</blockquote>")

	case ExampleNode, SidebarNode, OpenNode:
		class := "open"
		switch n.Type {
		case ExampleNode:
			class = "example"
		case SidebarNode:
			class = "sidebar"
		}
		r.renderTitle(br, n)
		br.Renderln("<div", attrId(n), attrClass(n, class), ">")
		if err := r.renderChildren(br, n); err != nil {
			return err
		}
		br.Renderln("</div>")

	case ListNode:
		return r.renderList(br, n)

	case DListNode:
		return r.renderDList(br, n)

	case TableNode:
		return r.renderTable(br, n)

	case BlockMacroNode:
		// Unknown block macros degrade to a marker the stylesheet can
		// hide or surface
		br.Renderln(`<div class="block-macro" data-macro="`,
			html.EscapeString(n.Name), `" data-target="`,
			html.EscapeString(n.Target), `"></div>`)
	}
	return nil
}

// listingLanguage extracts the language name from a '[source,lang]'
// style declaration or a 'language' attribute.
func listingLanguage(n *Node) string {
	if lang, ok := n.Attributes["language"]; ok {
		return lang
	}
	if len(n.Positional) > 1 && n.Positional[0] == "source" {
		return n.Positional[1]
	}
	return ""
}

func (r *HTMLRenderer) renderListing(br *ByteRenderer, n *Node) error {
	r.renderTitle(br, n)

	if n.Style == "pass" {
		// Passthrough content goes out verbatim
		br.Renderln(n.Raw)
		return nil
	}

	content := n.Raw

	// Determine lexer.
	l := lexers.Get(listingLanguage(n))
	if l == nil {
		l = lexers.Analyse(content)
	}
	if l == nil {
		l = lexers.Fallback
	}
	l = chroma.Coalesce(l)

	// Determine style from the config data
	styleName := r.Config.String("adoc.codeStyle", "github")
	s := styles.Get(styleName)

	f := hlhtml.New(hlhtml.Standalone(false), hlhtml.PreventSurroundingPre(true))

	it, err := l.Tokenise(nil, content)
	if err != nil {
		return err
	}

	br.Renderln(`<div`, attrId(n), attrClass(n, "listing", "codecolor"), `>`)
	br.Renderln("<pre class='nohighlight precolor'>")
	rb := &bytes.Buffer{}
	if err := f.Format(rb, s, it); err != nil {
		return err
	}
	br.Render(rb.Bytes())
	br.Renderln("</pre>")
	br.Renderln("</div>")
	return nil
}

func (r *HTMLRenderer) renderList(br *ByteRenderer, n *Node) error {
	tag := "ul"
	if n.ListKind == OrderedList || n.ListKind == CalloutList {
		tag = "ol"
	}
	br.Renderln("<", tag, attrId(n), attrClass(n), ">")
	for _, item := range n.Children() {
		br.Render("<li>")
		switch item.Checkbox {
		case CheckboxUnchecked:
			br.Render(`<input type="checkbox" disabled> `)
		case CheckboxChecked:
			br.Render(`<input type="checkbox" checked disabled> `)
		}
		r.renderInlines(br, item.Content)
		if err := r.renderChildren(br, item); err != nil {
			return err
		}
		br.Renderln("</li>")
	}
	br.Renderln("</", tag, ">")
	return nil
}

func (r *HTMLRenderer) renderDList(br *ByteRenderer, n *Node) error {
	br.Renderln("<dl", attrId(n), attrClass(n), ">")
	for _, item := range n.Children() {
		for _, term := range item.Terms {
			br.Render("<dt>")
			r.renderInlines(br, term)
			br.Renderln("</dt>")
		}
		br.Render("<dd>")
		if item.Content != nil {
			r.renderInlines(br, item.Content)
		}
		if err := r.renderChildren(br, item); err != nil {
			return err
		}
		br.Renderln("</dd>")
	}
	br.Renderln("</dl>")
	return nil
}

var alignClasses = map[Alignment]string{
	AlignLeft:   "halign-left",
	AlignCenter: "halign-center",
	AlignRight:  "halign-right",
}

func (r *HTMLRenderer) renderTable(br *ByteRenderer, n *Node) error {
	r.renderTitle(br, n)
	br.Renderln("<table", attrId(n), attrClass(n), ">")

	data := n.Table
	for i, row := range data.Rows {
		header := i < data.HeaderRows
		cellTag := "td"
		if header {
			br.Renderln("<thead>")
			cellTag = "th"
		}
		br.Renderln("<tr>")
		for col, cell := range row {
			tag := cellTag
			if cell.Style == HeaderCellStyle {
				tag = "th"
			}
			br.Render("<", tag)
			if cell.ColSpan > 1 {
				br.Render(` colspan="`, cell.ColSpan, `"`)
			}
			if cell.RowSpan > 1 {
				br.Render(` rowspan="`, cell.RowSpan, `"`)
			}
			align := cell.HAlign
			if align == AlignNone && col < len(data.ColAligns) {
				align = data.ColAligns[col]
			}
			if class, ok := alignClasses[align]; ok {
				br.Render(` class="`, class, `"`)
			}
			br.Render(">")
			r.renderInlines(br, ParseInline(cell.Text))
			br.Renderln("</", tag, ">")
		}
		br.Renderln("</tr>")
		if header {
			br.Renderln("</thead>")
		}
	}
	br.Renderln("</table>")
	return nil
}

func (r *HTMLRenderer) renderInlines(br *ByteRenderer, nodes []*Inline) {
	for _, n := range nodes {
		r.renderInline(br, n)
	}
}

var inlineTags = map[InlineType]string{
	InlineStrong:   "strong",
	InlineEmphasis: "em",
	InlineMono:     "code",
	InlineMark:     "mark",
	InlineSuper:    "sup",
	InlineSub:      "sub",
}

func (r *HTMLRenderer) renderInline(br *ByteRenderer, n *Inline) {
	switch n.Type {
	case InlineText:
		br.Render(html.EscapeString(n.Text))

	case InlineStrong, InlineEmphasis, InlineMono, InlineMark, InlineSuper, InlineSub:
		tag := inlineTags[n.Type]
		br.Render("<", tag, ">")
		r.renderInlines(br, n.Children)
		br.Render("</", tag, ">")

	case InlineLink:
		br.Render(`<a href="`, html.EscapeString(n.Target), `">`)
		r.renderInlines(br, n.Children)
		br.Render("</a>")

	case InlineXref:
		target := n.Target
		if n.Coord != nil && n.Coord.Fragment != "" {
			target = n.Coord.Fragment
		}
		br.Render(`<a href="#`, html.EscapeString(target), `">`)
		r.renderInlines(br, n.Children)
		br.Render("</a>")

	case InlinePass:
		br.Render(n.Text)

	case InlineMath:
		br.Render(`<span class="math" data-math-kind="`, n.MathKind, `">`,
			html.EscapeString(n.Text), "</span>")

	case InlineFootnote:
		br.Render(`<sup class="footnote">`)
		if n.Ref != "" {
			br.Render("[", html.EscapeString(n.Ref), "]")
		}
		r.renderInlines(br, n.Children)
		br.Render("</sup>")

	case InlineIndexTerm:
		if n.Visible && len(n.Terms) > 0 {
			br.Render(html.EscapeString(n.Terms[0]))
		}

	case InlineMacro:
		br.Render(`<span class="macro" data-macro="`, html.EscapeString(n.Name), `">`,
			html.EscapeString(n.Text), "</span>")
	}
}
