package adoc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func text(s string) *Inline { return &Inline{Type: InlineText, Text: s} }

func span(kind InlineType, children ...*Inline) *Inline {
	return &Inline{Type: kind, Children: children}
}

func TestParseInlineSpans(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []*Inline
	}{
		{"plain", "hello world", []*Inline{text("hello world")}},
		{"strong", "*bold*", []*Inline{span(InlineStrong, text("bold"))}},
		{"emphasis", "_soft_", []*Inline{span(InlineEmphasis, text("soft"))}},
		{"mono", "`code`", []*Inline{span(InlineMono, text("code"))}},
		{"mark", "#note#", []*Inline{span(InlineMark, text("note"))}},
		{"superscript", "x^2^", []*Inline{text("x"), span(InlineSuper, text("2"))}},
		{"subscript", "H~2~O", []*Inline{text("H"), span(InlineSub, text("2")), text("O")}},
		{
			"mixed",
			"a *b* c",
			[]*Inline{text("a "), span(InlineStrong, text("b")), text(" c")},
		},
		{
			"nested",
			"*a _b_ c*",
			[]*Inline{span(InlineStrong, text("a "), span(InlineEmphasis, text("b")), text(" c"))},
		},
		{
			"constrained star inside word",
			"a*b*c",
			[]*Inline{text("a*b*c")},
		},
		{
			"constrained underscore inside word",
			"snake_case_name",
			[]*Inline{text("snake_case_name")},
		},
		{
			"escaped delimiter",
			`\*literal*`,
			[]*Inline{text("*literal*")},
		},
		{
			"unclosed delimiter",
			"*dangling",
			[]*Inline{text("*dangling")},
		},
		{
			"empty span is no span",
			"**",
			[]*Inline{text("**")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseInline(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseInline(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseInlineMacros(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []*Inline
	}{
		{
			"link with label",
			"link:https://example.com[the site]",
			[]*Inline{{Type: InlineLink, Target: "https://example.com", Children: []*Inline{text("the site")}}},
		},
		{
			"link without label",
			"link:https://example.com[]",
			[]*Inline{{Type: InlineLink, Target: "https://example.com", Children: []*Inline{text("https://example.com")}}},
		},
		{
			"autolink",
			"visit https://example.com today",
			[]*Inline{
				text("visit "),
				{Type: InlineLink, Target: "https://example.com", Children: []*Inline{text("https://example.com")}},
				text(" today"),
			},
		},
		{
			"pass macro",
			"pass:[<b>raw</b>]",
			[]*Inline{{Type: InlinePass, Text: "<b>raw</b>"}},
		},
		{
			"stem macro",
			"stem:[a+b]",
			[]*Inline{{Type: InlineMath, MathKind: "stem", Text: "a+b"}},
		},
		{
			"footnote",
			"footnote:n1[says *hi*]",
			[]*Inline{{
				Type: InlineFootnote, Ref: "n1",
				Children: []*Inline{text("says "), span(InlineStrong, text("hi"))},
			}},
		},
		{
			"generic macro",
			"kbd:[Ctrl+C]",
			[]*Inline{{Type: InlineMacro, Name: "kbd", Text: "Ctrl+C"}},
		},
		{
			"colon without bracket is text",
			"Note: this stays text",
			[]*Inline{text("Note: this stays text")},
		},
		{
			"visible index term",
			"((indexing))",
			[]*Inline{{Type: InlineIndexTerm, Visible: true, Terms: []string{"indexing"}}},
		},
		{
			"invisible index term",
			"(((alpha, beta)))",
			[]*Inline{{Type: InlineIndexTerm, Terms: []string{"alpha", "beta"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseInline(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseInline(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseInlineMath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []*Inline
	}{
		{
			"inline dollar",
			"equals $x+y$ here",
			[]*Inline{text("equals "), {Type: InlineMath, MathKind: "dollar", Text: "x+y"}, text(" here")},
		},
		{
			"display dollar",
			"$$E=mc^2$$",
			[]*Inline{{Type: InlineMath, MathKind: "dollar", Text: "E=mc^2", Display: true}},
		},
		{
			"escaped dollar inside",
			`$a\$b$`,
			[]*Inline{{Type: InlineMath, MathKind: "dollar", Text: "a$b"}},
		},
		{
			"unterminated dollar",
			"cost is $5",
			[]*Inline{text("cost is $5")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseInline(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseInline(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseInlineXref(t *testing.T) {
	got := ParseInline("see <<intro>> and <<sec,the Section>>")
	want := []*Inline{
		text("see "),
		{Type: InlineXref, Target: "intro"},
		text(" and "),
		{Type: InlineXref, Target: "sec", Children: []*Inline{text("the Section")}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseXrefCoord(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   *XrefCoord
	}{
		{"plain id", "intro", nil},
		{
			"full form",
			"v2@comp:mod:page.adoc#frag",
			&XrefCoord{Version: "v2", Component: "comp", Module: "mod", Resource: "page.adoc", Fragment: "frag"},
		},
		{
			"family only",
			"image$diagram.svg",
			&XrefCoord{Family: "image", Resource: "diagram.svg"},
		},
		{
			"component without module",
			"docs:index.adoc",
			&XrefCoord{Component: "docs", Resource: "index.adoc"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseXrefCoord(tt.target)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseXrefCoord(%q) mismatch (-want +got):\n%s", tt.target, diff)
			}
		})
	}
}

func TestPlainText(t *testing.T) {
	nodes := ParseInline("a *b* link:u[label] end")
	if got := PlainText(nodes); got != "a b label end" {
		t.Errorf("PlainText = %q", got)
	}
}
