package adoc

import (
	"testing"
)

func TestScanLineKinds(t *testing.T) {
	tests := []struct {
		name string
		line string
		want TokenType
	}{
		{"blank", "", BlankToken},
		{"spaces only", "   ", BlankToken},
		{"plain text", "just a sentence", TextToken},
		{"continuation", "+", ContinuationToken},
		{"indented continuation", "  +  ", ContinuationToken},
		{"heading", "== Title", HeadingToken},
		{"deep heading", "====== Six", HeadingToken},
		{"too deep heading", "======= Seven", TextToken},
		{"heading without text", "== ", TextToken},
		{"no space after equals", "==Title", TextToken},
		{"unordered item", "* item", ListItemToken},
		{"nested unordered", "*** item", ListItemToken},
		{"dash item", "- item", ListItemToken},
		{"dot ordered", ". item", ListItemToken},
		{"explicit enum", "3. item", ListItemToken},
		{"letter enum", "a. item", ListItemToken},
		{"callout", "<1> first", ListItemToken},
		{"star without space", "*bold start", TextToken},
		{"dlist", "term:: description", DListItemToken},
		{"dlist term only", "term::", DListItemToken},
		{"dlist qanda", "question;; answer", DListItemToken},
		{"listing fence", "----", FenceToken},
		{"long fence", "--------", FenceToken},
		{"short fence", "---", TextToken},
		{"open fence", "--", FenceToken},
		{"example fence", "====", FenceToken},
		{"sidebar fence", "****", FenceToken},
		{"quote fence", "____", FenceToken},
		{"pass fence", "++++", FenceToken},
		{"literal fence", "....", FenceToken},
		{"block meta", "[source,go]", BlockMetaToken},
		{"anchor is not meta", "[[my-id]]", TextToken},
		{"attr set", ":name: value", AttrSetToken},
		{"attr unset", ":name!:", AttrUnsetToken},
		{"include directive", "include::file.adoc[]", DirectiveToken},
		{"block macro", "image::logo.png[Logo]", DirectiveToken},
		{"table boundary", "|===", TableToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Scanner{}
			got := s.ScanLine(tt.line, 1, nil)
			if got.Type != tt.want {
				t.Errorf("ScanLine(%q).Type = %s, want %s", tt.line, got.Type, tt.want)
			}
		})
	}
}

func TestScanHeadingPayload(t *testing.T) {
	s := &Scanner{}
	got := s.ScanLine("=== My Section", 1, nil)
	if got.Level != 2 {
		t.Errorf("Level = %d, want 2", got.Level)
	}
	if c := got.Text[got.ContentStart:]; c != "My Section" {
		t.Errorf("content = %q, want %q", c, "My Section")
	}
}

func TestScanListItemPayload(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		kind    ListKind
		marker  string
		depth   int
		enum    byte
		box     Checkbox
		content string
	}{
		{"simple", "* one", UnorderedList, "*", 1, 0, NoCheckbox, "one"},
		{"depth two", "** two", UnorderedList, "**", 2, 0, NoCheckbox, "two"},
		{"dash", "- dash", UnorderedList, "-", 1, 0, NoCheckbox, "dash"},
		{"dot", ".. nested", OrderedList, "..", 2, 0, NoCheckbox, "nested"},
		{"numbered", "12. twelve", OrderedList, "12.", 1, '1', NoCheckbox, "twelve"},
		{"lettered", "b. second", OrderedList, "b.", 1, 'a', NoCheckbox, "second"},
		{"multi group", "1.2. sub", OrderedList, "1.2.", 2, '1', NoCheckbox, "sub"},
		{"callout", "<3> third", CalloutList, "<3>", 1, 0, NoCheckbox, "third"},
		{"unchecked", "* [ ] todo", UnorderedList, "*", 1, 0, CheckboxUnchecked, "todo"},
		{"checked", "* [x] done", UnorderedList, "*", 1, 0, CheckboxChecked, "done"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Scanner{}
			got := s.ScanLine(tt.line, 1, nil)
			if got.Type != ListItemToken {
				t.Fatalf("Type = %s, want ListItem", got.Type)
			}
			if got.List != tt.kind || got.Marker != tt.marker || got.MarkerDepth != tt.depth ||
				got.EnumStyle != tt.enum || got.Checkbox != tt.box {
				t.Errorf("payload = (%s, %q, %d, %q, %v)", got.List, got.Marker, got.MarkerDepth, got.EnumStyle, got.Checkbox)
			}
			if c := got.Text[got.ContentStart:]; c != tt.content {
				t.Errorf("content = %q, want %q", c, tt.content)
			}
		})
	}
}

func TestScanDListPayload(t *testing.T) {
	s := &Scanner{}

	got := s.ScanLine("CPU:: the processor", 1, nil)
	if got.Term != "CPU" || got.Separator != "::" {
		t.Errorf("term/sep = %q/%q", got.Term, got.Separator)
	}
	if got.DescStart < 0 || got.Text[got.DescStart:] != "the processor" {
		t.Errorf("desc = %q", got.Text[got.DescStart:])
	}

	got = s.ScanLine("term::", 1, nil)
	if got.Type != DListItemToken || got.DescStart != -1 {
		t.Errorf("term-only line: type=%s desc=%d", got.Type, got.DescStart)
	}

	got = s.ScanLine("deep:::: level", 1, nil)
	if got.Separator != "::::" {
		t.Errorf("separator = %q, want ::::", got.Separator)
	}
}

func TestScanTableInteriorOpaque(t *testing.T) {
	s := &Scanner{}
	lines := []string{"|===", "* not a list", "== not a heading", "|===", "* a list again"}
	kinds := []TokenType{TableToken, TextToken, TextToken, TableToken, ListItemToken}
	for i, line := range lines {
		got := s.ScanLine(line, i+1, nil)
		if got.Type != kinds[i] {
			t.Errorf("line %d %q: type = %s, want %s", i+1, line, got.Type, kinds[i])
		}
	}
}

func TestScanBlockMetaShorthand(t *testing.T) {
	s := &Scanner{}
	got := s.ScanLine("[quote#memo.fancy%header,attribution=Someone]", 1, nil)
	if got.Type != BlockMetaToken {
		t.Fatalf("type = %s", got.Type)
	}
	m := got.Meta
	if m.ID != "memo" {
		t.Errorf("ID = %q", m.ID)
	}
	if len(m.Roles) != 1 || m.Roles[0] != "fancy" {
		t.Errorf("Roles = %v", m.Roles)
	}
	if len(m.Options) != 1 || m.Options[0] != "header" {
		t.Errorf("Options = %v", m.Options)
	}
}

func TestSpanColumnsAreUTF16(t *testing.T) {
	s := &Scanner{}

	// "e" + combining-free multibyte characters: 'é' is one code unit,
	// '𝄞' (U+1D11E) is a surrogate pair, so two.
	got := s.ScanLine("é𝄞x", 1, nil)
	if got.Span.End.Col != 4 {
		t.Errorf("End.Col = %d, want 4", got.Span.End.Col)
	}

	got = s.ScanLine("ascii", 1, nil)
	if got.Span.End.Col != 5 {
		t.Errorf("End.Col = %d, want 5", got.Span.End.Col)
	}
}
