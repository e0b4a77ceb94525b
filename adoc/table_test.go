package adoc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func cellTexts(rows [][]*TableCell) [][]string {
	var out [][]string
	for _, row := range rows {
		var texts []string
		for _, cell := range row {
			texts = append(texts, cell.Text)
		}
		out = append(out, texts)
	}
	return out
}

func TestParseTablePSV(t *testing.T) {
	data := ParseTable('|', []string{
		"|Name |Kind",
		"",
		"|alpha |one",
		"",
		"|beta |two",
	}, nil, nil)

	if data.Format != PSVFormat {
		t.Errorf("Format = %v", data.Format)
	}
	want := [][]string{
		{"Name", "Kind"},
		{"alpha", "one"},
		{"beta", "two"},
	}
	if diff := cmp.Diff(want, cellTexts(data.Rows)); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
	// The blank line after the first row implies one header row
	if data.HeaderRows != 1 {
		t.Errorf("HeaderRows = %d, want 1", data.HeaderRows)
	}
}

func TestParseTableEscapedSeparator(t *testing.T) {
	data := ParseTable('|', []string{`|A\|B |C`}, nil, nil)

	want := [][]string{{"A|B", "C"}}
	if diff := cmp.Diff(want, cellTexts(data.Rows)); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTableHeaderOption(t *testing.T) {
	rows := []string{"|a |b", "|c |d"}

	data := ParseTable('|', rows, nil, nil)
	if data.HeaderRows != 0 {
		t.Errorf("no option: HeaderRows = %d, want 0", data.HeaderRows)
	}

	data = ParseTable('|', rows, nil, []string{"header"})
	if data.HeaderRows != 1 {
		t.Errorf("option set: HeaderRows = %d, want 1", data.HeaderRows)
	}

	data = ParseTable('|', rows, map[string]string{"options": "header,footer"}, nil)
	if data.HeaderRows != 1 {
		t.Errorf("options attr: HeaderRows = %d, want 1", data.HeaderRows)
	}
}

func TestParseTableCellSpecifiers(t *testing.T) {
	data := ParseTable('|', []string{"2+|wide >|right .^|middle h|head"}, nil, nil)

	if len(data.Rows) != 1 || len(data.Rows[0]) != 4 {
		t.Fatalf("rows = %v", cellTexts(data.Rows))
	}
	row := data.Rows[0]

	if row[0].ColSpan != 2 || row[0].Text != "wide" {
		t.Errorf("cell 0 = %+v", row[0])
	}
	if row[1].HAlign != AlignRight || row[1].Text != "right" {
		t.Errorf("cell 1 = %+v", row[1])
	}
	if row[2].VAlign != AlignMiddle || row[2].Text != "middle" {
		t.Errorf("cell 2 = %+v", row[2])
	}
	if row[3].Style != HeaderCellStyle || row[3].Text != "head" {
		t.Errorf("cell 3 = %+v", row[3])
	}
}

func TestParseTableRowSpan(t *testing.T) {
	data := ParseTable('|', []string{".2+|tall |x"}, nil, nil)
	if data.Rows[0][0].RowSpan != 2 {
		t.Errorf("RowSpan = %d, want 2", data.Rows[0][0].RowSpan)
	}
	data = ParseTable('|', []string{"2.3+|block |x"}, nil, nil)
	cell := data.Rows[0][0]
	if cell.ColSpan != 2 || cell.RowSpan != 3 {
		t.Errorf("spans = %d/%d, want 2/3", cell.ColSpan, cell.RowSpan)
	}
}

func TestParseTableUnknownStyleLetter(t *testing.T) {
	data := ParseTable('|', []string{"z|cell"}, nil, nil)
	cell := data.Rows[0][0]
	if cell.Style != UnknownCellStyle || cell.StyleLetter != 'z' {
		t.Errorf("cell = %+v, want unknown style with letter z", cell)
	}
}

func TestParseTableCSV(t *testing.T) {
	data := ParseTable(',', []string{"a,b,c", "", "1,2,3"}, nil, nil)

	if data.Format != CSVFormat {
		t.Errorf("Format = %v", data.Format)
	}
	want := [][]string{{"a", "b", "c"}, {"1", "2", "3"}}
	if diff := cmp.Diff(want, cellTexts(data.Rows)); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTableFormatOverride(t *testing.T) {
	// A PSV boundary with format=csv parses the interior as CSV
	data := ParseTable('|', []string{"x,y"}, map[string]string{"format": "csv"}, nil)
	want := [][]string{{"x", "y"}}
	if diff := cmp.Diff(want, cellTexts(data.Rows)); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}

	// A custom separator applies to the resolved format
	data = ParseTable('|', []string{"|a;|b"}, map[string]string{"separator": ";|"}, nil)
	if got := cellTexts(data.Rows); len(got[0]) != 2 || got[0][0] != "|a" {
		t.Errorf("cells = %v", got)
	}
}

func TestParseTableMultilineRow(t *testing.T) {
	// Non-blank runs form one logical row; the separator may start a line
	data := ParseTable('|', []string{
		"|first",
		"|second",
	}, nil, nil)
	if len(data.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(data.Rows))
	}
	want := [][]string{{"first", "second"}}
	if diff := cmp.Diff(want, cellTexts(data.Rows)); diff != "" {
		t.Errorf("cells mismatch (-want +got):\n%s", diff)
	}
}

func TestParseColsSpec(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []Alignment
	}{
		{"letters", "l,c,r", []Alignment{AlignLeft, AlignCenter, AlignRight}},
		{"symbols", "<,^,>", []Alignment{AlignLeft, AlignCenter, AlignRight}},
		{"repeat", "3*c", []Alignment{AlignCenter, AlignCenter, AlignCenter}},
		{"mixed", "2*l,r", []Alignment{AlignLeft, AlignLeft, AlignRight}},
		{"plain count", "1,1", []Alignment{AlignNone, AlignNone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseColsSpec(tt.spec)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseColsSpec(%q) mismatch (-want +got):\n%s", tt.spec, diff)
			}
		})
	}
}

func TestParseTableTrailingBlankNoHeader(t *testing.T) {
	data := ParseTable('|', []string{
		"|only |row",
		"",
	}, nil, nil)

	if len(data.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(data.Rows))
	}
	if data.HeaderRows != 0 {
		t.Errorf("HeaderRows = %d, want 0; a trailing break is not internal", data.HeaderRows)
	}

	// With a row group after the break the header derivation still fires
	data = ParseTable('|', []string{
		"|head",
		"",
		"|body",
		"",
	}, nil, nil)
	if data.HeaderRows != 1 {
		t.Errorf("HeaderRows = %d, want 1", data.HeaderRows)
	}
}
