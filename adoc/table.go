package adoc

import (
	"regexp"
	"strconv"
	"strings"
)

// boundaryFormats maps a table boundary style character to the default
// cell format; an explicit 'format=' attribute overrides it.
var boundaryFormats = map[byte]TableFormat{
	'|': PSVFormat,
	',': CSVFormat,
	':': DSVFormat,
	';': DSVFormat,
	'!': PSVFormat,
}

// defaultSeparators per format, overridable with 'separator='.
var defaultSeparators = map[TableFormat]string{
	PSVFormat: "|",
	CSVFormat: ",",
	TSVFormat: "\t",
	DSVFormat: ":",
}

// resolveTableFormat derives the cell format and separator for a table
// from its boundary style character and metadata attributes.
func resolveTableFormat(style byte, attrs map[string]string) (TableFormat, string) {
	format, ok := boundaryFormats[style]
	if !ok {
		format = PSVFormat
	}
	switch strings.ToLower(attrs["format"]) {
	case "psv":
		format = PSVFormat
	case "csv":
		format = CSVFormat
	case "tsv":
		format = TSVFormat
	case "dsv":
		format = DSVFormat
	}

	sep := defaultSeparators[format]
	if s, ok := attrs["separator"]; ok && s != "" {
		sep = s
	}
	return format, sep
}

// groupRows folds the raw interior lines of a table into logical rows: a
// run of non-blank lines followed by zero or more blank lines forms one
// (possibly multi-line) row, its lines joined by newline. The second
// result is the number of row groups completed before the first internal
// blank-line break, which derives the implied header row count.
func groupRows(rawLines []string) (rows []string, beforeBreak int) {
	var current []string
	breakAt := -1

	flush := func() {
		if len(current) == 0 {
			return
		}
		rows = append(rows, strings.Join(current, "\n"))
		current = nil
	}

	for _, line := range rawLines {
		if strings.TrimSpace(line) == "" {
			flush()
			if breakAt < 0 && len(rows) > 0 {
				breakAt = len(rows)
			}
			continue
		}
		current = append(current, line)
	}
	flush()

	// Only an internal break derives a header: at least one row group
	// must follow it.
	if breakAt > 0 && len(rows) > breakAt {
		return rows, breakAt
	}
	return rows, 0
}

// ParseTable parses the collected raw interior lines of a table into its
// TableData, resolving format and separator from the boundary style and
// the block attributes.
func ParseTable(style byte, rawLines []string, attrs map[string]string, options []string) *TableData {
	format, sep := resolveTableFormat(style, attrs)

	data := &TableData{
		Format:    format,
		Separator: sep,
		RawRows:   rawLines,
	}

	rows, beforeBreak := groupRows(rawLines)
	for _, row := range rows {
		if format == PSVFormat {
			data.Rows = append(data.Rows, splitPSVRow(row, sep))
		} else {
			data.Rows = append(data.Rows, splitSimpleRow(row, sep))
		}
	}

	data.HeaderRows = beforeBreak
	if hasHeaderOption(attrs, options) && data.HeaderRows < 1 {
		data.HeaderRows = 1
	}

	if spec, ok := attrs["cols"]; ok {
		data.ColAligns = parseColsSpec(spec)
	}
	return data
}

// hasHeaderOption checks for 'header' in the metadata option set or in a
// comma-separated 'options=' attribute, case-insensitively.
func hasHeaderOption(attrs map[string]string, options []string) bool {
	for _, opt := range options {
		if strings.EqualFold(opt, "header") {
			return true
		}
	}
	for _, opt := range strings.Split(attrs["options"], ",") {
		if strings.EqualFold(strings.TrimSpace(opt), "header") {
			return true
		}
	}
	return false
}

// cellStyles maps a trailing specifier letter to the cell style.
var cellStyles = map[byte]CellStyle{
	'h': HeaderCellStyle,
	'a': AsciidocCellStyle,
	'l': LiteralCellStyle,
	'm': MonospaceCellStyle,
	'e': EmphasisCellStyle,
	's': StrongCellStyle,
	'p': PassCellStyle,
	'd': DataCellStyle,
}

// reCellSpec matches a full PSV cell specifier: optional column span
// 'N+', optional row span '.N+', optional horizontal alignment, optional
// '.vertical' alignment, optional trailing style letter.
var reCellSpec = regexp.MustCompile(`^(?:(\d+)(?:\.(\d+))?\+|\.(\d+)\+)?([<>^])?(?:\.([<>^]))?([a-z])?$`)

// splitPSVRow splits one logical row into cells. A backslash escapes the
// next character, including the separator and the backslash itself. An
// optional specifier immediately precedes each cell's separator.
func splitPSVRow(row string, sep string) []*TableCell {
	segments := splitEscaped(row, sep)

	// A specifier sits at the end of the segment preceding its separator
	specs := make([]string, len(segments))
	for i := 0; i < len(segments)-1; i++ {
		segments[i], specs[i+1] = takeCellSpec(segments[i])
	}

	var cells []*TableCell
	for i, segment := range segments {
		text := strings.TrimSpace(unescapeCell(segment))
		if i == 0 && text == "" {
			// A row normally starts with the separator; the leading
			// segment then only carries the first cell's specifier
			continue
		}
		cell := newTableCell(specs[i])
		cell.Text = text
		cells = append(cells, cell)
	}
	return cells
}

// takeCellSpec strips a trailing cell specifier off a segment. The
// candidate is the trailing run of non-space characters; it is only taken
// when it fully matches the specifier grammar.
func takeCellSpec(segment string) (rest, spec string) {
	idx := len(segment)
	for idx > 0 && segment[idx-1] != ' ' && segment[idx-1] != '\t' {
		idx--
	}
	candidate := segment[idx:]
	if candidate == "" {
		return segment, ""
	}
	if !reCellSpec.MatchString(candidate) {
		return segment, ""
	}
	return segment[:idx], candidate
}

// newTableCell builds a cell from its specifier.
func newTableCell(spec string) *TableCell {
	cell := &TableCell{ColSpan: 1, RowSpan: 1}
	if spec == "" {
		return cell
	}
	m := reCellSpec.FindStringSubmatch(spec)
	if m == nil {
		return cell
	}

	if m[1] != "" {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			cell.ColSpan = n
		}
	}
	if m[2] != "" {
		if n, err := strconv.Atoi(m[2]); err == nil && n > 0 {
			cell.RowSpan = n
		}
	}
	if m[3] != "" {
		if n, err := strconv.Atoi(m[3]); err == nil && n > 0 {
			cell.RowSpan = n
		}
	}
	if m[4] != "" {
		cell.HAlign = hAlignOf(m[4][0])
	}
	if m[5] != "" {
		cell.VAlign = vAlignOf(m[5][0])
	}
	if m[6] != "" {
		letter := m[6][0]
		style, ok := cellStyles[letter]
		if !ok {
			style = UnknownCellStyle
			cell.StyleLetter = letter
		}
		cell.Style = style
	}
	return cell
}

// splitEscaped splits s at unescaped occurrences of sep. Escapes are left
// in place for unescapeCell.
func splitEscaped(s string, sep string) []string {
	var parts []string
	start := 0
	i := 0
	for i < len(s) {
		if s[i] == '\\' && i+1 < len(s) {
			i += 2
			continue
		}
		if strings.HasPrefix(s[i:], sep) {
			parts = append(parts, s[start:i])
			i += len(sep)
			start = i
			continue
		}
		i++
	}
	parts = append(parts, s[start:])
	return parts
}

// unescapeCell removes the backslash of every escape pair.
func unescapeCell(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// splitSimpleRow is the CSV/TSV/DSV splitter: a naive unescaped split on
// the separator, with no quoting support.
func splitSimpleRow(row string, sep string) []*TableCell {
	var cells []*TableCell
	for _, part := range strings.Split(row, sep) {
		cells = append(cells, &TableCell{
			Text:    strings.TrimSpace(part),
			ColSpan: 1,
			RowSpan: 1,
		})
	}
	return cells
}

// parseColsSpec expands a 'cols=' spec of repeatable '(count*)?align'
// tokens into one alignment per column. 'l', 'c', 'r' and '<', '^', '>'
// both work as alignment letters.
func parseColsSpec(spec string) []Alignment {
	var aligns []Alignment
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		count := 1
		if pre, post, ok := strings.Cut(item, "*"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(pre)); err == nil && n > 0 {
				count = n
			}
			item = strings.TrimSpace(post)
		}

		align := AlignNone
		for i := 0; i < len(item); i++ {
			switch item[i] {
			case 'l', '<':
				align = AlignLeft
			case 'c', '^':
				align = AlignCenter
			case 'r', '>':
				align = AlignRight
			}
		}
		for i := 0; i < count; i++ {
			aligns = append(aligns, align)
		}
	}
	return aligns
}

func hAlignOf(c byte) Alignment {
	switch c {
	case '<':
		return AlignLeft
	case '^':
		return AlignCenter
	case '>':
		return AlignRight
	}
	return AlignNone
}

func vAlignOf(c byte) Alignment {
	switch c {
	case '<':
		return AlignTop
	case '^':
		return AlignMiddle
	case '>':
		return AlignBottom
	}
	return AlignNone
}
