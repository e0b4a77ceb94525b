package adoc

import "fmt"

// A Diag is a non-fatal problem found while preprocessing or parsing.
// The core never aborts on malformed input: it records a Diag and keeps
// producing a best-effort tree.
type Diag struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (d *Diag) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.File, d.Line, d.Col, d.Msg)
}

func diagf(file string, line, col int, format string, args ...any) *Diag {
	return &Diag{
		File: file,
		Line: line,
		Col:  col,
		Msg:  fmt.Sprintf(format, args...),
	}
}
