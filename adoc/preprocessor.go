package adoc

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultMaxIncludeDepth bounds nested includes; deeper nesting leaves
// the directive unexpanded and records a diagnostic.
const DefaultMaxIncludeDepth = 32

// PreprocessorOptions configure one preprocessing run.
type PreprocessorOptions struct {
	// FileName is the name of the top-level source, used in provenance
	// and diagnostics. It may be empty.
	FileName string

	// BaseDir is the directory relative include targets resolve against.
	BaseDir string

	// Resolvers are tried in order for every include target. First
	// success wins. An empty chain makes every include unresolvable,
	// which is non-fatal.
	Resolvers []Resolver

	// MaxIncludeDepth overrides DefaultMaxIncludeDepth when positive.
	MaxIncludeDepth int
}

// Preprocessed is the flattened output of the preprocessor: one entry in
// Lines per output line, with the provenance stack of each line in the
// corresponding entry of Provenance.
type Preprocessed struct {
	Lines      []string
	Provenance [][]FileLoc
	Diags      []*Diag
}

// Text returns the flattened text as a single blob.
func (pp *Preprocessed) Text() string {
	return strings.Join(pp.Lines, "\n")
}

// ppFrame is one entry of the preprocessor frame stack: an active file or
// a synthetic inline-conditional body. Frames are explicit data, not
// recursive calls, so the include depth stays inspectable and bounded
// independent of the host call stack.
type ppFrame struct {
	file     string
	dir      string
	lines    []string
	lineNums []int
	next     int

	// levelOffset is added to the leading '=' run of heading-shaped
	// lines emitted from this frame.
	levelOffset int

	// indent is prepended to emitted lines, except heading-shaped and
	// empty ones.
	indent string

	include   bool // counts towards the include depth limit
	synthetic bool // inline conditional body; provenance comes from the parent
}

type preprocessor struct {
	env    *AttrEnv
	opts   PreprocessorOptions
	frames []*ppFrame

	// conds is the stack of open conditional regions. A line is emitted
	// only while every entry is true.
	conds []bool

	out *Preprocessed
}

// Directive grammar: 'name::target[body]' starting at the first column.
var reDirective = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9_-]*)::([^\[\]\s]*)\[(.*)\]\s*$`)

// Attribute line grammar: ':name: value' or ':name!:'.
var reAttrLine = regexp.MustCompile(`^:([a-zA-Z0-9_][a-zA-Z0-9_-]*)(!?):(?: (.*))?$`)

// Tag marker comments inside included files: '// tag::name[]' and
// '// end::name[]'. The markers themselves are never emitted.
var reTagMarker = regexp.MustCompile(`^\s*//\s*(tag|end)::([a-zA-Z0-9_][a-zA-Z0-9_-]*)\[\]\s*$`)

// Preprocess expands includes and conditionals in src, applies attribute
// definition lines to env and returns the flattened text together with
// per-line provenance. All failures are non-fatal and recorded as
// diagnostics.
func Preprocess(src string, env *AttrEnv, opts PreprocessorOptions) *Preprocessed {
	if opts.MaxIncludeDepth <= 0 {
		opts.MaxIncludeDepth = DefaultMaxIncludeDepth
	}

	p := &preprocessor{
		env:  env,
		opts: opts,
		out:  &Preprocessed{},
	}

	root := &ppFrame{
		file:  opts.FileName,
		dir:   opts.BaseDir,
		lines: splitLines(src),
	}
	root.lineNums = countLines(len(root.lines))
	p.frames = []*ppFrame{root}

	// Process frames depth-first until all of them are drained
	for len(p.frames) > 0 {
		f := p.frames[len(p.frames)-1]
		if f.next >= len(f.lines) {
			p.frames = p.frames[:len(p.frames)-1]
			continue
		}
		line := f.lines[f.next]
		num := f.lineNums[f.next]
		f.next++

		p.processLine(f, line, num)
	}

	if len(p.conds) > 0 {
		p.diag(0, "unterminated conditional: missing endif::[]")
	}

	return p.out
}

func (p *preprocessor) active() bool {
	for _, on := range p.conds {
		if !on {
			return false
		}
	}
	return true
}

func (p *preprocessor) diag(line int, format string, args ...any) {
	p.out.Diags = append(p.out.Diags, diagf(p.currentFile(), line, 0, format, args...))
}

func (p *preprocessor) currentFile() string {
	for i := len(p.frames) - 1; i >= 0; i-- {
		if !p.frames[i].synthetic {
			return p.frames[i].file
		}
	}
	return p.opts.FileName
}

func (p *preprocessor) processLine(f *ppFrame, line string, num int) {

	// An escaped include marker is emitted literally, with the escape
	// stripped, and is never treated as a directive.
	if strings.HasPrefix(line, `\include::`) {
		if p.active() {
			p.emit(f, line[1:], num)
		}
		return
	}

	if m := reDirective.FindStringSubmatch(line); m != nil {
		name, target, body := m[1], m[2], m[3]
		switch name {
		case "include":
			if p.active() {
				p.processInclude(f, line, num, target, body)
			}
			return
		case "ifdef", "ifndef":
			p.processIfdef(name == "ifndef", target, body)
			return
		case "ifeval":
			p.processIfeval(num, body)
			return
		case "endif":
			if len(p.conds) == 0 {
				p.diag(num, "endif::[] without an open conditional")
				return
			}
			p.conds = p.conds[:len(p.conds)-1]
			return
		}
		// Any other macro-shaped line is ordinary content for the scanner
	}

	// Skip lines inside an inactive conditional region
	if !p.active() {
		return
	}

	// Attribute definition lines update the environment and are consumed
	if m := reAttrLine.FindStringSubmatch(line); m != nil {
		name, bang, value := m[1], m[2], m[3]
		if bang == "!" {
			if !p.env.Unset(name) {
				p.diag(num, "attribute %q is locked and cannot be unset", name)
			}
		} else {
			if !p.env.Set(name, strings.TrimSpace(value)) {
				p.diag(num, "attribute %q is locked and cannot be redefined", name)
			}
		}
		return
	}

	p.emit(f, line, num)
}

// processIfdef handles both ifdef and ifndef. The condition is true when
// at least one of the comma or plus separated names has a defined value,
// negated for ifndef.
func (p *preprocessor) processIfdef(negate bool, target string, body string) {
	names := strings.FieldsFunc(target, func(r rune) bool { return r == ',' || r == '+' })
	truth := false
	for _, name := range names {
		if p.env.IsSet(strings.TrimSpace(name)) {
			truth = true
			break
		}
	}
	if negate {
		truth = !truth
	}

	if body != "" {
		// Inline body form: gate the single body line by the combined
		// parent-and-condition truth and process it like any other line
		if p.active() && truth {
			p.pushSynthetic(body)
		}
		return
	}

	p.conds = append(p.conds, truth)
}

// ifeval operators, two-character ones first.
var ifevalOps = []string{"<=", ">=", "==", "!=", "<", ">"}

func (p *preprocessor) processIfeval(num int, body string) {
	truth, ok := p.evalComparison(body)
	if !ok {
		p.diag(num, "cannot evaluate ifeval expression %q", body)
		truth = false
	}
	p.conds = append(p.conds, truth)
}

func (p *preprocessor) evalComparison(expr string) (bool, bool) {
	for _, op := range ifevalOps {
		idx := strings.Index(expr, op)
		if idx < 0 {
			continue
		}

		left := p.evalOperand(expr[:idx])
		right := p.evalOperand(expr[idx+len(op):])

		// Numeric comparison when both sides parse as numbers, else lexical
		ln, lerr := strconv.ParseFloat(left, 64)
		rn, rerr := strconv.ParseFloat(right, 64)
		if lerr == nil && rerr == nil {
			return compareNumbers(ln, rn, op), true
		}
		return compareStrings(left, right, op), true
	}
	return false, false
}

func (p *preprocessor) evalOperand(s string) string {
	s = strings.TrimSpace(p.env.Expand(strings.TrimSpace(s)))
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return s
}

func compareNumbers(a, b float64, op string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

func compareStrings(a, b string, op string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

func (p *preprocessor) pushSynthetic(body string) {
	p.frames = append(p.frames, &ppFrame{
		lines:     []string{body},
		lineNums:  []int{0},
		synthetic: true,
	})
}

func (p *preprocessor) includeDepth() int {
	depth := 0
	for _, f := range p.frames {
		if f.include {
			depth++
		}
	}
	return depth
}

func (p *preprocessor) processInclude(f *ppFrame, line string, num int, target string, body string) {
	if p.includeDepth() >= p.opts.MaxIncludeDepth {
		p.diag(num, "include depth limit (%d) exceeded for %q", p.opts.MaxIncludeDepth, target)
		p.emit(f, line, num)
		return
	}

	target = strings.TrimSpace(p.env.Expand(target))

	var inc *Included
	for _, r := range p.opts.Resolvers {
		if got, ok := r.Resolve(target, f.dir); ok {
			inc = got
			break
		}
	}
	if inc == nil {
		p.diag(num, "cannot resolve include target %q", target)
		p.emit(f, line, num)
		return
	}

	lines := splitLines(string(inc.Content))
	nums := countLines(len(lines))

	_, named := parseAttrList(body)

	if spec, ok := named["lines"]; ok {
		lines, nums = filterLineRanges(lines, nums, spec)
	}
	if spec, ok := named["tags"]; ok {
		lines, nums = filterTags(lines, nums, spec)
	}

	child := &ppFrame{
		file:        inc.Path,
		dir:         inc.BaseDir,
		lines:       lines,
		lineNums:    nums,
		levelOffset: f.levelOffset,
		indent:      f.indent,
		include:     true,
	}

	if spec, ok := named["leveloffset"]; ok {
		if strings.HasPrefix(spec, "+") || strings.HasPrefix(spec, "-") {
			if n, err := strconv.Atoi(spec); err == nil {
				child.levelOffset = f.levelOffset + n
			}
		} else if n, err := strconv.Atoi(spec); err == nil {
			child.levelOffset = n
		}
	}

	if spec, ok := named["indent"]; ok {
		if n, err := strconv.Atoi(spec); err == nil && n >= 0 {
			child.lines = reindent(child.lines, n)
			child.indent = ""
		}
	}

	p.frames = append(p.frames, child)
}

// emit writes one output line, applying the frame's level offset to
// heading-shaped lines and its indent prefix to everything else.
func (p *preprocessor) emit(f *ppFrame, line string, num int) {
	if run := headingRun(line); run > 0 {
		if f.levelOffset != 0 {
			newRun := run + f.levelOffset
			if newRun < 1 {
				newRun = 1
			}
			line = strings.Repeat("=", newRun) + line[run:]
		}
	} else if line != "" && f.indent != "" {
		line = f.indent + line
	}

	p.out.Lines = append(p.out.Lines, line)
	p.out.Provenance = append(p.out.Provenance, p.provenance(num))
}

// provenance builds the include chain for the line being emitted,
// outermost file first. Synthetic frames carry no file of their own; the
// enclosing file's current line covers them.
func (p *preprocessor) provenance(num int) []FileLoc {
	stack := []FileLoc{}
	for i, f := range p.frames {
		if f.synthetic {
			continue
		}
		line := num
		if i < len(p.frames)-1 {
			// An outer frame is paused on the line it is expanding
			line = f.lineNums[f.next-1]
		}
		stack = append(stack, FileLoc{File: f.file, Line: line})
	}
	return stack
}

// headingRun returns the length of the leading '=' run when the line is
// section-heading-shaped (the run is immediately followed by a space),
// else 0.
func headingRun(line string) int {
	n := 0
	for n < len(line) && line[n] == '=' {
		n++
	}
	if n == 0 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}

// filterLineRanges keeps only lines whose 1-based number falls in one of
// the inclusive ranges of spec, like '1..4;6' or '10..-1'. Negative
// indices count from the end, -1 being the last line.
func filterLineRanges(lines []string, nums []int, spec string) ([]string, []int) {
	type span struct{ lo, hi int }
	var spans []span

	total := len(lines)
	norm := func(n int) int {
		if n < 0 {
			return total + n + 1
		}
		return n
	}

	for _, item := range strings.FieldsFunc(spec, func(r rune) bool { return r == ';' || r == ',' }) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(item, ".."); ok {
			a, errA := strconv.Atoi(strings.TrimSpace(lo))
			b, errB := strconv.Atoi(strings.TrimSpace(hi))
			if errA == nil && errB == nil {
				spans = append(spans, span{norm(a), norm(b)})
			}
			continue
		}
		if n, err := strconv.Atoi(item); err == nil {
			spans = append(spans, span{norm(n), norm(n)})
		}
	}

	var outLines []string
	var outNums []int
	for i := range lines {
		n := i + 1
		for _, s := range spans {
			if n >= s.lo && n <= s.hi {
				outLines = append(outLines, lines[i])
				outNums = append(outNums, nums[i])
				break
			}
		}
	}
	return outLines, outNums
}

// filterTags keeps lines according to tag regions toggled by
// '// tag::name[]' and '// end::name[]' marker comments. The markers are
// never emitted. A line is kept when its active tag set intersects a
// requested tag (and no excluded one); with only exclusions, everything
// outside the excluded regions is kept.
func filterTags(lines []string, nums []int, spec string) ([]string, []int) {
	include := map[string]bool{}
	exclude := map[string]bool{}
	for _, item := range strings.FieldsFunc(spec, func(r rune) bool { return r == ';' || r == ',' }) {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.HasPrefix(item, "!") {
			exclude[item[1:]] = true
		} else {
			include[item] = true
		}
	}

	active := map[string]bool{}
	var outLines []string
	var outNums []int

	for i, line := range lines {
		if m := reTagMarker.FindStringSubmatch(line); m != nil {
			if m[1] == "tag" {
				active[m[2]] = true
			} else {
				delete(active, m[2])
			}
			continue
		}

		keep := len(include) == 0
		for name := range active {
			if include[name] {
				keep = true
			}
			if exclude[name] {
				keep = false
				break
			}
		}
		if keep {
			outLines = append(outLines, line)
			outNums = append(outNums, nums[i])
		}
	}
	return outLines, outNums
}

// reindent strips the common leading-space run of the non-empty lines and
// prepends n spaces instead.
func reindent(lines []string, n int) []string {
	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lead := len(line) - len(strings.TrimLeft(line, " "))
		if common == -1 || lead < common {
			common = lead
		}
	}
	if common < 0 {
		common = 0
	}

	prefix := strings.Repeat(" ", n)
	out := make([]string, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			out[i] = ""
			continue
		}
		out[i] = prefix + line[common:]
	}
	return out
}

// splitLines splits text into lines, accepting both LF and CRLF endings.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func countLines(n int) []int {
	nums := make([]int, n)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}
