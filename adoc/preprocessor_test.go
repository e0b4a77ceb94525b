package adoc

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// preprocess is a test helper wiring a MapResolver over files.
func preprocess(t *testing.T, src string, seed map[string]string, files map[string]string) (*Preprocessed, *AttrEnv) {
	t.Helper()
	env := NewAttrEnv(seed, nil)
	pp := Preprocess(src, env, PreprocessorOptions{
		FileName:  "main.adoc",
		Resolvers: []Resolver{MapResolver(files)},
	})
	return pp, env
}

func TestIncludeExpansion(t *testing.T) {
	files := map[string]string{
		"part.adoc": "first\nsecond\n",
	}
	pp, _ := preprocess(t, "before\ninclude::part.adoc[]\nafter\n", nil, files)

	want := []string{"before", "first", "second", "after"}
	if diff := cmp.Diff(want, pp.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if len(pp.Diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", pp.Diags)
	}

	// Included lines carry a two-entry provenance chain, outermost first
	prov := pp.Provenance[1]
	wantProv := []FileLoc{{File: "main.adoc", Line: 2}, {File: "part.adoc", Line: 1}}
	if diff := cmp.Diff(wantProv, prov); diff != "" {
		t.Errorf("provenance mismatch (-want +got):\n%s", diff)
	}
	if got := pp.Provenance[3]; len(got) != 1 || got[0].Line != 3 {
		t.Errorf("top-level provenance = %v, want main.adoc:3", got)
	}
}

func TestIncludeUnresolved(t *testing.T) {
	pp, _ := preprocess(t, "include::missing.adoc[]\n", nil, nil)

	// The directive line is kept verbatim and a diagnostic is recorded
	if len(pp.Lines) != 1 || pp.Lines[0] != "include::missing.adoc[]" {
		t.Errorf("lines = %v, want the unexpanded directive", pp.Lines)
	}
	if len(pp.Diags) != 1 || !strings.Contains(pp.Diags[0].Msg, "missing.adoc") {
		t.Errorf("diags = %v, want one unresolved-include diagnostic", pp.Diags)
	}
}

func TestIncludeDepthLimit(t *testing.T) {
	files := map[string]string{
		"loop.adoc": "include::loop.adoc[]\n",
	}
	env := NewAttrEnv(nil, nil)
	pp := Preprocess("include::loop.adoc[]\n", env, PreprocessorOptions{
		FileName:        "main.adoc",
		Resolvers:       []Resolver{MapResolver(files)},
		MaxIncludeDepth: 3,
	})

	found := false
	for _, d := range pp.Diags {
		if strings.Contains(d.Msg, "depth limit") {
			found = true
		}
	}
	if !found {
		t.Errorf("diags = %v, want a depth-limit diagnostic", pp.Diags)
	}
	// The offending directive stays in the output verbatim
	if len(pp.Lines) != 1 || pp.Lines[0] != "include::loop.adoc[]" {
		t.Errorf("lines = %v", pp.Lines)
	}
}

func TestIncludeLineRanges(t *testing.T) {
	files := map[string]string{
		"body.adoc": "l1\nl2\nl3\nl4\nl5\n",
	}
	tests := []struct {
		name string
		spec string
		want []string
	}{
		{"single range", "lines=2..3", []string{"l2", "l3"}},
		{"multiple items", "lines=1;4..5", []string{"l1", "l4", "l5"}},
		{"negative end", "lines=3..-1", []string{"l3", "l4", "l5"}},
		{"single line", "lines=4", []string{"l4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp, _ := preprocess(t, "include::body.adoc["+tt.spec+"]\n", nil, files)
			if diff := cmp.Diff(tt.want, pp.Lines); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIncludeTags(t *testing.T) {
	files := map[string]string{
		"code.adoc": strings.Join([]string{
			"outside",
			"// tag::snippet[]",
			"inside one",
			"inside two",
			"// end::snippet[]",
			"outside again",
			"// tag::other[]",
			"other region",
			"// end::other[]",
		}, "\n"),
	}

	tests := []struct {
		name string
		spec string
		want []string
	}{
		{"include one tag", "tags=snippet", []string{"inside one", "inside two"}},
		{"exclude a tag", "tags=!other", []string{"outside", "inside one", "inside two", "outside again"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp, _ := preprocess(t, "include::code.adoc["+tt.spec+"]\n", nil, files)
			if diff := cmp.Diff(tt.want, pp.Lines); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIncludeLevelOffset(t *testing.T) {
	files := map[string]string{
		"chapter.adoc": "== Chapter\n\ncontent\n",
	}
	pp, _ := preprocess(t, "include::chapter.adoc[leveloffset=+1]\n", nil, files)

	want := []string{"=== Chapter", "", "content"}
	if diff := cmp.Diff(want, pp.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestIncludeIndent(t *testing.T) {
	files := map[string]string{
		"snippet.go": "    func main() {\n        run()\n    }\n",
	}
	pp, _ := preprocess(t, "include::snippet.go[indent=2]\n", nil, files)

	want := []string{"  func main() {", "      run()", "  }"}
	if diff := cmp.Diff(want, pp.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestEscapedInclude(t *testing.T) {
	pp, _ := preprocess(t, `\include::nothing.adoc[]`+"\n", nil, nil)
	if len(pp.Lines) != 1 || pp.Lines[0] != "include::nothing.adoc[]" {
		t.Errorf("lines = %v, want the literal directive without the escape", pp.Lines)
	}
	if len(pp.Diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", pp.Diags)
	}
}

func TestConditionals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		seed map[string]string
		want []string
	}{
		{
			name: "ifdef defined",
			src:  "ifdef::flag[]\nshown\nendif::[]\n",
			seed: map[string]string{"flag": ""},
			want: []string{"shown"},
		},
		{
			name: "ifdef undefined",
			src:  "ifdef::flag[]\nhidden\nendif::[]\n",
			want: nil,
		},
		{
			name: "ifndef undefined",
			src:  "ifndef::flag[]\nshown\nendif::[]\n",
			want: []string{"shown"},
		},
		{
			name: "any of several names",
			src:  "ifdef::a,b[]\nshown\nendif::[]\n",
			seed: map[string]string{"b": ""},
			want: []string{"shown"},
		},
		{
			name: "inline body",
			src:  "ifdef::flag[one line]\nafter\n",
			seed: map[string]string{"flag": ""},
			want: []string{"one line", "after"},
		},
		{
			name: "inline body suppressed",
			src:  "ifdef::flag[one line]\nafter\n",
			want: []string{"after"},
		},
		{
			name: "nested regions",
			src:  "ifdef::a[]\nouter\nifdef::b[]\ninner\nendif::[]\nendif::[]\n",
			seed: map[string]string{"a": ""},
			want: []string{"outer"},
		},
		{
			name: "ifeval numeric",
			src:  "ifeval::[{n} >= 3]\nshown\nendif::[]\n",
			seed: map[string]string{"n": "5"},
			want: []string{"shown"},
		},
		{
			name: "ifeval lexical",
			src:  "ifeval::[\"{v}\" == \"beta\"]\nshown\nendif::[]\n",
			seed: map[string]string{"v": "beta"},
			want: []string{"shown"},
		},
		{
			name: "ifeval numeric false",
			src:  "ifeval::[2 > 10]\nhidden\nendif::[]\n",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp, _ := preprocess(t, tt.src, tt.seed, nil)
			if diff := cmp.Diff(tt.want, pp.Lines); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConditionalDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"stray endif", "endif::[]\n", "without an open conditional"},
		{"unterminated", "ifdef::x[]\nbody\n", "unterminated conditional"},
		{"malformed ifeval", "ifeval::[no operator here]\nhidden\nendif::[]\n", "cannot evaluate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp, _ := preprocess(t, tt.src, nil, nil)
			found := false
			for _, d := range pp.Diags {
				if strings.Contains(d.Msg, tt.msg) {
					found = true
				}
			}
			if !found {
				t.Errorf("diags = %v, want one containing %q", pp.Diags, tt.msg)
			}
		})
	}
}

func TestAttributeLines(t *testing.T) {
	src := ":name: value\n:other: has spaces\ntext {name}\n:name!:\n"
	pp, env := preprocess(t, src, nil, nil)

	// Attribute lines are consumed, not emitted
	want := []string{"text {name}"}
	if diff := cmp.Diff(want, pp.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if env.IsSet("name") {
		t.Error("name should be undefined after the unset line")
	}
	if got, _ := env.Value("other"); got != "has spaces" {
		t.Errorf("other = %q", got)
	}
}

func TestLockedAttributeLine(t *testing.T) {
	env := NewAttrEnv(map[string]string{"version": "1"}, []string{"version"})
	pp := Preprocess(":version: 2\n", env, PreprocessorOptions{FileName: "main.adoc"})

	if got, _ := env.Value("version"); got != "1" {
		t.Errorf("version = %q, want the locked value", got)
	}
	if len(pp.Diags) != 1 || !strings.Contains(pp.Diags[0].Msg, "locked") {
		t.Errorf("diags = %v, want one locked-attribute diagnostic", pp.Diags)
	}
}

func TestIncludeTargetExpansion(t *testing.T) {
	files := map[string]string{
		"v2/notes.adoc": "v2 notes\n",
	}
	pp, _ := preprocess(t, "include::{dir}/notes.adoc[]\n",
		map[string]string{"dir": "v2"}, files)
	want := []string{"v2 notes"}
	if diff := cmp.Diff(want, pp.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}
