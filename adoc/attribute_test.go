package adoc

import (
	"testing"
)

func TestAttrEnvLocking(t *testing.T) {
	env := NewAttrEnv(map[string]string{"version": "2.0", "free": "yes"}, []string{"version"})

	if !env.Locked("version") {
		t.Error("version should be locked")
	}
	if env.Set("version", "3.0") {
		t.Error("Set on a locked attribute should be rejected")
	}
	if env.Unset("version") {
		t.Error("Unset on a locked attribute should be rejected")
	}
	if got, _ := env.Value("version"); got != "2.0" {
		t.Errorf("locked value changed to %q", got)
	}

	if !env.Set("free", "no") {
		t.Error("Set on an unlocked attribute should succeed")
	}
	if !env.Unset("free") {
		t.Error("Unset on an unlocked attribute should succeed")
	}
	if env.IsSet("free") {
		t.Error("free should be undefined after Unset")
	}
}

func TestExpand(t *testing.T) {
	env := NewAttrEnv(map[string]string{
		"product": "adoc",
		"version": "2.0",
		"tricky":  "{product}",
		"empty":   "",
	}, nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no references", "plain text", "plain text"},
		{"single", "using {product} here", "using adoc here"},
		{"several", "{product} v{version}", "adoc v2.0"},
		{"unknown name stays literal", "see {nosuch} marker", "see {nosuch} marker"},
		{"empty value", "a{empty}b", "ab"},
		{"no recursive expansion", "x {tricky} y", "x {product} y"},
		{"brace without name", "not {  } a ref", "not {  } a ref"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := env.Expand(tt.in); got != tt.want {
				t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
