package adoc

import (
	"regexp"

	"github.com/hesusruiz/adoc/sliceedit"
)

// reAttrRef matches an attribute reference '{name}' inside text.
var reAttrRef = regexp.MustCompile(`\{([a-zA-Z0-9_][a-zA-Z0-9_-]*)\}`)

// AttrEnv is the mutable attribute environment shared by the preprocessor
// and the parser. A name is either defined (possibly with an empty value)
// or absent. Names may be locked, which rejects in-document redefinition.
type AttrEnv struct {
	values map[string]string
	locked map[string]bool
}

// NewAttrEnv creates an environment from the seed values. All names in
// locked are protected against later Set/Unset calls.
func NewAttrEnv(seed map[string]string, locked []string) *AttrEnv {
	env := &AttrEnv{
		values: make(map[string]string, len(seed)),
		locked: make(map[string]bool, len(locked)),
	}
	for name, value := range seed {
		env.values[name] = value
	}
	for _, name := range locked {
		env.locked[name] = true
	}
	return env
}

// Set defines an attribute. Later definitions overwrite earlier ones.
// Setting a locked name is rejected and reported with the false return.
func (env *AttrEnv) Set(name string, value string) bool {
	if env.locked[name] {
		return false
	}
	env.values[name] = value
	return true
}

// Unset removes an attribute definition. Unsetting a locked name is
// rejected and reported with the false return.
func (env *AttrEnv) Unset(name string) bool {
	if env.locked[name] {
		return false
	}
	delete(env.values, name)
	return true
}

// Value returns the current value of the attribute and whether the name
// is defined at all.
func (env *AttrEnv) Value(name string) (string, bool) {
	value, ok := env.values[name]
	return value, ok
}

// IsSet reports whether the attribute name is currently defined.
func (env *AttrEnv) IsSet(name string) bool {
	_, ok := env.values[name]
	return ok
}

// Locked reports whether the attribute name was locked at creation.
func (env *AttrEnv) Locked(name string) bool {
	return env.locked[name]
}

// Values returns a copy of the current name/value mapping.
func (env *AttrEnv) Values() map[string]string {
	out := make(map[string]string, len(env.values))
	for name, value := range env.values {
		out[name] = value
	}
	return out
}

// Expand substitutes every '{name}' reference to a defined attribute with
// its current value. Unrecognized names are left literally in place, and
// substituted text is never re-expanded.
func (env *AttrEnv) Expand(text string) string {
	matches := reAttrRef.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text
	}

	// All replacements are queued against the original text, so a value
	// containing '{other}' cannot trigger recursive expansion.
	buf := sliceedit.NewBufferString(text)
	edited := false
	for _, m := range matches {
		name := text[m[2]:m[3]]
		value, ok := env.values[name]
		if !ok {
			continue
		}
		buf.Replace(m[0], m[1], value)
		edited = true
	}
	if !edited {
		return text
	}
	return buf.String()
}
