package adoc

import "strings"

// parseAttrList parses the interior of a bracketed attribute list like
// 'source,java,indent=0,title="A, quoted"'. Positional entries keep their
// order; named entries go to the map. Values may be quoted with single or
// double quotes to protect commas.
func parseAttrList(s string) (positional []string, named map[string]string) {
	named = map[string]string{}

	for _, part := range splitAttrList(s) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if key, value, ok := cutUnquoted(part, '='); ok {
			named[strings.TrimSpace(key)] = unquote(strings.TrimSpace(value))
			continue
		}
		positional = append(positional, unquote(part))
	}
	return positional, named
}

// splitAttrList splits on commas that are not inside quotes.
func splitAttrList(s string) []string {
	var parts []string
	var quote byte
	start := 0

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ',':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// cutUnquoted cuts s at the first sep outside of quotes.
func cutUnquoted(s string, sep byte) (before, after string, found bool) {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == sep:
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
