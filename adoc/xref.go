package adoc

import "strings"

// XrefCoord is the advisory decomposition of a cross-reference target
// that uses the multi-part addressing syntax
//
//	version@component:module:family$resource#fragment
//
// Every part is optional except the resource. The decomposition never
// rejects an otherwise-valid raw target: when the raw string does not use
// the syntax at all, ParseXrefCoord returns nil and the raw target stands
// on its own.
type XrefCoord struct {
	Version   string
	Component string
	Module    string
	Family    string
	Resource  string
	Fragment  string
}

// ParseXrefCoord decomposes target when it matches the multi-part
// addressing syntax, else returns nil.
func ParseXrefCoord(target string) *XrefCoord {
	if !strings.ContainsAny(target, "@:$") {
		return nil
	}

	c := &XrefCoord{}
	rest := target

	if version, after, ok := strings.Cut(rest, "@"); ok {
		c.Version = version
		rest = after
	}

	if fragIdx := strings.LastIndexByte(rest, '#'); fragIdx >= 0 {
		c.Fragment = rest[fragIdx+1:]
		rest = rest[:fragIdx]
	}

	// component:module: prefix, with the module part optional
	if first, after, ok := strings.Cut(rest, ":"); ok {
		c.Component = first
		if second, tail, ok := strings.Cut(after, ":"); ok {
			c.Module = second
			rest = tail
		} else {
			rest = after
		}
	}

	if family, after, ok := strings.Cut(rest, "$"); ok {
		c.Family = family
		rest = after
	}

	c.Resource = rest
	return c
}
