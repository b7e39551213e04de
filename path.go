package shapecheck

import (
	"strconv"
	"strings"
)

// Path identifies a location in the data tree. It is an immutable chain
// anchored at the root; Field and Index return extended copies, so a Path
// can be shared between sibling branches.
type Path struct {
	parent *Path
	name   string
	index  int
	isIdx  bool
	depth  int
}

// Root returns the root location, rendered as "$".
func Root() Path { return Path{} }

// Field returns the location of the named property below p.
func (p Path) Field(name string) Path {
	parent := p
	return Path{parent: &parent, name: name, depth: p.depth + 1}
}

// Index returns the location of the i-th element below p.
func (p Path) Index(i int) Path {
	parent := p
	return Path{parent: &parent, index: i, isIdx: true, depth: p.depth + 1}
}

// Depth is the number of segments below the root.
func (p Path) Depth() int { return p.depth }

// IsRoot reports whether p is the root location.
func (p Path) IsRoot() bool { return p.parent == nil }

// Name returns the last property name, or "" for the root and indices.
func (p Path) Name() string { return p.name }

func (p Path) segments() []Path {
	out := make([]Path, p.depth)
	cur := p
	for i := p.depth - 1; i >= 0; i-- {
		out[i] = cur
		cur = *cur.parent
	}
	return out
}

// String renders the location as "$.microservices[0].name".
func (p Path) String() string {
	b := &strings.Builder{}
	b.WriteByte('$')
	for _, s := range p.segments() {
		switch {
		case s.isIdx:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
		case isPlainName(s.name):
			b.WriteByte('.')
			b.WriteString(s.name)
		default:
			b.WriteByte('[')
			b.WriteString(strconv.Quote(s.name))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// Pointer renders the location as an RFC 6901 JSON Pointer.
func (p Path) Pointer() string {
	if p.depth == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p.segments() {
		b.WriteByte('/')
		if s.isIdx {
			b.WriteString(strconv.Itoa(s.index))
			continue
		}
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s.name, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// label is the field label used in messages: the property name, or the
// nearest property name followed by the index for array elements.
func (p Path) label() string {
	if p.depth == 0 {
		return "$"
	}
	if !p.isIdx {
		return p.name
	}
	return p.parent.label() + "[" + strconv.Itoa(p.index) + "]"
}

func isPlainName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '-' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
