package domain

import (
	"strconv"
	"strings"
)

// ChildRef identifies a child entry as listed by a MenuProvider.
// Only the name and ordinal are retained; nodes are never materialized.
type ChildRef struct {
	Name    string `json:"name" yaml:"name"`
	Ordinal int    `json:"ordinal" yaml:"ordinal"`
}

// ItemRef identifies an item picked from a populated leaf.
type ItemRef struct {
	Name    string `json:"name" yaml:"name"`
	Ordinal int    `json:"ordinal" yaml:"ordinal"`
}

// Path is the ordered list of node names from the active root category
// to the current position. The first element is the root category itself.
// The zero value is the category chooser (no root selected).
type Path []string

// Root returns the root category name, or "" at the category chooser.
func (p Path) Root() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Depth returns the number of levels below the category chooser.
func (p Path) Depth() int {
	return len(p)
}

// Leaf returns the last segment, or "" for an empty path.
func (p Path) Leaf() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Child returns a new path extended with name. The receiver is never aliased.
func (p Path) Child(name string) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, name)
}

// Parent returns a copy of the path truncated by levels, clamped at the chooser.
func (p Path) Parent(levels int) Path {
	n := len(p) - levels
	if n < 0 {
		n = 0
	}
	next := make(Path, n)
	copy(next, p[:n])
	return next
}

// Clone returns an independent copy.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	next := make(Path, len(p))
	copy(next, p)
	return next
}

// Equal reports whether both paths hold the same segments.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is an ancestor of (or equal to) p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	return p[:len(prefix)].Equal(prefix)
}

// Key returns the memo key of the path.
func (p Path) Key() PathKey {
	return NewPathKey(p)
}

// String renders the path for logs and reports. It is not used for identity.
func (p Path) String() string {
	return strings.Join(p, " > ")
}

// PathKey is the composite identity of a path: its root category and the
// ordered segments below it. Segments are length-prefixed when encoded so
// names containing separator characters cannot collide.
type PathKey struct {
	Root  string
	Nodes string
}

// NewPathKey builds the composite key for p.
func NewPathKey(p Path) PathKey {
	if len(p) == 0 {
		return PathKey{}
	}
	var sb strings.Builder
	for _, name := range p[1:] {
		sb.WriteString(strconv.Itoa(len(name)))
		sb.WriteByte(':')
		sb.WriteString(name)
	}
	return PathKey{Root: p[0], Nodes: sb.String()}
}
