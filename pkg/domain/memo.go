package domain

// DeadEndMemo is the append-only set of paths proven to lead nowhere.
// Keys are namespaced by root category, so entries recorded under one root
// never affect exploration of another.
type DeadEndMemo struct {
	keys map[PathKey]struct{}
}

// NewDeadEndMemo creates an empty memo.
func NewDeadEndMemo() *DeadEndMemo {
	return &DeadEndMemo{keys: make(map[PathKey]struct{})}
}

// Add records p as a dead end. It reports whether the key was new.
func (m *DeadEndMemo) Add(p Path) bool {
	k := p.Key()
	if _, ok := m.keys[k]; ok {
		return false
	}
	m.keys[k] = struct{}{}
	return true
}

// Contains reports whether p has been recorded as a dead end.
func (m *DeadEndMemo) Contains(p Path) bool {
	_, ok := m.keys[p.Key()]
	return ok
}

// Len returns the number of recorded dead ends across all roots.
func (m *DeadEndMemo) Len() int {
	return len(m.keys)
}

// Candidates returns the children of p whose resulting path is not a dead end.
func (m *DeadEndMemo) Candidates(p Path, children []ChildRef) []ChildRef {
	out := make([]ChildRef, 0, len(children))
	for _, c := range children {
		if !m.Contains(p.Child(c.Name)) {
			out = append(out, c)
		}
	}
	return out
}
