package memory

import "github.com/aretw0/canopy/pkg/domain"

// Summary describes the shape of a tree.
type Summary struct {
	Roots           int           `json:"roots"`
	Nodes           int           `json:"nodes"`
	MaxDepth        int           `json:"max_depth"`
	PopulatedLeaves []domain.Path `json:"populated_leaves"`
	EmptyLeaves     int           `json:"empty_leaves"`
}

// Summarize walks the whole tree. It is meant for validation and
// reporting, never for the search itself.
func (t *Tree) Summarize() Summary {
	s := Summary{Roots: len(t.chooser.Children)}
	var walk func(n *Node, p domain.Path)
	walk = func(n *Node, p domain.Path) {
		s.Nodes++
		if len(p) > s.MaxDepth {
			s.MaxDepth = len(p)
		}
		if n.IsLeaf() {
			if n.Populated() {
				s.PopulatedLeaves = append(s.PopulatedLeaves, p)
			} else {
				s.EmptyLeaves++
			}
			return
		}
		for _, c := range n.Children {
			walk(c, p.Child(c.Name))
		}
	}
	for _, r := range t.chooser.Children {
		walk(r, domain.Path{r.Name})
	}
	return s
}
