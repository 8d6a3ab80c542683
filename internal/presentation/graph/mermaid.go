package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
)

// Overlay contains the result of a run to visualize on the tree.
type Overlay struct {
	// Path is the populated leaf that was found, root first.
	Path domain.Path
	// DeadEnds are the paths memoized during the run.
	DeadEnds []domain.Path
}

// OverlayFromReport extracts the overlay of a stored run.
func OverlayFromReport(r *domain.Report) *Overlay {
	if r == nil {
		return nil
	}
	return &Overlay{Path: r.Path, DeadEnds: r.DeadEnds}
}

// GenerateMermaid produces a Mermaid flowchart of a category tree.
// It applies semantic styling:
// - Root category: ([Stadium])
// - Populated leaf: [[Subroutine]] with its item count
// - Default: [Rectangle]
// Nodes with a "no results" overlay are marked with a prohibition sign.
// It also applies overlay styles (found path, dead ends) if provided.
func GenerateMermaid(roots []*memory.Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make(map[domain.PathKey]string)

	var walk func(n *memory.Node, path domain.Path, id string)
	walk = func(n *memory.Node, path domain.Path, id string) {
		ids[path.Key()] = id

		label := escapeLabel(n.Name)
		if n.NoResults {
			label += " 🚫"
		}

		opener, closer := "[", "]"
		switch {
		case len(path) == 1:
			opener, closer = "([", "])"
		case n.Populated():
			opener, closer = "[[", "]]"
			label = fmt.Sprintf("%s <br/> %d items", label, len(n.Items))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, label, closer))

		for i, c := range n.Children {
			childID := id + "_" + strconv.Itoa(i)
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", id, childID))
			walk(c, path.Child(c.Name), childID)
		}
	}
	for i, r := range roots {
		walk(r, domain.Path{r.Name}, "n"+strconv.Itoa(i))
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds
		sb.WriteString("    classDef found fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef deadend fill:#ffcdd2,stroke:#c62828,stroke-dasharray:4 2,color:#000;\n")

		for i := 1; i <= len(overlay.Path); i++ {
			if id, ok := ids[overlay.Path[:i].Key()]; ok {
				sb.WriteString(fmt.Sprintf("    class %s found;\n", id))
			}
		}

		seen := make(map[string]bool)
		for _, p := range overlay.DeadEnds {
			// Dead ends can come from a provider whose tree has changed since
			id, ok := ids[p.Key()]
			if !ok || seen[id] {
				continue
			}
			seen[id] = true
			sb.WriteString(fmt.Sprintf("    class %s deadend;\n", id))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}
