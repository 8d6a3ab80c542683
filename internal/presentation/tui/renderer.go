package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a function that renders markdown using glamour.
// With plain set (output is not a terminal) the notty style is used, which
// keeps the text free of escape sequences.
func NewRenderer(plain bool) func(string) (string, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	}
	if plain {
		opts = append(opts, glamour.WithStandardStyle("notty"), glamour.WithColorProfile(termenv.Ascii))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// ReportMarkdown describes a run report as markdown.
func ReportMarkdown(r *domain.Report) string {
	var sb strings.Builder

	switch {
	case r.Failed():
		fmt.Fprintf(&sb, "# Run failed in %s\n\n", r.Root)
		fmt.Fprintf(&sb, "> %s\n\n", r.Error)
	case r.Kind == domain.OutcomeFound:
		fmt.Fprintf(&sb, "# Found in %s\n\n", r.Root)
		fmt.Fprintf(&sb, "**%s** at `%s`\n\n", r.Item.Name, r.Path)
	default:
		fmt.Fprintf(&sb, "# Exhausted from %s\n\n", r.Root)
		sb.WriteString("No populated leaf was found within the search limits.\n\n")
	}

	sb.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Descent attempts | %d / %d |\n", r.Stats.DescentAttempts, r.Limits.MaxDescentAttempts)
	fmt.Fprintf(&sb, "| Dead ends | %d |\n", r.Stats.DeadEnds)
	fmt.Fprintf(&sb, "| Backtracks | %d |\n", r.Stats.Backtracks)
	fmt.Fprintf(&sb, "| Category switches | %d |\n", r.Stats.Switches)
	fmt.Fprintf(&sb, "| Overlays dismissed | %d |\n", r.Stats.Dismissals)
	fmt.Fprintf(&sb, "| Duration | %s |\n", r.Duration().Round(time.Millisecond))

	if len(r.DeadEnds) > 0 {
		sb.WriteString("\n## Dead ends\n\n")
		for _, p := range r.DeadEnds {
			fmt.Fprintf(&sb, "- `%s`\n", p)
		}
	}

	fmt.Fprintf(&sb, "\n_run %s_\n", r.ID)
	return sb.String()
}
