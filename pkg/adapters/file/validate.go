package file

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
)

// Severity grades a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding.
type Issue struct {
	Path     domain.Path
	Severity Severity
	Message  string
}

func (i Issue) String() string {
	if len(i.Path) == 0 {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: [%s] %s", i.Severity, i.Path, i.Message)
}

// Issues is the result of Validate.
type Issues []Issue

// Errors returns only the error-level findings.
func (is Issues) Errors() Issues {
	var out Issues
	for _, i := range is {
		if i.Severity == SeverityError {
			out = append(out, i)
		}
	}
	return out
}

// Err joins the error-level findings, or returns nil.
func (is Issues) Err() error {
	errs := is.Errors()
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.String()
	}
	return errors.New("invalid tree: " + strings.Join(msgs, "; "))
}

// Validate checks the document for structural problems.
//
// Errors: no categories, empty or duplicate sibling names, a node with both
// children and items. Warnings: a tree without any populated leaf (every
// search will be exhausted) and a NoResults flag on a node with children,
// where it has no effect on leaf reads.
func (d *Document) Validate() Issues {
	var issues Issues
	if len(d.Categories) == 0 {
		issues = append(issues, Issue{Severity: SeverityError, Message: "tree has no root categories"})
		return issues
	}

	populated := 0
	var walk func(parent domain.Path, siblings []Category)
	walk = func(parent domain.Path, siblings []Category) {
		seen := make(map[string]bool, len(siblings))
		for i, c := range siblings {
			p := parent.Child(c.Name)
			if c.Name == "" {
				issues = append(issues, Issue{Path: parent, Severity: SeverityError, Message: fmt.Sprintf("child #%d has no name", i)})
				continue
			}
			if seen[c.Name] {
				issues = append(issues, Issue{Path: p, Severity: SeverityError, Message: "duplicate sibling name"})
			}
			seen[c.Name] = true

			switch {
			case len(c.Children) > 0 && len(c.Items) > 0:
				issues = append(issues, Issue{Path: p, Severity: SeverityError, Message: "node has both children and items"})
			case len(c.Children) > 0 && c.NoResults:
				issues = append(issues, Issue{Path: p, Severity: SeverityWarning, Message: "no_results on an inner node"})
			case len(c.Children) == 0 && len(c.Items) > 0:
				populated++
			}
			walk(p, c.Children)
		}
	}
	walk(domain.Path{}, d.Categories)

	if populated == 0 {
		issues = append(issues, Issue{Severity: SeverityWarning, Message: "no populated leaf: every search will be exhausted"})
	}
	return issues
}
