package domain

// OutcomeKind discriminates the terminal results of a search run.
type OutcomeKind string

const (
	OutcomeFound     OutcomeKind = "found"     // A populated leaf was reached
	OutcomeExhausted OutcomeKind = "exhausted" // Budget spent without a populated leaf
)

// Stats summarises the work done by a run.
type Stats struct {
	DescentAttempts int `json:"descent_attempts"`
	CategoriesTried int `json:"categories_tried"`
	Descents        int `json:"descents"`
	Backtracks      int `json:"backtracks"`
	Switches        int `json:"switches"`
	DeadEnds        int `json:"dead_ends"`
	Dismissals      int `json:"dismissals"`
}

// Outcome is the result of a completed run. Exhausted is a legitimate
// negative result and is never reported as an error.
type Outcome struct {
	Kind OutcomeKind `json:"kind"`

	// Path and Item are set when Kind == OutcomeFound.
	Path Path     `json:"path,omitempty"`
	Item *ItemRef `json:"item,omitempty"`

	// CategoriesTried is set for both kinds; it is the reported value of
	// Exhausted{categoriesTried}.
	CategoriesTried int `json:"categories_tried"`

	// DeadEnds lists every path recorded as a dead end, in discovery order.
	DeadEnds []Path `json:"dead_ends,omitempty"`

	Stats Stats `json:"stats"`
}

// Found builds a success outcome.
func Found(path Path, item ItemRef) Outcome {
	return Outcome{Kind: OutcomeFound, Path: path.Clone(), Item: &item}
}

// Exhausted builds a budget-exhaustion outcome.
func Exhausted(categoriesTried int) Outcome {
	return Outcome{Kind: OutcomeExhausted, CategoriesTried: categoriesTried}
}

// IsFound reports whether the run located a populated leaf.
func (o Outcome) IsFound() bool {
	return o.Kind == OutcomeFound
}
