package domain

import "fmt"

// Default search limits.
const (
	DefaultMaxDepth                 = 10
	DefaultMaxDescentAttempts       = 50
	DefaultMaxAttemptsPerCategory   = 10
	DefaultMaxTotalCategories       = 5
	DefaultCategorySwitchRetryDraws = 10
)

// Limits bounds a single search run. Every counter checked against these
// values is monotonic, which is what guarantees termination.
type Limits struct {
	MaxDepth                 int `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth"`
	MaxDescentAttempts       int `json:"max_descent_attempts" yaml:"max_descent_attempts" mapstructure:"max_descent_attempts"`
	MaxAttemptsPerCategory   int `json:"max_attempts_per_category" yaml:"max_attempts_per_category" mapstructure:"max_attempts_per_category"`
	MaxTotalCategories       int `json:"max_total_categories" yaml:"max_total_categories" mapstructure:"max_total_categories"`
	CategorySwitchRetryDraws int `json:"category_switch_retry_draws" yaml:"category_switch_retry_draws" mapstructure:"category_switch_retry_draws"`
}

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:                 DefaultMaxDepth,
		MaxDescentAttempts:       DefaultMaxDescentAttempts,
		MaxAttemptsPerCategory:   DefaultMaxAttemptsPerCategory,
		MaxTotalCategories:       DefaultMaxTotalCategories,
		CategorySwitchRetryDraws: DefaultCategorySwitchRetryDraws,
	}
}

// WithDefaults fills zero fields from DefaultLimits.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.MaxDepth == 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.MaxDescentAttempts == 0 {
		l.MaxDescentAttempts = d.MaxDescentAttempts
	}
	if l.MaxAttemptsPerCategory == 0 {
		l.MaxAttemptsPerCategory = d.MaxAttemptsPerCategory
	}
	if l.MaxTotalCategories == 0 {
		l.MaxTotalCategories = d.MaxTotalCategories
	}
	if l.CategorySwitchRetryDraws == 0 {
		l.CategorySwitchRetryDraws = d.CategorySwitchRetryDraws
	}
	return l
}

// Validate rejects non-positive limits.
func (l Limits) Validate() error {
	checks := []struct {
		field string
		value int
	}{
		{"max_depth", l.MaxDepth},
		{"max_descent_attempts", l.MaxDescentAttempts},
		{"max_attempts_per_category", l.MaxAttemptsPerCategory},
		{"max_total_categories", l.MaxTotalCategories},
		{"category_switch_retry_draws", l.CategorySwitchRetryDraws},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return &LimitsError{Field: c.field, Reason: "must be positive", Value: c.value}
		}
	}
	return nil
}

// AttemptBound is the maximum number of dead ends a run can record before
// it is forced to return.
func (l Limits) AttemptBound() int {
	return l.MaxDescentAttempts + l.MaxTotalCategories*l.MaxAttemptsPerCategory
}

// String is used in logs.
func (l Limits) String() string {
	return fmt.Sprintf("depth=%d descents=%d per_category=%d categories=%d draws=%d",
		l.MaxDepth, l.MaxDescentAttempts, l.MaxAttemptsPerCategory, l.MaxTotalCategories, l.CategorySwitchRetryDraws)
}

// Budget holds the monotonic counters of a run.
type Budget struct {
	TotalDescentAttempts      int `json:"total_descent_attempts"`
	AttemptsInCurrentCategory int `json:"attempts_in_current_category"`
	TotalCategoriesAttempted  int `json:"total_categories_attempted"`
}

// CategoriesTried counts every root that was active and explored: the
// abandoned ones plus the current one if it consumed any attempt.
func (b Budget) CategoriesTried() int {
	if b.AttemptsInCurrentCategory > 0 {
		return b.TotalCategoriesAttempted + 1
	}
	return b.TotalCategoriesAttempted
}
