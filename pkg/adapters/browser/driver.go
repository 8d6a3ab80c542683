package browser

import (
	"context"
	"errors"
	"strings"
)

// Driver is the page-level capability the Provider needs.
// Selectors are CSS selectors; nth is the zero-based index among the matches.
type Driver interface {
	Goto(ctx context.Context, url string) error
	Texts(ctx context.Context, selector string) ([]string, error)
	Click(ctx context.Context, selector string, nth int) error
	Visible(ctx context.Context, selector string) (bool, error)
	Back(ctx context.Context) error
	Close() error
}

// Selectors locate the menu elements on the page.
type Selectors struct {
	// Children matches one element per visible child category. At the chooser
	// it matches the root categories.
	Children string
	// Items matches one element per item of a leaf.
	Items string
	// NoResults matches the "no results" overlay. Optional.
	NoResults string
	// Dismiss matches the control that closes the overlay. Optional.
	Dismiss string
	// Up matches an in-page "back" control. When empty the browser history is used.
	Up string
}

// Validate reports missing mandatory selectors.
func (s Selectors) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Children) == "" {
		errs = append(errs, errors.New("children selector is required"))
	}
	if strings.TrimSpace(s.Items) == "" {
		errs = append(errs, errors.New("items selector is required"))
	}
	if s.Dismiss != "" && s.NoResults == "" {
		errs = append(errs, errors.New("dismiss selector requires a no-results selector"))
	}
	return errors.Join(errs...)
}
