package domain

import (
	"errors"
	"fmt"
)

// ErrProviderUnavailable marks a transient fault of the menu source.
// The navigator propagates it immediately and never retries.
var ErrProviderUnavailable = errors.New("menu provider unavailable")

// ErrNavigation marks a mismatch between the provider and the navigator's
// model of the tree (stale child reference, over-ascension).
var ErrNavigation = errors.New("navigation error")

// ErrReportNotFound is returned when a run report cannot be found in the store.
var ErrReportNotFound = errors.New("report not found")

// ErrInvalidLimits is matched by every LimitsError.
var ErrInvalidLimits = errors.New("invalid limits")

// ProviderUnavailableError wraps the cause of an environment fault.
type ProviderUnavailableError struct {
	Op    string
	Cause error
}

func (e *ProviderUnavailableError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", ErrProviderUnavailable, e.Op)
	}
	return fmt.Sprintf("%s: %s: %v", ErrProviderUnavailable, e.Op, e.Cause)
}

func (e *ProviderUnavailableError) Unwrap() error { return e.Cause }

func (e *ProviderUnavailableError) Is(target error) bool {
	return target == ErrProviderUnavailable
}

// Unavailable is a shorthand used by adapters.
func Unavailable(op string, cause error) error {
	return &ProviderUnavailableError{Op: op, Cause: cause}
}

// NavigationError reports an invariant violation at Path.
// It indicates a defect in the provider adapter, not a search result.
type NavigationError struct {
	Path   Path
	Reason string
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("%s at [%s]: %s", ErrNavigation, e.Path, e.Reason)
}

func (e *NavigationError) Is(target error) bool {
	return target == ErrNavigation
}

// LimitsError represents a single invalid limit.
type LimitsError struct {
	Field  string
	Reason string
	Value  int
}

func (e *LimitsError) Error() string {
	return fmt.Sprintf("limit %q: %s (got %d)", e.Field, e.Reason, e.Value)
}

func (e *LimitsError) Is(target error) bool {
	return target == ErrInvalidLimits
}
