package ports

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

// MenuProvider exposes the navigation primitives of a lazily revealed
// category tree. Implementations wrap a UI driver, an API or an in-memory
// fixture; the navigator never sees more than one level at a time.
//
// Any method may return an error matching domain.ErrProviderUnavailable for
// transient environment faults. Errors matching domain.ErrNavigation signal
// that the caller's path no longer matches the provider's position.
type MenuProvider interface {
	// ListChildren returns the children visible at the node reached by path.
	// An empty result means the node is a potential leaf.
	ListChildren(ctx context.Context, path domain.Path) ([]domain.ChildRef, error)

	// IsLeafWithItems reports whether the node at path is terminal and
	// exposes a non-empty item collection.
	IsLeafWithItems(ctx context.Context, path domain.Path) (bool, error)

	// HasNoResultsOverlay detects a blocking "insufficient results" notice.
	HasNoResultsOverlay(ctx context.Context, path domain.Path) (bool, error)

	// DismissNoResultsOverlay clears the notice. Dismissing an absent
	// overlay is a no-op.
	DismissNoResultsOverlay(ctx context.Context, path domain.Path) error

	// DescendInto moves into the named child and returns the new path.
	// A stale child reference yields a *domain.NavigationError.
	DescendInto(ctx context.Context, path domain.Path, child domain.ChildRef) (domain.Path, error)

	// Ascend moves back levels steps. Asking for more levels than the
	// current depth yields a *domain.NavigationError.
	Ascend(ctx context.Context, path domain.Path, levels int) (domain.Path, error)

	// ResetToCategoryRoot returns to the top-level category chooser.
	// ListChildren on the returned (empty) path lists the root categories.
	ResetToCategoryRoot(ctx context.Context) (domain.Path, error)

	// PickRandomItem returns a uniformly chosen item of a populated leaf.
	PickRandomItem(ctx context.Context, path domain.Path) (domain.ItemRef, error)
}
