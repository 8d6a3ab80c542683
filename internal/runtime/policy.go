package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/canopy/pkg/domain"
)

// applyPolicy decides what follows a dead end. The rules are evaluated in
// order and the first match wins:
//
//  1. the descent budget is spent: stop;
//  2. the category budget is spent, or the dead end is the root itself: abandon the root;
//  3. depth >= 3: ascend two levels;
//  4. otherwise: ascend one level.
//
// Deeper dead ends always backtrack at least as far as shallower ones.
// It returns true when the run must stop with Exhausted.
func (n *Navigator) applyPolicy(ctx context.Context, s *search) (bool, error) {
	depth := s.path.Depth()

	switch {
	case s.budget.TotalDescentAttempts >= n.limits.MaxDescentAttempts:
		n.logger.Debug("descent budget spent", "attempts", s.budget.TotalDescentAttempts)
		return true, nil

	case s.budget.AttemptsInCurrentCategory >= n.limits.MaxAttemptsPerCategory,
		depth <= 1:
		// At depth 1 every child of the root is dead (or it has none), and
		// there is no level left to ascend without leaving the category.
		return n.abandonCategory(ctx, s)

	case depth >= 3:
		return false, n.backtrack(ctx, s, 2)

	default:
		return false, n.backtrack(ctx, s, 1)
	}
}

func (n *Navigator) backtrack(ctx context.Context, s *search, levels int) error {
	want := s.path.Parent(levels)
	next, err := n.provider.Ascend(ctx, s.path, levels)
	if err != nil {
		return classify("ascend", err)
	}
	if !next.Equal(want) {
		return &domain.NavigationError{Path: next, Reason: fmt.Sprintf("ascend(%d) from [%s] landed off [%s]", levels, s.path, want)}
	}

	from := s.path
	s.path = next
	s.stats.Backtracks++
	n.logger.Debug("backtrack", "root", s.root, "levels", levels, "path", s.path.String())
	n.emitMove(ctx, s, domain.EventBacktrack, from, next, levels)
	return nil
}

// abandonCategory gives up on the active root. Dead-end keys are kept: they
// are namespaced per root and stay valid if the same root is drawn again.
func (n *Navigator) abandonCategory(ctx context.Context, s *search) (bool, error) {
	s.budget.TotalCategoriesAttempted++
	s.budget.AttemptsInCurrentCategory = 0

	if s.budget.TotalCategoriesAttempted >= n.limits.MaxTotalCategories {
		n.logger.Debug("category budget spent", "categories", s.budget.TotalCategoriesAttempted)
		return true, nil
	}

	chooser, err := n.provider.ResetToCategoryRoot(ctx)
	if err != nil {
		return false, classify("reset_to_category_root", err)
	}
	roots, err := n.provider.ListChildren(ctx, chooser)
	if err != nil {
		return false, classify("list_children", err)
	}

	next, reused, ok := n.drawCategory(roots, s.root)
	if !ok {
		return false, &domain.NavigationError{Path: chooser, Reason: "category chooser lists no categories"}
	}

	previous := s.root
	s.path = chooser
	if err := n.enterRef(ctx, s, next); err != nil {
		return false, err
	}
	s.stats.Switches++

	n.logger.Info("category switched", "from", previous, "to", s.root, "reused", reused,
		"categories_attempted", s.budget.TotalCategoriesAttempted)
	n.emitCategorySwitch(ctx, s, previous, reused)
	return false, nil
}

// drawCategory performs bounded rejection sampling for a root other than
// current. When no alternative exists, or none is drawn within the retry
// budget, the current root is reused.
func (n *Navigator) drawCategory(roots []domain.ChildRef, current string) (domain.ChildRef, bool, bool) {
	if len(roots) == 0 {
		return domain.ChildRef{}, false, false
	}

	var same *domain.ChildRef
	alternatives := 0
	for i := range roots {
		if roots[i].Name == current {
			if same == nil {
				same = &roots[i]
			}
			continue
		}
		alternatives++
	}

	if alternatives > 0 {
		for i := 0; i < n.limits.CategorySwitchRetryDraws; i++ {
			pick := roots[n.rng.IntN(len(roots))]
			if pick.Name != current {
				return pick, false, true
			}
		}
	}

	if same == nil {
		return roots[0], false, true
	}
	return *same, true, true
}

// enterCategory moves from the chooser into the root named root.
func (n *Navigator) enterCategory(ctx context.Context, s *search, root string) error {
	chooser := domain.Path{}
	roots, err := n.provider.ListChildren(ctx, chooser)
	if err != nil {
		return classify("list_children", err)
	}
	for _, r := range roots {
		if r.Name == root {
			s.path = chooser
			return n.enterRef(ctx, s, r)
		}
	}
	return &domain.NavigationError{Path: chooser, Reason: fmt.Sprintf("category %q is not listed", root)}
}

func (n *Navigator) enterRef(ctx context.Context, s *search, ref domain.ChildRef) error {
	want := domain.Path{ref.Name}
	next, err := n.provider.DescendInto(ctx, s.path, ref)
	if err != nil {
		return classify("descend_into", err)
	}
	if !next.Equal(want) {
		return &domain.NavigationError{Path: next, Reason: fmt.Sprintf("entering category %q landed off the expected path", ref.Name)}
	}
	s.root = ref.Name
	s.path = next
	return nil
}
