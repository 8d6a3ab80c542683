package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// Navigator is the randomized backtracking search over a MenuProvider.
// It is single-threaded: every provider call completes before the next decision.
type Navigator struct {
	provider ports.MenuProvider
	limits   domain.Limits
	rng      *rand.Rand
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
}

// NavigatorOption defines a functional option for configuring the Navigator.
type NavigatorOption func(*Navigator)

// WithLimits overrides the search limits. Zero fields keep their defaults.
func WithLimits(limits domain.Limits) NavigatorOption {
	return func(n *Navigator) {
		n.limits = limits.WithDefaults()
	}
}

// WithRand injects the random source used for child and category draws.
func WithRand(rng *rand.Rand) NavigatorOption {
	return func(n *Navigator) {
		if rng != nil {
			n.rng = rng
		}
	}
}

// WithSeed makes the draws reproducible.
func WithSeed(seed uint64) NavigatorOption {
	return func(n *Navigator) {
		n.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) NavigatorOption {
	return func(n *Navigator) {
		n.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) NavigatorOption {
	return func(n *Navigator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) NavigatorOption {
	return func(n *Navigator) {
		if now != nil {
			n.now = now
		}
	}
}

// NewNavigator creates a navigator bound to provider.
func NewNavigator(provider ports.MenuProvider, opts ...NavigatorOption) *Navigator {
	n := &Navigator{
		provider: provider,
		limits:   domain.DefaultLimits(),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Limits returns the effective limits.
func (n *Navigator) Limits() domain.Limits {
	return n.limits
}

// search is the state of one run. It is discarded when Run returns.
type search struct {
	root     string
	path     domain.Path
	memo     *domain.DeadEndMemo
	budget   domain.Budget
	stats    domain.Stats
	deadEnds []domain.Path
}

// Run searches for a populated leaf starting at the root category named root.
// The provider is expected to be at the category chooser.
//
// A nil error always comes with either a Found or an Exhausted outcome.
// Provider faults and navigation errors are returned as-is and never retried.
// Cancellation of ctx is honoured between attempts only.
func (n *Navigator) Run(ctx context.Context, root string) (domain.Outcome, error) {
	if n.provider == nil {
		return domain.Outcome{}, errors.New("navigator has no menu provider")
	}
	if err := n.limits.Validate(); err != nil {
		return domain.Outcome{}, err
	}
	if root == "" {
		return domain.Outcome{}, errors.New("initial category is required")
	}

	s := &search{memo: domain.NewDeadEndMemo()}
	if err := n.enterCategory(ctx, s, root); err != nil {
		return domain.Outcome{}, err
	}
	n.logger.Info("search started", "root", root, "limits", n.limits.String())

	for {
		if err := ctx.Err(); err != nil {
			return domain.Outcome{}, fmt.Errorf("search canceled after %d attempts: %w", s.budget.TotalDescentAttempts, err)
		}

		found, reason, err := n.attempt(ctx, s)
		if err != nil {
			return domain.Outcome{}, err
		}
		if found != nil {
			return n.finishFound(ctx, s, *found), nil
		}

		n.recordDeadEnd(ctx, s, reason)

		exhausted, err := n.applyPolicy(ctx, s)
		if err != nil {
			return domain.Outcome{}, err
		}
		if exhausted {
			return n.finishExhausted(ctx, s), nil
		}
	}
}

// attempt descends from the current path until it reaches a populated leaf
// (returned) or a dead end (reason returned).
func (n *Navigator) attempt(ctx context.Context, s *search) (*domain.Outcome, string, error) {
	for {
		children, err := n.provider.ListChildren(ctx, s.path)
		if err != nil {
			return nil, "", classify("list_children", err)
		}
		if len(children) == 0 {
			break
		}

		candidates := s.memo.Candidates(s.path, children)
		if len(candidates) == 0 {
			return nil, domain.ReasonAllChildren, nil
		}
		if s.path.Depth() >= n.limits.MaxDepth {
			return nil, domain.ReasonDepthCeiling, nil
		}

		child := candidates[n.rng.IntN(len(candidates))]
		if err := n.descend(ctx, s, child); err != nil {
			return nil, "", err
		}
	}

	// No children: the node is a potential leaf.
	overlay, err := n.provider.HasNoResultsOverlay(ctx, s.path)
	if err != nil {
		return nil, "", classify("has_no_results_overlay", err)
	}
	if overlay {
		if err := n.provider.DismissNoResultsOverlay(ctx, s.path); err != nil {
			return nil, "", classify("dismiss_no_results_overlay", err)
		}
		s.stats.Dismissals++
		n.logger.Debug("no results overlay dismissed", "path", s.path.String())
	}

	populated, err := n.provider.IsLeafWithItems(ctx, s.path)
	if err != nil {
		return nil, "", classify("is_leaf_with_items", err)
	}
	if !populated {
		return nil, domain.ReasonEmptyLeaf, nil
	}

	item, err := n.provider.PickRandomItem(ctx, s.path)
	if err != nil {
		return nil, "", classify("pick_random_item", err)
	}
	found := domain.Found(s.path, item)
	return &found, "", nil
}

func (n *Navigator) descend(ctx context.Context, s *search, child domain.ChildRef) error {
	want := s.path.Child(child.Name)
	next, err := n.provider.DescendInto(ctx, s.path, child)
	if err != nil {
		return classify("descend_into", err)
	}
	if !next.Equal(want) {
		return &domain.NavigationError{Path: next, Reason: fmt.Sprintf("descend into %q landed off the expected path [%s]", child.Name, want)}
	}

	from := s.path
	s.path = next
	s.stats.Descents++
	n.logger.Debug("descend", "root", s.root, "path", s.path.String())
	n.emitMove(ctx, s, domain.EventDescend, from, next, 0)
	return nil
}

func (n *Navigator) recordDeadEnd(ctx context.Context, s *search, reason string) {
	if s.memo.Add(s.path) {
		s.deadEnds = append(s.deadEnds, s.path.Clone())
	}
	s.budget.TotalDescentAttempts++
	s.budget.AttemptsInCurrentCategory++
	s.stats.DeadEnds++

	n.logger.Debug("dead end",
		"root", s.root,
		"path", s.path.String(),
		"reason", reason,
		"attempts", s.budget.TotalDescentAttempts,
		"category_attempts", s.budget.AttemptsInCurrentCategory,
	)
	n.emitDeadEnd(ctx, s, reason)
}

func (n *Navigator) finishFound(ctx context.Context, s *search, outcome domain.Outcome) domain.Outcome {
	// The active category counts as tried even when it succeeds on the first descent.
	outcome.CategoriesTried = s.budget.TotalCategoriesAttempted + 1
	n.complete(s, &outcome)

	n.logger.Info("populated leaf found",
		"path", outcome.Path.String(),
		"item", outcome.Item.Name,
		"attempts", s.budget.TotalDescentAttempts,
	)
	n.emitOutcome(ctx, s, domain.EventFound, outcome)
	return outcome
}

func (n *Navigator) finishExhausted(ctx context.Context, s *search) domain.Outcome {
	outcome := domain.Exhausted(s.budget.CategoriesTried())
	n.complete(s, &outcome)

	n.logger.Info("search exhausted",
		"categories_tried", outcome.CategoriesTried,
		"attempts", s.budget.TotalDescentAttempts,
	)
	n.emitOutcome(ctx, s, domain.EventExhausted, outcome)
	return outcome
}

func (n *Navigator) complete(s *search, outcome *domain.Outcome) {
	outcome.DeadEnds = s.deadEnds
	outcome.Stats = s.stats
	outcome.Stats.DescentAttempts = s.budget.TotalDescentAttempts
	outcome.Stats.CategoriesTried = outcome.CategoriesTried
}

// classify keeps navigation errors and provider faults as they are and turns
// anything else into a provider fault: the navigator cannot tell a broken
// source from an empty one.
func classify(op string, err error) error {
	if errors.Is(err, domain.ErrNavigation) || errors.Is(err, domain.ErrProviderUnavailable) {
		return err
	}
	return domain.Unavailable(op, err)
}
