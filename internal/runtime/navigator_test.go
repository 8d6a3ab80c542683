package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/canopy/internal/runtime"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snacksTree() *memory.Tree {
	b := dsl.New()
	b.Add("Food", "Snacks").Items("Chips", "Nuts", "Pretzels")
	b.Add("Food", "Drinks")
	return b.MustBuild(memory.WithSeed(7))
}

func TestNavigator_FindsPopulatedSibling(t *testing.T) {
	// Scenario: "Snacks" is populated, "Drinks" is empty. Whatever is drawn
	// first, the run ends at Snacks; if Drinks came first it is marked dead
	// and Snacks must be the very next descent.
	sawDrinksFirst, sawSnacksFirst := false, false

	for seed := uint64(0); seed < 64; seed++ {
		tree := snacksTree()
		nav := runtime.NewNavigator(tree, runtime.WithSeed(seed))

		outcome, err := nav.Run(context.Background(), "Food")
		require.NoError(t, err, "seed %d", seed)
		require.True(t, outcome.IsFound(), "seed %d", seed)
		assert.Equal(t, domain.Path{"Food", "Snacks"}, outcome.Path)
		require.NotNil(t, outcome.Item)
		assert.Contains(t, []string{"Chips", "Nuts", "Pretzels"}, outcome.Item.Name)
		assert.Equal(t, 1, outcome.CategoriesTried)

		descents := tree.Descents()
		switch len(descents) {
		case 2:
			sawSnacksFirst = true
			assert.Equal(t, domain.Path{"Food", "Snacks"}, descents[1])
			assert.Empty(t, outcome.DeadEnds)
		case 3:
			sawDrinksFirst = true
			assert.Equal(t, domain.Path{"Food", "Drinks"}, descents[1])
			assert.Equal(t, domain.Path{"Food", "Snacks"}, descents[2])
			assert.Equal(t, []domain.Path{{"Food", "Drinks"}}, outcome.DeadEnds)
			assert.Equal(t, 1, outcome.Stats.Backtracks)
		default:
			t.Fatalf("seed %d: unexpected descents %v", seed, descents)
		}
	}

	assert.True(t, sawSnacksFirst, "expected some seed to draw Snacks first")
	assert.True(t, sawDrinksFirst, "expected some seed to draw Drinks first")
}

func TestNavigator_ExhaustsAcrossCategories(t *testing.T) {
	// Scenario: every leaf under every category is empty.
	b := dsl.New()
	for _, root := range []string{"A", "B", "C", "D", "E", "F"} {
		b.Balanced(root, 3, 2)
	}

	for seed := uint64(0); seed < 32; seed++ {
		tree := b.MustBuild()
		nav := runtime.NewNavigator(tree, runtime.WithSeed(seed))

		outcome, err := nav.Run(context.Background(), "A")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeExhausted, outcome.Kind)
		assert.Equal(t, 5, outcome.CategoriesTried)
		assert.Nil(t, outcome.Item)
		assert.Equal(t, 4, outcome.Stats.Switches)
		assert.LessOrEqual(t, outcome.Stats.DescentAttempts, nav.Limits().MaxDescentAttempts)
	}
}

func TestNavigator_ExhaustsOnDescentBudget(t *testing.T) {
	// Large empty categories: the per-category budget is what moves the run
	// along, and the 50th dead end coincides with the fifth category.
	b := dsl.New()
	for _, root := range []string{"A", "B", "C", "D", "E", "F"} {
		b.Balanced(root, 5, 4)
	}
	tree := b.MustBuild()
	nav := runtime.NewNavigator(tree, runtime.WithSeed(3))

	outcome, err := nav.Run(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeExhausted, outcome.Kind)
	assert.Equal(t, 50, outcome.Stats.DescentAttempts)
	assert.Equal(t, 5, outcome.CategoriesTried)
}

func TestNavigator_DeepSinglePopulatedLeaf(t *testing.T) {
	// Scenario: depth-5 binary tree with exactly one populated leaf. The
	// memo guarantees at most 26 dead ends before the leaf, well within budget.
	target := domain.Path{"Root", "n1", "n0", "n1", "n1"}
	b := dsl.New().Balanced("Root", 5, 2)
	b.Add(target...).Items("needle")

	for seed := uint64(0); seed < 200; seed++ {
		tree := b.MustBuild()
		nav := runtime.NewNavigator(tree, runtime.WithSeed(seed))

		outcome, err := nav.Run(context.Background(), "Root")
		require.NoError(t, err)
		require.True(t, outcome.IsFound(), "seed %d exhausted after %d attempts", seed, outcome.Stats.DescentAttempts)
		assert.Equal(t, target, outcome.Path)
		assert.Equal(t, "needle", outcome.Item.Name)
		assert.LessOrEqual(t, outcome.Stats.DeadEnds, 26)
	}
}

func TestNavigator_DismissesOverlay(t *testing.T) {
	b := dsl.New()
	b.Add("Food", "Frozen").NoResults().Items("Ice")
	tree := b.MustBuild()

	outcome, err := runtime.NewNavigator(tree, runtime.WithSeed(1)).Run(context.Background(), "Food")
	require.NoError(t, err)
	require.True(t, outcome.IsFound())
	assert.Equal(t, domain.Path{"Food", "Frozen"}, outcome.Path)
	assert.Equal(t, 1, outcome.Stats.Dismissals)
}

func TestNavigator_ProviderUnavailableIsHardStop(t *testing.T) {
	b := dsl.New().Balanced("Root", 4, 2)
	tree := b.MustBuild(memory.FailAfter(6))

	outcome, err := runtime.NewNavigator(tree, runtime.WithSeed(1)).Run(context.Background(), "Root")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.ErrorIs(t, err, memory.ErrInjectedFault)
	assert.Empty(t, outcome.Kind, "a fault is not a search outcome")
	assert.Equal(t, 7, tree.Calls(), "no retry after the fault")
}

func TestNavigator_UnknownProviderErrorIsClassifiedAsFault(t *testing.T) {
	cause := errors.New("renderer crashed")
	provider := &faultyLeaf{Tree: snacksTree(), err: cause}

	_, err := runtime.NewNavigator(provider, runtime.WithSeed(1)).Run(context.Background(), "Food")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.ErrorIs(t, err, cause)

	var pu *domain.ProviderUnavailableError
	require.True(t, errors.As(err, &pu))
	assert.Equal(t, "is_leaf_with_items", pu.Op)
}

func TestNavigator_NavigationErrors(t *testing.T) {
	t.Run("Unlisted initial category", func(t *testing.T) {
		_, err := runtime.NewNavigator(snacksTree()).Run(context.Background(), "Garden")
		assert.ErrorIs(t, err, domain.ErrNavigation)
	})

	t.Run("Provider lands off path", func(t *testing.T) {
		provider := &wanderingTree{Tree: snacksTree()}
		_, err := runtime.NewNavigator(provider, runtime.WithSeed(1)).Run(context.Background(), "Food")
		assert.ErrorIs(t, err, domain.ErrNavigation)
		assert.NotErrorIs(t, err, domain.ErrProviderUnavailable)
	})
}

func TestNavigator_RejectsInvalidInput(t *testing.T) {
	nav := runtime.NewNavigator(snacksTree(), runtime.WithLimits(domain.Limits{MaxDepth: -1}))
	_, err := nav.Run(context.Background(), "Food")
	assert.ErrorIs(t, err, domain.ErrInvalidLimits)

	_, err = runtime.NewNavigator(snacksTree()).Run(context.Background(), "")
	assert.Error(t, err)

	_, err = runtime.NewNavigator(nil).Run(context.Background(), "Food")
	assert.Error(t, err)
}

func TestNavigator_CancellationBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deadEnds := 0
	hooks := domain.LifecycleHooks{
		OnDeadEnd: func(ctx context.Context, e *domain.DeadEndEvent) {
			deadEnds++
			cancel()
		},
	}

	tree := dsl.New().Balanced("Root", 4, 3).MustBuild()
	_, err := runtime.NewNavigator(tree, runtime.WithSeed(2), runtime.WithLifecycleHooks(hooks)).Run(ctx, "Root")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, deadEnds, "the attempt in flight completes, the next one never starts")
}

func TestNavigator_LifecycleHooks(t *testing.T) {
	var descended, backtracked []domain.Path
	var deadEnds []string
	var found *domain.Outcome

	hooks := domain.LifecycleHooks{
		OnDescend: func(ctx context.Context, e *domain.MoveEvent) {
			descended = append(descended, e.To)
		},
		OnBacktrack: func(ctx context.Context, e *domain.MoveEvent) {
			backtracked = append(backtracked, e.To)
		},
		OnDeadEnd: func(ctx context.Context, e *domain.DeadEndEvent) {
			deadEnds = append(deadEnds, e.Reason)
		},
		OnFound: func(ctx context.Context, e *domain.OutcomeEvent) {
			o := e.Outcome
			found = &o
		},
	}

	outcome, err := runtime.NewNavigator(snacksTree(), runtime.WithSeed(5), runtime.WithLifecycleHooks(hooks)).
		Run(context.Background(), "Food")
	require.NoError(t, err)

	require.NotNil(t, found)
	assert.Equal(t, outcome.Path, found.Path)
	assert.Equal(t, domain.Path{"Food", "Snacks"}, descended[len(descended)-1])
	assert.Len(t, backtracked, len(deadEnds))
	for _, reason := range deadEnds {
		assert.Equal(t, domain.ReasonEmptyLeaf, reason)
	}
}

// faultyLeaf fails IsLeafWithItems with a plain error.
type faultyLeaf struct {
	*memory.Tree
	err error
}

func (f *faultyLeaf) IsLeafWithItems(ctx context.Context, path domain.Path) (bool, error) {
	return false, f.err
}

// wanderingTree reports a path that differs from the one it moved to.
type wanderingTree struct {
	*memory.Tree
}

func (w *wanderingTree) DescendInto(ctx context.Context, path domain.Path, child domain.ChildRef) (domain.Path, error) {
	next, err := w.Tree.DescendInto(ctx, path, child)
	if err != nil || len(next) < 2 {
		return next, err
	}
	return next.Child("ghost"), nil
}
