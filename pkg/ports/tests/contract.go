package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// MenuFixture describes what the provider under test is expected to expose.
type MenuFixture struct {
	// Populated is a path (root first) ending at a populated leaf.
	Populated domain.Path
	// Empty optionally points at a leaf without items.
	Empty domain.Path
}

// MenuProviderContractTest is a reusable test suite that verifies if an adapter complies with ports.MenuProvider.
// The provider is reset to the category chooser before every sub-test.
func MenuProviderContractTest(t *testing.T, provider ports.MenuProvider, fx MenuFixture) {
	t.Helper()
	ctx := context.Background()

	if len(fx.Populated) < 2 {
		t.Fatalf("fixture Populated path must contain a root and at least one child, got %v", fx.Populated)
	}

	reset := func(t *testing.T) domain.Path {
		t.Helper()
		p, err := provider.ResetToCategoryRoot(ctx)
		if err != nil {
			t.Fatalf("reset failed: %v", err)
		}
		if len(p) != 0 {
			t.Fatalf("reset must return the empty path, got %v", p)
		}
		return p
	}

	walk := func(t *testing.T, target domain.Path) domain.Path {
		t.Helper()
		p := reset(t)
		for _, name := range target {
			children, err := provider.ListChildren(ctx, p)
			if err != nil {
				t.Fatalf("list children at %v: %v", p, err)
			}
			ref, ok := findChild(children, name)
			if !ok {
				t.Fatalf("child %q not listed at %v (got %v)", name, p, children)
			}
			p, err = provider.DescendInto(ctx, p, ref)
			if err != nil {
				t.Fatalf("descend into %q: %v", name, err)
			}
		}
		if !p.Equal(target) {
			t.Fatalf("walk ended at %v, want %v", p, target)
		}
		return p
	}

	// 1. Root categories are listed at the chooser
	t.Run("ListCategories", func(t *testing.T) {
		p := reset(t)
		roots, err := provider.ListChildren(ctx, p)
		if err != nil {
			t.Fatalf("unexpected error listing categories: %v", err)
		}
		if _, ok := findChild(roots, fx.Populated.Root()); !ok {
			t.Errorf("root %q not listed among %v", fx.Populated.Root(), roots)
		}
	})

	// 2. Populated leaf
	t.Run("PopulatedLeaf", func(t *testing.T) {
		p := walk(t, fx.Populated)

		children, err := provider.ListChildren(ctx, p)
		if err != nil {
			t.Fatalf("list children at leaf: %v", err)
		}
		if len(children) != 0 {
			t.Errorf("expected leaf to have no children, got %v", children)
		}

		if err := provider.DismissNoResultsOverlay(ctx, p); err != nil {
			t.Fatalf("dismiss overlay: %v", err)
		}
		ok, err := provider.IsLeafWithItems(ctx, p)
		if err != nil {
			t.Fatalf("is leaf: %v", err)
		}
		if !ok {
			t.Fatalf("expected %v to be a populated leaf", p)
		}

		item, err := provider.PickRandomItem(ctx, p)
		if err != nil {
			t.Fatalf("pick item: %v", err)
		}
		if item.Name == "" {
			t.Error("expected a named item")
		}
	})

	// 3. Empty leaf
	if len(fx.Empty) > 0 {
		t.Run("EmptyLeaf", func(t *testing.T) {
			p := walk(t, fx.Empty)
			if err := provider.DismissNoResultsOverlay(ctx, p); err != nil {
				t.Fatalf("dismiss overlay: %v", err)
			}
			ok, err := provider.IsLeafWithItems(ctx, p)
			if err != nil {
				t.Fatalf("is leaf: %v", err)
			}
			if ok {
				t.Errorf("expected %v to be empty", p)
			}
		})
	}

	// 4. Overlay dismissal is idempotent
	t.Run("DismissIdempotent", func(t *testing.T) {
		p := walk(t, fx.Populated)
		for i := 0; i < 2; i++ {
			if err := provider.DismissNoResultsOverlay(ctx, p); err != nil {
				t.Fatalf("dismiss #%d: %v", i+1, err)
			}
		}
		present, err := provider.HasNoResultsOverlay(ctx, p)
		if err != nil {
			t.Fatalf("has overlay: %v", err)
		}
		if present {
			t.Error("overlay still present after dismissal")
		}
		// Position is unchanged: the leaf can still be queried at the same path.
		if _, err := provider.IsLeafWithItems(ctx, p); err != nil {
			t.Errorf("path changed after dismissal: %v", err)
		}
	})

	// 5. Ascend
	t.Run("Ascend", func(t *testing.T) {
		p := walk(t, fx.Populated)
		up, err := provider.Ascend(ctx, p, 1)
		if err != nil {
			t.Fatalf("ascend: %v", err)
		}
		if !up.Equal(fx.Populated.Parent(1)) {
			t.Errorf("ascend(1) = %v, want %v", up, fx.Populated.Parent(1))
		}
	})

	t.Run("AscendBeyondDepth", func(t *testing.T) {
		p := walk(t, fx.Populated)
		_, err := provider.Ascend(ctx, p, len(p)+1)
		if !errors.Is(err, domain.ErrNavigation) {
			t.Errorf("expected navigation error, got %v", err)
		}
	})

	// 6. Stale child
	t.Run("StaleChild", func(t *testing.T) {
		p := reset(t)
		_, err := provider.DescendInto(ctx, p, domain.ChildRef{Name: "non-existent-category", Ordinal: 999})
		if !errors.Is(err, domain.ErrNavigation) {
			t.Errorf("expected navigation error, got %v", err)
		}
	})
}

func findChild(children []domain.ChildRef, name string) (domain.ChildRef, bool) {
	for _, c := range children {
		if c.Name == name {
			return c, true
		}
	}
	return domain.ChildRef{}, false
}
