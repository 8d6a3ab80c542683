package browser_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/canopy"
	"github.com/aretw0/canopy/pkg/adapters/browser"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/dsl"
	"github.com/aretw0/canopy/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chooserURL = "https://shop.test/categories"

var selectors = browser.Selectors{
	Children:  ".category",
	Items:     ".item",
	NoResults: ".no-results",
	Dismiss:   ".no-results button",
}

// fakePage renders an in-memory tree as a page with history.
type fakePage struct {
	chooser *memory.Node
	history []*memory.Node
	overlay bool
	loaded  bool

	fail   error
	clicks int
	closed bool
}

func newFakePage(tree *memory.Tree) *fakePage {
	return &fakePage{chooser: &memory.Node{Children: tree.Nodes()}}
}

func (f *fakePage) current() *memory.Node {
	return f.history[len(f.history)-1]
}

func (f *fakePage) Goto(ctx context.Context, url string) error {
	if f.fail != nil {
		return f.fail
	}
	if url != chooserURL {
		return fmt.Errorf("404: %s", url)
	}
	f.history = append(f.history, f.chooser)
	f.overlay = false
	f.loaded = true
	return nil
}

func (f *fakePage) Texts(ctx context.Context, selector string) ([]string, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	if !f.loaded {
		return nil, errors.New("about:blank")
	}
	n := f.current()
	switch selector {
	case selectors.Children:
		var names []string
		for _, c := range n.Children {
			names = append(names, "  "+c.Name+"\n")
		}
		return names, nil
	case selectors.Items:
		if f.overlay {
			return nil, nil
		}
		return n.Items, nil
	}
	return nil, fmt.Errorf("unknown selector %q", selector)
}

func (f *fakePage) Click(ctx context.Context, selector string, nth int) error {
	if f.fail != nil {
		return f.fail
	}
	f.clicks++
	switch selector {
	case selectors.Children:
		n := f.current()
		if nth >= len(n.Children) {
			return fmt.Errorf("no element #%d", nth)
		}
		next := n.Children[nth]
		f.history = append(f.history, next)
		f.overlay = next.NoResults
		return nil
	case selectors.Dismiss:
		if !f.overlay {
			return errors.New("dismiss button not visible")
		}
		f.overlay = false
		return nil
	}
	return fmt.Errorf("unknown selector %q", selector)
}

func (f *fakePage) Visible(ctx context.Context, selector string) (bool, error) {
	if f.fail != nil {
		return false, f.fail
	}
	return selector == selectors.NoResults && f.overlay, nil
}

func (f *fakePage) Back(ctx context.Context) error {
	if f.fail != nil {
		return f.fail
	}
	if len(f.history) < 2 {
		return errors.New("no history")
	}
	f.history = f.history[:len(f.history)-1]
	f.overlay = false
	return nil
}

func (f *fakePage) Close() error {
	f.closed = true
	return nil
}

func foodTree() *memory.Tree {
	b := dsl.New()
	b.Add("Food", "Snacks").Items("Chips", "Nuts")
	b.Add("Food", "Drinks")
	b.Add("Food", "Frozen").NoResults().Items("Ice")
	b.Add("Toys", "Puzzles").Items("Jigsaw")
	return b.MustBuild()
}

func newProvider(t *testing.T, page browser.Driver, opts ...browser.Option) *browser.Provider {
	t.Helper()
	p, err := browser.NewProvider(page, chooserURL, selectors, opts...)
	require.NoError(t, err)
	return p
}

func TestProvider_Contract(t *testing.T) {
	p := newProvider(t, newFakePage(foodTree()), browser.WithSeed(1))
	tests.MenuProviderContractTest(t, p, tests.MenuFixture{
		Populated: domain.Path{"Food", "Snacks"},
		Empty:     domain.Path{"Food", "Drinks"},
	})
}

func TestProvider_Overlay(t *testing.T) {
	page := newFakePage(foodTree())
	p := newProvider(t, page)
	ctx := context.Background()

	path, err := p.ResetToCategoryRoot(ctx)
	require.NoError(t, err)
	path, err = p.DescendInto(ctx, path, domain.ChildRef{Name: "Food", Ordinal: 0})
	require.NoError(t, err)
	path, err = p.DescendInto(ctx, path, domain.ChildRef{Name: "Frozen", Ordinal: 2})
	require.NoError(t, err)

	shown, err := p.HasNoResultsOverlay(ctx, path)
	require.NoError(t, err)
	assert.True(t, shown)

	ok, err := p.IsLeafWithItems(ctx, path)
	require.NoError(t, err)
	assert.False(t, ok, "items are hidden behind the overlay")

	require.NoError(t, p.DismissNoResultsOverlay(ctx, path))
	require.NoError(t, p.DismissNoResultsOverlay(ctx, path))

	ok, err = p.IsLeafWithItems(ctx, path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProvider_PositionChecks(t *testing.T) {
	p := newProvider(t, newFakePage(foodTree()))
	ctx := context.Background()

	_, err := p.ResetToCategoryRoot(ctx)
	require.NoError(t, err)

	_, err = p.ListChildren(ctx, domain.Path{"Food"})
	assert.ErrorIs(t, err, domain.ErrNavigation)

	_, err = p.DescendInto(ctx, domain.Path{}, domain.ChildRef{Name: "Toys", Ordinal: 0})
	assert.ErrorIs(t, err, domain.ErrNavigation, "ordinal no longer matches the name")
}

func TestProvider_BlankEntriesKeepPagePosition(t *testing.T) {
	tree := memory.NewTree([]*memory.Node{{
		Name: "Food",
		Children: []*memory.Node{
			{Name: ""},
			{Name: "Snacks", Items: []string{"", "  ", "Chips"}},
		},
	}})
	p := newProvider(t, newFakePage(tree), browser.WithSeed(3))
	ctx := context.Background()

	path, err := p.ResetToCategoryRoot(ctx)
	require.NoError(t, err)
	path, err = p.DescendInto(ctx, path, domain.ChildRef{Name: "Food", Ordinal: 0})
	require.NoError(t, err)

	children, err := p.ListChildren(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []domain.ChildRef{{Name: "Snacks", Ordinal: 1}}, children)

	_, err = p.DescendInto(ctx, path, domain.ChildRef{Name: "", Ordinal: 0})
	assert.ErrorIs(t, err, domain.ErrNavigation)

	path, err = p.DescendInto(ctx, path, children[0])
	require.NoError(t, err)
	assert.Equal(t, domain.Path{"Food", "Snacks"}, path)

	item, err := p.PickRandomItem(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemRef{Name: "Chips", Ordinal: 2}, item)
}

func TestProvider_DriverFaults(t *testing.T) {
	page := newFakePage(foodTree())
	p := newProvider(t, page)
	ctx := context.Background()

	path, err := p.ResetToCategoryRoot(ctx)
	require.NoError(t, err)
	path, err = p.DescendInto(ctx, path, domain.ChildRef{Name: "Food", Ordinal: 0})
	require.NoError(t, err)

	cause := errors.New("target closed")
	page.fail = cause

	_, err = p.ListChildren(ctx, path)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
	assert.ErrorIs(t, err, cause)

	_, err = p.Ascend(ctx, path, 1)
	var pu *domain.ProviderUnavailableError
	require.ErrorAs(t, err, &pu)
	assert.Equal(t, "ascend", pu.Op)

	page.fail = nil
	_, err = p.ListChildren(ctx, domain.Path{})
	assert.ErrorIs(t, err, domain.ErrNavigation, "position is unknown until the next reset")

	_, err = p.ResetToCategoryRoot(ctx)
	require.NoError(t, err)
	_, err = p.ListChildren(ctx, domain.Path{})
	assert.NoError(t, err)
}

func TestProvider_UpControl(t *testing.T) {
	page := &upPage{fakePage: newFakePage(foodTree())}
	s := selectors
	s.Up = ".breadcrumb-up"
	p, err := browser.NewProvider(page, chooserURL, s)
	require.NoError(t, err)
	ctx := context.Background()

	path, err := p.ResetToCategoryRoot(ctx)
	require.NoError(t, err)
	path, err = p.DescendInto(ctx, path, domain.ChildRef{Name: "Food", Ordinal: 0})
	require.NoError(t, err)
	path, err = p.DescendInto(ctx, path, domain.ChildRef{Name: "Drinks", Ordinal: 1})
	require.NoError(t, err)

	up, err := p.Ascend(ctx, path, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.Path{}, up)
	assert.Equal(t, 2, page.ups)
}

// upPage serves the in-page "up" control instead of history.
type upPage struct {
	*fakePage
	ups int
}

func (u *upPage) Click(ctx context.Context, selector string, nth int) error {
	if selector == ".breadcrumb-up" {
		u.ups++
		return u.fakePage.Back(ctx)
	}
	return u.fakePage.Click(ctx, selector, nth)
}

func (u *upPage) Back(ctx context.Context) error {
	return errors.New("history is not used when an up control exists")
}

func TestProvider_FinderEndToEnd(t *testing.T) {
	page := newFakePage(foodTree())
	p := newProvider(t, page, browser.WithSeed(3))

	finder, err := canopy.New(p, canopy.WithSeed(3))
	require.NoError(t, err)

	for _, root := range []string{"Food", "Toys"} {
		report, err := finder.Run(context.Background(), root)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeFound, report.Kind, "root %s", root)
	}

	require.NoError(t, p.Close())
	assert.True(t, page.closed)
}

func TestNewProvider_Rejects(t *testing.T) {
	page := newFakePage(foodTree())

	_, err := browser.NewProvider(nil, chooserURL, selectors)
	assert.Error(t, err)
	_, err = browser.NewProvider(page, " ", selectors)
	assert.Error(t, err)
	_, err = browser.NewProvider(page, chooserURL, browser.Selectors{Children: ".c"})
	assert.ErrorContains(t, err, "items selector is required")
	_, err = browser.NewProvider(page, chooserURL, browser.Selectors{Children: ".c", Items: ".i", Dismiss: ".x"})
	assert.ErrorContains(t, err, "dismiss selector requires")
}
