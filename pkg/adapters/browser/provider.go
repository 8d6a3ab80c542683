package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/canopy/pkg/domain"
)

// Provider implements ports.MenuProvider by clicking through a web page.
// It tracks the path it has navigated to; calls made at any other path are
// rejected with a *domain.NavigationError, like the in-memory tree.
type Provider struct {
	driver    Driver
	url       string
	selectors Selectors
	logger    *slog.Logger

	mu     sync.Mutex
	cursor domain.Path
	lost   bool
	rng    *rand.Rand
}

// Option defines a functional option for configuring the Provider.
type Option func(*Provider)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithSeed makes PickRandomItem reproducible.
func WithSeed(seed uint64) Option {
	return func(p *Provider) {
		p.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// NewProvider creates a provider whose category chooser lives at url.
func NewProvider(driver Driver, url string, selectors Selectors, opts ...Option) (*Provider, error) {
	if driver == nil {
		return nil, errors.New("browser driver is required")
	}
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("chooser url is required")
	}
	if err := selectors.Validate(); err != nil {
		return nil, fmt.Errorf("invalid selectors: %w", err)
	}

	p := &Provider{
		driver:    driver,
		url:       url,
		selectors: selectors,
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p, nil
}

// Close releases the underlying driver.
func (p *Provider) Close() error {
	return p.driver.Close()
}

func (p *Provider) at(op string, path domain.Path) error {
	if p.lost {
		return &domain.NavigationError{Path: path, Reason: op + " called before the page position was restored"}
	}
	if !path.Equal(p.cursor) {
		return &domain.NavigationError{Path: path, Reason: fmt.Sprintf("%s called away from page position [%s]", op, p.cursor)}
	}
	return nil
}

// children lists the named categories on the page. Blank entries are
// skipped; Ordinal keeps the element's position among all matches, which is
// what Click expects.
func (p *Provider) children(ctx context.Context) ([]domain.ChildRef, error) {
	texts, err := p.driver.Texts(ctx, p.selectors.Children)
	if err != nil {
		return nil, domain.Unavailable("list_children", err)
	}
	refs := make([]domain.ChildRef, 0, len(texts))
	for i, text := range texts {
		if name := strings.TrimSpace(text); name != "" {
			refs = append(refs, domain.ChildRef{Name: name, Ordinal: i})
		}
	}
	return refs, nil
}

func (p *Provider) items(ctx context.Context, op string) ([]domain.ItemRef, error) {
	texts, err := p.driver.Texts(ctx, p.selectors.Items)
	if err != nil {
		return nil, domain.Unavailable(op, err)
	}
	items := make([]domain.ItemRef, 0, len(texts))
	for i, text := range texts {
		if name := strings.TrimSpace(text); name != "" {
			items = append(items, domain.ItemRef{Name: name, Ordinal: i})
		}
	}
	return items, nil
}

// ListChildren returns the child categories shown on the page.
func (p *Provider) ListChildren(ctx context.Context, path domain.Path) ([]domain.ChildRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.at("list_children", path); err != nil {
		return nil, err
	}
	return p.children(ctx)
}

// IsLeafWithItems reports whether the page shows items and no further categories.
func (p *Provider) IsLeafWithItems(ctx context.Context, path domain.Path) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.at("is_leaf_with_items", path); err != nil {
		return false, err
	}
	children, err := p.children(ctx)
	if err != nil {
		return false, err
	}
	if len(children) > 0 {
		return false, nil
	}
	items, err := p.items(ctx, "is_leaf_with_items")
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}

// HasNoResultsOverlay reports whether the overlay is visible.
func (p *Provider) HasNoResultsOverlay(ctx context.Context, path domain.Path) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.at("has_no_results_overlay", path); err != nil {
		return false, err
	}
	return p.overlay(ctx, "has_no_results_overlay")
}

func (p *Provider) overlay(ctx context.Context, op string) (bool, error) {
	if p.selectors.NoResults == "" {
		return false, nil
	}
	visible, err := p.driver.Visible(ctx, p.selectors.NoResults)
	if err != nil {
		return false, domain.Unavailable(op, err)
	}
	return visible, nil
}

// DismissNoResultsOverlay closes the overlay. It is a no-op when none is shown.
func (p *Provider) DismissNoResultsOverlay(ctx context.Context, path domain.Path) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.at("dismiss_no_results_overlay", path); err != nil {
		return err
	}
	visible, err := p.overlay(ctx, "dismiss_no_results_overlay")
	if err != nil || !visible || p.selectors.Dismiss == "" {
		return err
	}
	if err := p.driver.Click(ctx, p.selectors.Dismiss, 0); err != nil {
		return domain.Unavailable("dismiss_no_results_overlay", err)
	}
	p.logger.Debug("dismissed no-results overlay", "path", path.String())
	return nil
}

// DescendInto clicks child. The child is looked up again first so that a
// reference taken before the page changed is reported as stale.
func (p *Provider) DescendInto(ctx context.Context, path domain.Path, child domain.ChildRef) (domain.Path, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.at("descend_into", path); err != nil {
		return nil, err
	}
	children, err := p.children(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(children, child) {
		return nil, &domain.NavigationError{Path: path, Reason: fmt.Sprintf("stale child reference %q at ordinal %d", child.Name, child.Ordinal)}
	}
	if err := p.driver.Click(ctx, p.selectors.Children, child.Ordinal); err != nil {
		return nil, domain.Unavailable("descend_into", err)
	}

	p.cursor = p.cursor.Child(child.Name)
	return p.cursor.Clone(), nil
}

// Ascend goes back levels steps, using the Up control when configured.
func (p *Provider) Ascend(ctx context.Context, path domain.Path, levels int) (domain.Path, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.at("ascend", path); err != nil {
		return nil, err
	}
	if levels < 0 || levels > len(p.cursor) {
		return nil, &domain.NavigationError{Path: path, Reason: fmt.Sprintf("cannot ascend %d levels from depth %d", levels, len(p.cursor))}
	}
	for i := 0; i < levels; i++ {
		var err error
		if p.selectors.Up != "" {
			err = p.driver.Click(ctx, p.selectors.Up, 0)
		} else {
			err = p.driver.Back(ctx)
		}
		if err != nil {
			// The page position is unknown now; only a reset recovers it.
			p.lost = true
			return nil, domain.Unavailable("ascend", err)
		}
	}
	p.cursor = p.cursor.Parent(levels)
	return p.cursor.Clone(), nil
}

// ResetToCategoryRoot loads the chooser page.
func (p *Provider) ResetToCategoryRoot(ctx context.Context) (domain.Path, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.driver.Goto(ctx, p.url); err != nil {
		return nil, domain.Unavailable("reset_to_category_root", err)
	}
	p.cursor = domain.Path{}
	p.lost = false
	return domain.Path{}, nil
}

// PickRandomItem returns a uniformly chosen item of the leaf at path.
func (p *Provider) PickRandomItem(ctx context.Context, path domain.Path) (domain.ItemRef, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.at("pick_random_item", path); err != nil {
		return domain.ItemRef{}, err
	}
	items, err := p.items(ctx, "pick_random_item")
	if err != nil {
		return domain.ItemRef{}, err
	}
	if len(items) == 0 {
		return domain.ItemRef{}, &domain.NavigationError{Path: path, Reason: "not a populated leaf"}
	}
	return items[p.rng.IntN(len(items))], nil
}
