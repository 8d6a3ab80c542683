package memory

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/aretw0/canopy/pkg/domain"
)

// Node is a category in an in-memory tree.
// A node without children is a leaf; it is populated when it has items.
type Node struct {
	Name     string
	Children []*Node
	Items    []string

	// NoResults makes the provider show a "no results" overlay when the
	// node is entered. The overlay must be dismissed before the leaf is read.
	NoResults bool
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Populated reports whether the node is a leaf exposing items.
func (n *Node) Populated() bool {
	return n.IsLeaf() && len(n.Items) > 0
}

func (n *Node) child(name string) (*Node, int) {
	for i, c := range n.Children {
		if c.Name == name {
			return c, i
		}
	}
	return nil, -1
}

// ErrInjectedFault is the cause wrapped by faults injected with FailAfter.
var ErrInjectedFault = errors.New("injected provider fault")

// Tree implements ports.MenuProvider over an in-memory category tree.
// Like a real UI it keeps a cursor: every call must be made at the path the
// cursor is on, otherwise a *domain.NavigationError is returned.
// Safe for concurrent use, although one tree models a single UI session.
type Tree struct {
	mu sync.Mutex

	chooser *Node
	cursor  domain.Path
	overlay bool
	rng     *rand.Rand

	failAfter int
	calls     int
	descents  []domain.Path
}

// TreeOption defines a functional option for configuring the Tree.
type TreeOption func(*Tree)

// WithSeed makes PickRandomItem reproducible.
func WithSeed(seed uint64) TreeOption {
	return func(t *Tree) {
		t.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// FailAfter makes every call after the first n return a provider fault.
func FailAfter(n int) TreeOption {
	return func(t *Tree) {
		t.failAfter = n
	}
}

// NewTree creates a provider exposing roots as the root categories.
// Nodes are shared, not copied, and must not be mutated afterwards.
func NewTree(roots []*Node, opts ...TreeOption) *Tree {
	t := &Tree{
		chooser:   &Node{Children: roots},
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		failAfter: -1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Clone returns a new session over the same nodes, positioned at the chooser.
func (t *Tree) Clone(opts ...TreeOption) *Tree {
	return NewTree(t.chooser.Children, opts...)
}

// Roots returns the names of the root categories.
func (t *Tree) Roots() []string {
	names := make([]string, 0, len(t.chooser.Children))
	for _, r := range t.chooser.Children {
		names = append(names, r.Name)
	}
	return names
}

// Nodes returns the root category nodes.
func (t *Tree) Nodes() []*Node {
	return t.chooser.Children
}

// Lookup returns the node at path, or nil.
func (t *Tree) Lookup(path domain.Path) *Node {
	n := t.chooser
	for _, name := range path {
		n, _ = n.child(name)
		if n == nil {
			return nil
		}
	}
	return n
}

// Calls returns the number of provider calls served.
func (t *Tree) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Descents returns every path entered through DescendInto, in order.
func (t *Tree) Descents() []domain.Path {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Path, len(t.descents))
	copy(out, t.descents)
	return out
}

// Cursor returns the current position.
func (t *Tree) Cursor() domain.Path {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor.Clone()
}

// enter validates the call and returns the node under the cursor.
// Must be called with t.mu held.
func (t *Tree) enter(op string, path domain.Path) (*Node, error) {
	t.calls++
	if t.failAfter >= 0 && t.calls > t.failAfter {
		return nil, domain.Unavailable(op, ErrInjectedFault)
	}
	if !path.Equal(t.cursor) {
		return nil, &domain.NavigationError{Path: path, Reason: fmt.Sprintf("%s called away from cursor [%s]", op, t.cursor)}
	}
	n := t.Lookup(t.cursor)
	if n == nil {
		return nil, &domain.NavigationError{Path: path, Reason: "cursor points at a missing node"}
	}
	return n, nil
}

// ListChildren returns the children of the node at path.
func (t *Tree) ListChildren(ctx context.Context, path domain.Path) ([]domain.ChildRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.enter("list_children", path)
	if err != nil {
		return nil, err
	}
	refs := make([]domain.ChildRef, len(n.Children))
	for i, c := range n.Children {
		refs[i] = domain.ChildRef{Name: c.Name, Ordinal: i}
	}
	return refs, nil
}

// IsLeafWithItems reports whether the node at path is a populated leaf.
// While an overlay is shown the leaf reads as empty.
func (t *Tree) IsLeafWithItems(ctx context.Context, path domain.Path) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.enter("is_leaf_with_items", path)
	if err != nil {
		return false, err
	}
	return !t.overlay && n.Populated(), nil
}

// HasNoResultsOverlay reports whether the overlay is shown.
func (t *Tree) HasNoResultsOverlay(ctx context.Context, path domain.Path) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.enter("has_no_results_overlay", path); err != nil {
		return false, err
	}
	return t.overlay, nil
}

// DismissNoResultsOverlay hides the overlay. It is a no-op when none is shown.
func (t *Tree) DismissNoResultsOverlay(ctx context.Context, path domain.Path) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.enter("dismiss_no_results_overlay", path); err != nil {
		return err
	}
	t.overlay = false
	return nil
}

// DescendInto moves the cursor into child.
func (t *Tree) DescendInto(ctx context.Context, path domain.Path, child domain.ChildRef) (domain.Path, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.enter("descend_into", path)
	if err != nil {
		return nil, err
	}
	next, idx := n.child(child.Name)
	if next == nil {
		return nil, &domain.NavigationError{Path: path, Reason: fmt.Sprintf("stale child reference %q", child.Name)}
	}
	if child.Ordinal != idx {
		return nil, &domain.NavigationError{Path: path, Reason: fmt.Sprintf("child %q moved from ordinal %d to %d", child.Name, child.Ordinal, idx)}
	}

	t.cursor = t.cursor.Child(next.Name)
	t.overlay = next.NoResults
	t.descents = append(t.descents, t.cursor.Clone())
	return t.cursor.Clone(), nil
}

// Ascend moves the cursor levels steps up.
func (t *Tree) Ascend(ctx context.Context, path domain.Path, levels int) (domain.Path, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.enter("ascend", path); err != nil {
		return nil, err
	}
	if levels < 0 || levels > len(t.cursor) {
		return nil, &domain.NavigationError{Path: path, Reason: fmt.Sprintf("cannot ascend %d levels from depth %d", levels, len(t.cursor))}
	}
	t.cursor = t.cursor.Parent(levels)
	t.overlay = false
	return t.cursor.Clone(), nil
}

// ResetToCategoryRoot moves the cursor back to the category chooser.
func (t *Tree) ResetToCategoryRoot(ctx context.Context) (domain.Path, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.calls++
	if t.failAfter >= 0 && t.calls > t.failAfter {
		return nil, domain.Unavailable("reset_to_category_root", ErrInjectedFault)
	}
	t.cursor = domain.Path{}
	t.overlay = false
	return domain.Path{}, nil
}

// PickRandomItem returns a uniformly chosen item of the leaf at path.
func (t *Tree) PickRandomItem(ctx context.Context, path domain.Path) (domain.ItemRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.enter("pick_random_item", path)
	if err != nil {
		return domain.ItemRef{}, err
	}
	if t.overlay || !n.Populated() {
		return domain.ItemRef{}, &domain.NavigationError{Path: path, Reason: "not a populated leaf"}
	}
	i := t.rng.IntN(len(n.Items))
	return domain.ItemRef{Name: n.Items[i], Ordinal: i}, nil
}
