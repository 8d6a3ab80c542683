package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
)

// Builder manages the tree construction.
// Nodes keep the order in which they were first added.
type Builder struct {
	roots []*NodeBuilder
	errs  []string
}

// New creates a new tree builder.
func New() *Builder {
	return &Builder{}
}

// Add returns the node at path, creating it and any missing ancestors.
// The first segment is the root category.
func (b *Builder) Add(path ...string) *NodeBuilder {
	if len(path) == 0 {
		b.errs = append(b.errs, "empty path")
		return &NodeBuilder{builder: b, node: &memory.Node{}}
	}

	var current *NodeBuilder
	siblings := &b.roots
	for i, name := range path {
		if name == "" {
			b.errs = append(b.errs, fmt.Sprintf("empty name at depth %d in %v", i+1, path))
		}
		var next *NodeBuilder
		for _, nb := range *siblings {
			if nb.node.Name == name {
				next = nb
				break
			}
		}
		if next == nil {
			next = &NodeBuilder{builder: b, node: &memory.Node{Name: name}, path: domain.Path(path[:i+1]).Clone()}
			*siblings = append(*siblings, next)
		}
		current = next
		siblings = &current.children
	}
	return current
}

// Balanced adds a complete tree of the given depth (root included) and
// fanout under root. Children are named n0..n{fanout-1} at every level and
// every leaf starts empty; use Add(...).Items to populate some of them.
func (b *Builder) Balanced(root string, depth, fanout int) *Builder {
	var grow func(path []string)
	grow = func(path []string) {
		b.Add(path...)
		if len(path) >= depth {
			return
		}
		for i := 0; i < fanout; i++ {
			grow(append(append([]string{}, path...), fmt.Sprintf("n%d", i)))
		}
	}
	grow([]string{root})
	return b
}

// Build compiles the tree into an in-memory MenuProvider.
func (b *Builder) Build(opts ...memory.TreeOption) (*memory.Tree, error) {
	errs := append([]string{}, b.errs...)

	roots := make([]*memory.Node, 0, len(b.roots))
	for _, nb := range b.roots {
		roots = append(roots, nb.compile(&errs))
	}
	if len(roots) == 0 {
		errs = append(errs, "tree has no root categories")
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to build tree: %s", strings.Join(errs, "; "))
	}

	return memory.NewTree(roots, opts...), nil
}

// MustBuild is like Build but panics on error. Intended for tests and examples.
func (b *Builder) MustBuild(opts ...memory.TreeOption) *memory.Tree {
	tree, err := b.Build(opts...)
	if err != nil {
		panic(err)
	}
	return tree
}
