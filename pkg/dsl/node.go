package dsl

import (
	"fmt"

	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a category node.
type NodeBuilder struct {
	node     *memory.Node
	path     domain.Path
	children []*NodeBuilder
	builder  *Builder
}

// Items populates the node, turning it into a populated leaf.
func (n *NodeBuilder) Items(items ...string) *NodeBuilder {
	n.node.Items = append(n.node.Items, items...)
	return n
}

// NoResults makes the provider show a "no results" overlay when the node is entered.
func (n *NodeBuilder) NoResults() *NodeBuilder {
	n.node.NoResults = true
	return n
}

// Child adds (or returns) a direct child of this node.
func (n *NodeBuilder) Child(name string) *NodeBuilder {
	return n.builder.Add(append(n.path.Clone(), name)...)
}

// Path returns the node's path, root first.
func (n *NodeBuilder) Path() domain.Path {
	return n.path.Clone()
}

func (n *NodeBuilder) compile(errs *[]string) *memory.Node {
	out := &memory.Node{
		Name:      n.node.Name,
		Items:     n.node.Items,
		NoResults: n.node.NoResults,
	}
	if len(n.children) > 0 && len(n.node.Items) > 0 {
		*errs = append(*errs, fmt.Sprintf("node [%s] has both children and items", n.path))
	}
	for _, c := range n.children {
		out.Children = append(out.Children, c.compile(errs))
	}
	return out
}
