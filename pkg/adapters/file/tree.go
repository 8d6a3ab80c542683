package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/canopy/pkg/adapters/memory"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk shape of a category tree. JSON files are accepted
// as well, since YAML is a superset of JSON.
//
//	categories:
//	  - name: Food
//	    children:
//	      - name: Snacks
//	        items: [Chips, Nuts]
//	      - name: Frozen
//	        no_results: true
type Document struct {
	Categories []Category `yaml:"categories" json:"categories"`
}

// Category is a node of the tree. A category without children is a leaf.
type Category struct {
	Name      string     `yaml:"name" json:"name"`
	Items     []string   `yaml:"items,omitempty" json:"items,omitempty"`
	NoResults bool       `yaml:"no_results,omitempty" json:"no_results,omitempty"`
	Children  []Category `yaml:"children,omitempty" json:"children,omitempty"`
}

// ReadDocument reads and strictly decodes a tree file. It does not validate it.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree file: %w", err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ParseDocument decodes a YAML or JSON tree. Unknown fields are rejected.
func ParseDocument(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("failed to parse tree: %w", err)
	}
	return &doc, nil
}

// LoadTree reads, validates and compiles a tree file into an in-memory provider.
func LoadTree(path string, opts ...memory.TreeOption) (*memory.Tree, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate().Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc.Tree(opts...), nil
}

// Tree compiles the document. Call Validate first: Tree does not check it.
func (d *Document) Tree(opts ...memory.TreeOption) *memory.Tree {
	roots := make([]*memory.Node, len(d.Categories))
	for i, c := range d.Categories {
		roots[i] = c.node()
	}
	return memory.NewTree(roots, opts...)
}

func (c Category) node() *memory.Node {
	n := &memory.Node{
		Name:      c.Name,
		Items:     append([]string(nil), c.Items...),
		NoResults: c.NoResults,
	}
	for _, child := range c.Children {
		n.Children = append(n.Children, child.node())
	}
	return n
}

// FromNodes converts an in-memory tree back into its document form.
func FromNodes(roots []*memory.Node) *Document {
	doc := &Document{Categories: make([]Category, len(roots))}
	for i, r := range roots {
		doc.Categories[i] = fromNode(r)
	}
	return doc
}

func fromNode(n *memory.Node) Category {
	c := Category{
		Name:      n.Name,
		Items:     append([]string(nil), n.Items...),
		NoResults: n.NoResults,
	}
	for _, child := range n.Children {
		c.Children = append(c.Children, fromNode(child))
	}
	return c
}

// Encode writes the document as YAML.
func (d *Document) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}
