/*
Package dsl provides a Go DSL for programmatically constructing Canopy category trees.

It allows developers to define category trees using a fluent builder instead of
relying on external YAML or JSON files. This is particularly useful for unit testing
the navigator and for generating large synthetic trees.

Example usage:

	package main

	import (
		"context"

		"github.com/aretw0/canopy"
		"github.com/aretw0/canopy/pkg/dsl"
	)

	func main() {
		b := dsl.New()
		b.Add("Food", "Snacks").Items("Chips", "Nuts")
		b.Add("Food", "Drinks")

		// The resulting tree is a ports.MenuProvider
		tree := b.MustBuild()

		finder, _ := canopy.New(tree)
		outcome, _ := finder.Run(context.Background(), "Food")
		_ = outcome
	}
*/
package dsl
