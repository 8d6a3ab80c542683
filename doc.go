/*
Package canopy finds a populated leaf in a category menu that can only be
explored one step at a time.

The menu is reached through a ports.MenuProvider: a storefront UI driven by a
browser, an in-memory tree, or anything else that can list children, descend,
ascend and tell whether a leaf has items. Canopy does not know the shape of the
tree in advance. It performs a randomized, budgeted depth-first search,
remembers the paths that led nowhere and gives up on a root category after a
bounded number of attempts.

# Outcomes

A run ends in one of two ways:

  - Found: the path of a populated leaf and one item picked from it.
  - Exhausted: the budgets ran out. This is a normal negative result, not an error.

Provider faults (ErrProviderUnavailable) and mismatches between the provider
and the navigator (ErrNavigation) are returned as errors and never retried.

# Usage

	tree, err := file.LoadTree("menu.yaml")
	if err != nil {
		log.Fatal(err)
	}

	finder, err := canopy.New(tree,
		canopy.WithSeed(42),
		canopy.WithReportStore(memory.NewStore()),
	)
	if err != nil {
		log.Fatal(err)
	}

	report, err := finder.Run(ctx, "Food")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(report.Kind, report.Path)

# Limits

The search is bounded by domain.Limits (defaults in parentheses): maximum depth
(10), total descent attempts (50), attempts per root category (10), root
categories per run (5) and draws when picking a different root (10).
*/
package canopy
