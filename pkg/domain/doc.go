/*
Package domain contains the core types of the Canopy leaf search.

It defines the navigation path, the dead-end memo, the search limits and
counters, and the outcomes of a run. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture
principles.

# Key Entities

  - Path: The ordered node names from the active root category to the current position.
  - PathKey: The composite (root, segments) identity used to memoize dead ends.
  - DeadEndMemo: The append-only set of paths proven to lead nowhere.
  - Limits / Budget: The bounds and monotonic counters that guarantee termination.
  - Outcome: Found(path, item) or Exhausted(categoriesTried).
*/
package domain
