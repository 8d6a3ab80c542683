/*
Package ports defines the driven ports (interfaces) for the Canopy navigator.

These interfaces decouple the search algorithm from external implementations,
allowing the navigator to explore a browser menu, an API or an in-memory fixture,
and allowing harnesses to persist run reports in different backends.

# Key Interfaces

  - MenuProvider: Navigation primitives over a lazily revealed category tree.
  - ReportStore: Persists the reports of finished runs.
  - DistributedLocker: Guarantees one run per provider session.
*/
package ports
