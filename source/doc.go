// Package source defines the persistence collaborator contract the
// coordinator consumes, plus three interchangeable implementations:
//
//   - BunSource: live queries against a bun database (sqlite, postgres).
//   - RepositorySource: adapter over an existing go-repository-bun
//     repository, for applications that already manage entities that way.
//   - FallbackSource: seeded in-memory demo data with simulated latency,
//     used when no backend is reachable and by tests.
//
// Which variant backs a coordinator is decided once at construction; the
// coordinator's failure-handling contract is identical regardless of the
// active source. All implementations translate the query package's canonical
// Descriptor, so filter and sort semantics match across variants.
package source
