// Package store provides persistence backends for learned patterns.
//
// Three implementations are available:
//
//   - FileStore: a JSON file with atomic writes, the default for
//     single-host deployments and shared pattern drops.
//   - MemoryStore: process-local, for tests and ephemeral runs.
//   - SQLiteStore: a WAL-mode SQLite database for deployments that also
//     want queryable pattern history.
//
// All backends implement learner.Store and are safe for concurrent use.
// Load tolerates missing or partially malformed data: malformed entries
// are skipped with a warning rather than failing the whole load.
package store
