// Package store provides a SQLite-backed cache of operator expansions.
//
// Each row of expansions is keyed by ir.ExpansionKey, which covers the
// canonical declaration, the operator descriptor and the engine and IR
// versions. A hit therefore always yields the same fragment a fresh
// expansion would produce.
//
// # Patterns
//
// Idempotent writes
//   - INSERT ... ON CONFLICT DO NOTHING everywhere
//   - Two runs racing on the same key keep the first row
//
// Logical time
//   - Runs and expansions carry seq INTEGER from a logical clock, never timestamps
//   - Runs are identified by UUIDv7 ids
//
// Deterministic reads
//   - All list queries use ORDER BY seq ASC, <id> ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
