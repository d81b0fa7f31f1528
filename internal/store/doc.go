// Package store persists run logs in SQLite.
//
// Each run is written once, after it finishes, in a single transaction:
//   - runs: one row per run (outcome, counts, script hash and text)
//   - log_entries: the script-level log, keyed by (run_id, seq)
//   - variables: the final variable bindings, in insertion order
//
// Log entries are ordered by their logical sequence number, never by wall
// time. Run IDs are UUIDv7, so ordering runs by id orders them by start.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
