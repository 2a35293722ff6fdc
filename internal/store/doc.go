// Package store provides SQLite-backed history of harness runs.
//
// Each run is stored with every classified result and the exceptions
// entries it left unrecognized, so a later run can be compared cell by cell
// against an earlier one.
//
// # Ordering
//
//   - Runs are ordered by seq INTEGER (a logical counter), never by wall time
//   - Results are read ORDER BY scenario_id COLLATE BINARY
//   - Unrecognized entries keep exceptions-file order via ord
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Source digests are computed by harness.Scenario.Digest (SHA-256 with
// domain separation), so an unchanged test file has the same digest across
// runs.
package store
