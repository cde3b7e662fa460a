// Package ledger persists the photo migration state in SQLite.
//
// The photos table is a permanent per-asset ledger: rows are created when an
// asset is discovered as needing migration and only ever transition between
// pending, claimed, done, and error. A claim is a lease — claimed rows whose
// claimed_at is older than the configured lease timeout are eligible for
// reclaiming by any later claim pass, which is the crash-recovery mechanism.
// All claim and terminal-status writes are single-row conditional updates, so
// no two workers can act on the same row at once.
//
// The migration_run table holds exactly one row describing the global run
// lifecycle and its config snapshot. Writes are version-checked
// (optimistic concurrency) so a second process cannot start a duplicate run.
//
// Treat this package as the single source of truth for migration semantics;
// schema changes go to schema.sql with a schemaVersion bump.
package ledger
