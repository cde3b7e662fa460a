// Package photos defines the source and target asset stores the migration
// pipeline moves photos between. The source store only needs fetch-by-ref;
// the target store only needs idempotent store-by-deterministic-key.
package photos
