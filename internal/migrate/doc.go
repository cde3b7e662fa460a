// Package migrate coordinates the photo migration run.
//
// The Manager owns the run state machine (idle, running, paused, completed,
// error) persisted in the ledger's singleton run record, and drives a bounded
// worker pool that claims batches of pending photos and pushes each through
// the pipeline. Pause is cooperative at the batch boundary: in-flight photos
// always reach a terminal status. Item failures are contained per photo; only
// ledger unreachability escalates the run to error.
package migrate
