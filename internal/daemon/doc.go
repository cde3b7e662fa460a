// Package daemon coordinates the long-running darkroom process.
//
// It wires configuration, the ledger, and the migration manager into a single
// lifecycle with flock-based locking to prevent multiple instances, and
// serves the control API the CLI consumes. Keep orchestration
// logic in internal/migrate; the daemon focuses on startup, shutdown, and the
// HTTP surface.
package daemon
