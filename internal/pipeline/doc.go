// Package pipeline executes the per-photo fetch, transform, and store steps.
//
// Each step is a possible failure point; failures are wrapped with a step
// sentinel and contained at the item boundary. The pipeline never writes
// ledger state itself — the worker pool owns the status writeback so the
// pipeline stays a pure function of a source ref.
package pipeline
