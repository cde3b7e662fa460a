// Package api defines the transport DTOs for the daemon HTTP surface and the
// read-only view service backing them. Handlers in internal/daemon stay thin
// by delegating shape conversion here.
package api
