// Package client implements the HTTP client the CLI uses against the daemon
// control API.
package client
