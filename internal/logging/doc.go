// Package logging constructs the slog loggers used across darkroom and
// provides shared attribute helpers so call sites stay uniform.
package logging
