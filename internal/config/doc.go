// Package config loads, validates, and normalizes darkroom configuration.
//
// Values are layered: compiled defaults, then the TOML config file, then
// environment overrides for secrets. Paths support ~ expansion and are
// cleaned during normalization. Migration settings are defaults only; the
// orchestrator snapshots them into the run record when a run starts.
package config
