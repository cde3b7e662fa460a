package testsupport

import (
	"path/filepath"
	"testing"

	"darkroom/internal/config"
)

// NewConfig returns a validated config rooted in a per-test temp directory.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.TargetDir = filepath.Join(base, "photos")
	cfg.Paths.APIBind = "127.0.0.1:0"
	// Tight intervals keep run-loop tests fast.
	cfg.Migration.PollInterval = 1
	cfg.Migration.ErrorRetryInterval = 1

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}
