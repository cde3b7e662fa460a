package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"darkroom/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsUnderFileValues(t *testing.T) {
	path := writeConfigFile(t, `
[paths]
data_dir = "/tmp/darkroom-test/data"
target_dir = "/tmp/darkroom-test/photos"

[migration]
batch_size = 50
`)

	cfg, resolved, found, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !found || resolved != path {
		t.Fatalf("expected file %s to be found, got found=%v resolved=%s", path, found, resolved)
	}

	if cfg.Migration.BatchSize != 50 {
		t.Fatalf("file value not applied: batch_size = %d", cfg.Migration.BatchSize)
	}
	if cfg.Migration.Concurrency != 4 {
		t.Fatalf("default not preserved: concurrency = %d", cfg.Migration.Concurrency)
	}
	if cfg.Migration.LeaseTimeout != 300 {
		t.Fatalf("default not preserved: lease_timeout = %d", cfg.Migration.LeaseTimeout)
	}
	if cfg.Paths.APIBind != "127.0.0.1:7319" {
		t.Fatalf("default not preserved: api_bind = %q", cfg.Paths.APIBind)
	}
}

func TestLoadRejectsMissingExplicitFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	_, _, found, err := config.Load(missing)
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
	if found {
		t.Fatal("missing file must not report found")
	}
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	path := writeConfigFile(t, `
[paths]
data_dir = "/tmp/darkroom-test/data"
target_dir = "/tmp/darkroom-test/photos"
api_token = "from-file"

[source]
token = "file-token"
`)
	t.Setenv("DARKROOM_SOURCE_TOKEN", "env-token")
	t.Setenv("DARKROOM_API_TOKEN", "env-api-token")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Source.Token != "env-token" {
		t.Fatalf("expected env source token to win, got %q", cfg.Source.Token)
	}
	if cfg.Paths.APIToken != "env-api-token" {
		t.Fatalf("expected env api token to win, got %q", cfg.Paths.APIToken)
	}
}

func TestLoadExpandsHomeRelativePaths(t *testing.T) {
	path := writeConfigFile(t, `
[paths]
data_dir = "~/darkroom-data"
target_dir = "~/darkroom-photos"
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("resolve home: %v", err)
	}
	if cfg.Paths.DataDir != filepath.Join(home, "darkroom-data") {
		t.Fatalf("tilde not expanded: %q", cfg.Paths.DataDir)
	}
}

func TestValidateRejectsBadKnobs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(cfg *config.Config)
		want   string
	}{
		{"zero batch size", func(cfg *config.Config) { cfg.Migration.BatchSize = 0 }, "batch_size"},
		{"zero concurrency", func(cfg *config.Config) { cfg.Migration.Concurrency = 0 }, "concurrency"},
		{"quality too high", func(cfg *config.Config) { cfg.Migration.Quality = 101 }, "quality"},
		{"zero lease timeout", func(cfg *config.Config) { cfg.Migration.LeaseTimeout = 0 }, "lease_timeout"},
		{"empty data dir", func(cfg *config.Config) { cfg.Paths.DataDir = "" }, "data_dir"},
		{"bad log format", func(cfg *config.Config) { cfg.Logging.Format = "xml" }, "logging.format"},
		{"bad log level", func(cfg *config.Config) { cfg.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}

	// The sample must load cleanly once its placeholder dirs exist.
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}

	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected refusal to overwrite an existing config file")
	}
}
