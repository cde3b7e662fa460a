package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMigration(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.TargetDir == "" {
		return errors.New("paths.target_dir must be set")
	}
	return nil
}

func (c *Config) validateMigration() error {
	if c.Migration.BatchSize <= 0 {
		return errors.New("migration.batch_size must be positive")
	}
	if c.Migration.Concurrency <= 0 {
		return errors.New("migration.concurrency must be positive")
	}
	if c.Migration.Quality < 1 || c.Migration.Quality > 100 {
		return errors.New("migration.quality must be between 1 and 100")
	}
	if c.Migration.MaxWidth <= 0 {
		return errors.New("migration.max_width must be positive")
	}
	if c.Migration.LeaseTimeout <= 0 {
		return errors.New("migration.lease_timeout must be positive")
	}
	if c.Migration.PollInterval <= 0 {
		return errors.New("migration.poll_interval must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
