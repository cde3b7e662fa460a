package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"darkroom/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage darkroom configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a sample config file to the default location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			if err := config.WriteSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "data_dir: %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "log_dir: %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "target_dir: %s\n", cfg.Paths.TargetDir)
			fmt.Fprintf(out, "api_bind: %s\n", cfg.Paths.APIBind)
			fmt.Fprintf(out, "source_base_url: %s\n", cfg.Source.BaseURL)
			fmt.Fprintf(out, "batch_size: %d\n", cfg.Migration.BatchSize)
			fmt.Fprintf(out, "concurrency: %d\n", cfg.Migration.Concurrency)
			fmt.Fprintf(out, "quality: %d\n", cfg.Migration.Quality)
			fmt.Fprintf(out, "max_width: %d\n", cfg.Migration.MaxWidth)
			fmt.Fprintf(out, "lease_timeout: %ds\n", cfg.Migration.LeaseTimeout)
			return nil
		},
	}
}
