package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"darkroom/internal/api"
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	var req api.StartRequest

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start or resume the migration run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := c.Start(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run status: %s\n", resp.RunStatus)
			return nil
		},
	}

	cmd.Flags().IntVar(&req.BatchSize, "batch-size", 0, "Items claimed per pass (0 uses config default)")
	cmd.Flags().IntVar(&req.Concurrency, "concurrency", 0, "Parallel executors (0 uses config default)")
	cmd.Flags().IntVar(&req.Quality, "quality", 0, "JPEG quality 1-100 (0 uses config default)")
	cmd.Flags().IntVar(&req.MaxWidth, "max-width", 0, "Maximum width in pixels (0 uses config default)")
	return cmd
}

func newPauseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Stop claiming new photos; in-flight photos finish",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := c.Pause(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run status: %s\n", resp.RunStatus)
			return nil
		},
	}
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Requeue failed photos back to pending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := c.RetryErrors(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "requeued %s photos\n", formatCount(int(resp.Requeued)))
			return nil
		},
	}
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var fileName string

	cmd := &cobra.Command{
		Use:   "add <source-ref>",
		Short: "Register a photo as needing migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := c.AddPhoto(cmd.Context(), args[0], fileName)
			if err != nil {
				return err
			}
			if resp.Created {
				fmt.Fprintf(cmd.OutOrStdout(), "registered photo %d (%s)\n", resp.ID, resp.Status)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "photo %d already registered (%s)\n", resp.ID, resp.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fileName, "file-name", "", "Display name recorded with the photo")
	return cmd
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check daemon and ledger reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.apiClient()
			if err != nil {
				return err
			}
			resp, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			if resp.Healthy {
				fmt.Fprintf(cmd.OutOrStdout(), "healthy (ledger: %s)\n", resp.LedgerPath)
				return nil
			}
			return fmt.Errorf("unhealthy: %s", resp.Detail)
		},
	}
}
