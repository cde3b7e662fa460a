package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.apiClient()
			if err != nil {
				return err
			}
			status, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}
			useTable := !plain && stdoutIsTerminal()
			fmt.Fprintln(cmd.OutOrStdout(), renderStatus(status, useTable))
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Plain key: value output")
	return cmd
}

func newErrorsCommand(ctx *commandContext) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "errors",
		Short: "List photos that failed migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.apiClient()
			if err != nil {
				return err
			}
			list, err := c.Errors(cmd.Context())
			if err != nil {
				return err
			}
			useTable := !plain && stdoutIsTerminal()
			fmt.Fprintln(cmd.OutOrStdout(), renderErrors(list, useTable))
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Tab-separated output")
	return cmd
}
