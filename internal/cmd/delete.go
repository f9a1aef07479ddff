// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"gnoagent/internal/config"
	"gnoagent/internal/output"
	"gnoagent/internal/provision"
)

func newDeleteCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete every agent whose name equals or starts with AGENT_NAME.",
		Long: heredoc.Doc(`
			Runs only the cleanup pass of provision. The env file is left untouched.
			Use --dry-run to see which agents would be deleted.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraced(cmd, func(ctx context.Context) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}

				service, err := newAgentService(ctx, cfg)
				if err != nil {
					return err
				}

				_, err = provision.Cleanup(ctx, service, cfg.AgentName, output.NewPrinter(cmd.OutOrStdout()), dryRun)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the agents that would be deleted without deleting them.")

	return cmd
}
