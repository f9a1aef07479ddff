// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gnoagent/internal/config"
	"gnoagent/internal/output"
	"gnoagent/internal/pkg/agents/agent_api"
	"gnoagent/internal/provision"
)

func newListCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the agents named after AGENT_NAME.",
		Args:  cobra.NoArgs,
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

				agents, err := service.ListAgents(ctx)
				if err != nil {
					return err
				}
				if !all {
					agents = provision.Matching(agents, cfg.AgentName)
				}

				return printAgents(cmd, agents, cfg.AgentName)
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List every agent in the project.")

	return cmd
}

func printAgents(cmd *cobra.Command, agents []agent_api.AgentObject, agentName string) error {
	if len(agents) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No agents found matching %s\n", output.WithHighLightFormat("%s", agentName))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID\tMODEL")
	for _, agent := range agents {
		fmt.Fprintf(w, "%s\t%s\t%s\n", agent.Name, agent.ID, agent.Model())
	}

	return w.Flush()
}
