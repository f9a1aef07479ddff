// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package provision

import (
	"context"
	"log"
	"strings"

	"gnoagent/internal/output"
	"gnoagent/internal/pkg/agents/agent_api"
	"gnoagent/internal/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// MatchesName reports whether an agent named name belongs to the configured agent. Exact matches
// and any name that starts with agentName (e.g. "GNOPlanner-old") qualify.
func MatchesName(name string, agentName string) bool {
	return name != "" && strings.HasPrefix(name, agentName)
}

// Matching returns the agents that belong to agentName, in listing order.
func Matching(agents []agent_api.AgentObject, agentName string) []agent_api.AgentObject {
	var matched []agent_api.AgentObject
	for _, agent := range agents {
		if MatchesName(agent.Name, agentName) {
			matched = append(matched, agent)
		}
	}

	return matched
}

// Cleanup deletes every agent belonging to agentName and returns the agents it deleted.
// With dryRun set nothing is deleted and the returned agents are the ones that would be.
func Cleanup(
	ctx context.Context,
	service AgentService,
	agentName string,
	printer *output.Printer,
	dryRun bool,
) ([]agent_api.AgentObject, error) {
	ctx, span := tracing.Tracer().Start(ctx, "provision.cleanup")
	defer span.End()

	printer.Detail("Checking for existing '%s' agents to clean up...", agentName)

	agents, err := service.ListAgents(ctx)
	if err != nil {
		return nil, err
	}

	matched := Matching(agents, agentName)
	span.SetAttributes(
		attribute.Int("agents.listed", len(agents)),
		attribute.Int("agents.matched", len(matched)),
	)

	var deleted []agent_api.AgentObject
	for _, agent := range matched {
		if dryRun {
			printer.Detail("Would delete agent: %s (%s)", agent.Name, agent.ID)
			deleted = append(deleted, agent)
			continue
		}

		printer.Detail("Deleting existing agent: %s (%s)", agent.Name, agent.ID)
		if err := service.DeleteAgent(ctx, agent.ID); err != nil {
			return deleted, err
		}
		log.Printf("deleted agent %s (%s)", agent.Name, agent.ID)
		deleted = append(deleted, agent)
	}

	switch {
	case len(deleted) == 0:
		printer.Success("No existing agents to clean up")
	case dryRun:
		printer.Success("%d existing agent(s) would be deleted", len(deleted))
	default:
		printer.Success("Deleted %d existing agent(s)", len(deleted))
	}

	return deleted, nil
}
