// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"log"

	"gnoagent/internal/config"
	"gnoagent/internal/exterrors"
	"gnoagent/internal/pkg/agents/agent_api"
	"gnoagent/internal/pkg/azure"
	"gnoagent/internal/provision"
	"gnoagent/internal/version"
)

// newAgentService authenticates with the ambient credential and connects to the project's agents API.
func newAgentService(ctx context.Context, cfg *config.Config) (provision.AgentService, error) {
	credential, err := azure.NewCredential(ctx, azure.CredentialOptions{
		TenantID: cfg.TenantID,
		Scope:    azure.ScopeAIFoundry,
	})
	if err != nil {
		if exterrors.IsCancellation(err) {
			return nil, exterrors.Cancelled("authentication was cancelled")
		}
		return nil, exterrors.Wrap(
			exterrors.Auth(exterrors.CodeCredentialCreationFailed, "authenticating to Azure AI Foundry", ""),
			err,
		)
	}

	builder := azure.NewClientOptionsBuilder().
		SetUserAgent(version.UserAgent()).
		SetContext(ctx)
	if rootFlags.Debug {
		builder.WithPerCallPolicy(agent_api.NewLoggingPolicy(log.Default()))
	}

	client := agent_api.NewAgentClient(cfg.ProjectEndpoint, credential, cfg.APIVersion, builder.BuildCoreClientOptions())

	return provision.NewClientService(client), nil
}
