// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package provision

import (
	"context"

	"gnoagent/internal/exterrors"
	"gnoagent/internal/pkg/agents/agent_api"
)

// AgentService is the set of remote agent operations the provisioner drives.
type AgentService interface {
	// ListAgents returns every agent in the project, across all pages.
	ListAgents(ctx context.Context) ([]agent_api.AgentObject, error)
	DeleteAgent(ctx context.Context, agentID string) error
	CreateAgent(ctx context.Context, request *agent_api.CreateAgentRequest) (*agent_api.AgentObject, error)
	GetAgent(ctx context.Context, agentName string) (*agent_api.AgentObject, error)
}

// ClientService adapts an AgentClient to AgentService, classifying remote failures per operation.
type ClientService struct {
	client *agent_api.AgentClient
}

func NewClientService(client *agent_api.AgentClient) *ClientService {
	return &ClientService{client: client}
}

func (s *ClientService) ListAgents(ctx context.Context) ([]agent_api.AgentObject, error) {
	var agents []agent_api.AgentObject

	pager := s.client.NewListAgentsPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, exterrors.ServiceFromAzure(err, exterrors.OpListAgents)
		}
		agents = append(agents, page.Data...)
	}

	return agents, nil
}

func (s *ClientService) DeleteAgent(ctx context.Context, agentID string) error {
	if _, err := s.client.DeleteAgent(ctx, agentID); err != nil {
		return exterrors.ServiceFromAzure(err, exterrors.OpDeleteAgent)
	}

	return nil
}

func (s *ClientService) CreateAgent(
	ctx context.Context,
	request *agent_api.CreateAgentRequest,
) (*agent_api.AgentObject, error) {
	agent, err := s.client.CreateAgent(ctx, request)
	if err != nil {
		return nil, exterrors.ServiceFromAzure(err, exterrors.OpCreateAgent)
	}

	return agent, nil
}

func (s *ClientService) GetAgent(ctx context.Context, agentName string) (*agent_api.AgentObject, error) {
	agent, err := s.client.GetAgent(ctx, agentName)
	if err != nil {
		return nil, exterrors.ServiceFromAzure(err, exterrors.OpGetAgent)
	}

	return agent, nil
}
