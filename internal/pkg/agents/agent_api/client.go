// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package agent_api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
)

const (
	moduleName    = "gnoagent/agent_api"
	moduleVersion = "1.0.0"

	// DefaultAPIVersion is the agents data-plane api-version the client speaks.
	DefaultAPIVersion = "2025-05-15-preview"

	defaultPageSize int32 = 100
)

// DefaultScopes are the token scopes for the Foundry data plane.
var DefaultScopes = []string{"https://ai.azure.com/.default"}

// AgentClient talks to the agents API of a single Foundry project.
type AgentClient struct {
	endpoint   string
	apiVersion string
	pipeline   runtime.Pipeline
}

// NewAgentClient creates a client for the project at endpoint. An empty apiVersion uses DefaultAPIVersion.
func NewAgentClient(
	endpoint string,
	credential azcore.TokenCredential,
	apiVersion string,
	options *azcore.ClientOptions,
) *AgentClient {
	if options == nil {
		options = &azcore.ClientOptions{}
	}
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	authPolicy := runtime.NewBearerTokenPolicy(credential, DefaultScopes, &policy.BearerTokenOptions{
		InsecureAllowCredentialWithHTTP: strings.HasPrefix(endpoint, "http://"),
	})
	pipelineOptions := runtime.PipelineOptions{
		PerRetry: []policy.Policy{authPolicy},
	}

	return &AgentClient{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		apiVersion: apiVersion,
		pipeline:   runtime.NewPipeline(moduleName, moduleVersion, pipelineOptions, options),
	}
}

// NewListAgentsPager pages through the agents of the project, following last_id until has_more is false.
func (c *AgentClient) NewListAgentsPager(params *ListAgentQueryParameters) *runtime.Pager[AgentList] {
	var query ListAgentQueryParameters
	if params != nil {
		query = *params
	}
	if query.Limit == nil {
		limit := defaultPageSize
		query.Limit = &limit
	}

	return runtime.NewPager(runtime.PagingHandler[AgentList]{
		More: func(page AgentList) bool {
			return page.HasMore && page.LastID != ""
		},
		Fetcher: func(ctx context.Context, page *AgentList) (AgentList, error) {
			pageQuery := query
			if page != nil {
				after := page.LastID
				pageQuery.After = &after
			}

			return c.listAgents(ctx, &pageQuery)
		},
	})
}

func (c *AgentClient) listAgents(ctx context.Context, params *ListAgentQueryParameters) (AgentList, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/agents")
	if err != nil {
		return AgentList{}, err
	}

	query := req.Raw().URL.Query()
	if params.Kind != nil {
		query.Set("kind", string(*params.Kind))
	}
	if params.Limit != nil {
		query.Set("limit", strconv.Itoa(int(*params.Limit)))
	}
	if params.After != nil {
		query.Set("after", *params.After)
	}
	if params.Order != nil {
		query.Set("order", *params.Order)
	}
	req.Raw().URL.RawQuery = query.Encode()

	result, err := send[AgentList](c, req)
	if err != nil {
		return AgentList{}, err
	}

	return *result, nil
}

// DeleteAgent deletes the agent with the given identifier.
func (c *AgentClient) DeleteAgent(ctx context.Context, agentID string) (*DeleteAgentResponse, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, "/agents/"+url.PathEscape(agentID))
	if err != nil {
		return nil, err
	}

	return send[DeleteAgentResponse](c, req)
}

// CreateAgent creates an agent from the request and returns the created agent.
func (c *AgentClient) CreateAgent(ctx context.Context, request *CreateAgentRequest) (*AgentObject, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/agents")
	if err != nil {
		return nil, err
	}

	if err := runtime.MarshalAsJSON(req, request); err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	return send[AgentObject](c, req)
}

// GetAgent returns the agent with the given name.
func (c *AgentClient) GetAgent(ctx context.Context, agentName string) (*AgentObject, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/agents/"+url.PathEscape(agentName))
	if err != nil {
		return nil, err
	}

	return send[AgentObject](c, req)
}

func (c *AgentClient) newRequest(ctx context.Context, method string, path string) (*policy.Request, error) {
	req, err := runtime.NewRequest(ctx, method, c.endpoint+path)
	if err != nil {
		return nil, fmt.Errorf("failed creating request: %w", err)
	}

	query := req.Raw().URL.Query()
	query.Set("api-version", c.apiVersion)
	req.Raw().URL.RawQuery = query.Encode()
	req.Raw().Header.Set("Accept", "application/json")

	return req, nil
}

func send[T any](c *AgentClient, req *policy.Request) (*T, error) {
	resp, err := c.pipeline.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !runtime.HasStatusCode(resp, http.StatusOK, http.StatusCreated) {
		return nil, runtime.NewResponseError(resp)
	}

	return readRawResponse[T](resp)
}

func readRawResponse[T any](response *http.Response) (*T, error) {
	data, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	instance := new(T)
	if err := json.Unmarshal(data, instance); err != nil {
		return nil, fmt.Errorf("failed unmarshalling JSON from response: %w", err)
	}

	return instance, nil
}
