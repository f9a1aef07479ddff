// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package agent_api

// AgentKind represents the different types of agents
type AgentKind string

const (
	AgentKindPrompt AgentKind = "prompt"
)

// ToolType identifies the kind of a tool attached to an agent
type ToolType string

const (
	ToolTypeFunction ToolType = "function"
)

// FunctionTool is a function tool the model may call with JSON arguments
type FunctionTool struct {
	Type        ToolType `json:"type"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Parameters  any      `json:"parameters"`
	Strict      bool     `json:"strict"`
}

// AgentDefinition is the base definition for all agent types
type AgentDefinition struct {
	Kind AgentKind `json:"kind"`
}

// PromptAgentDefinition represents a prompt-based agent
type PromptAgentDefinition struct {
	AgentDefinition
	Model        string         `json:"model"`
	Instructions *string        `json:"instructions,omitempty"`
	Tools        []FunctionTool `json:"tools,omitempty"`
}

// CreateAgentVersionRequest represents a request to create an agent version
type CreateAgentVersionRequest struct {
	Description *string           `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Definition  any               `json:"definition"`
}

// CreateAgentRequest represents a request to create an agent
type CreateAgentRequest struct {
	Name string `json:"name"`
	CreateAgentVersionRequest
}

// AgentVersionObject represents an agent version
type AgentVersionObject struct {
	Object      string            `json:"object"`
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description *string           `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   int64             `json:"created_at"`
	Definition  map[string]any    `json:"definition,omitempty"`
}

// AgentObject represents an agent
type AgentObject struct {
	Object   string `json:"object"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Versions struct {
		Latest AgentVersionObject `json:"latest"`
	} `json:"versions"`
}

// Model returns the model deployment of the latest version, if recorded.
func (a *AgentObject) Model() string {
	if model, ok := a.Versions.Latest.Definition["model"].(string); ok {
		return model
	}

	return ""
}

// CommonListObjectProperties represents common properties for list responses
type CommonListObjectProperties struct {
	Object  string `json:"object"`
	FirstID string `json:"first_id,omitempty"`
	LastID  string `json:"last_id,omitempty"`
	HasMore bool   `json:"has_more"`
}

// AgentList represents a list of agents
type AgentList struct {
	Data []AgentObject `json:"data"`
	CommonListObjectProperties
}

// DeleteAgentResponse represents the response when deleting an agent
type DeleteAgentResponse struct {
	Object  string `json:"object"`
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}

// ListAgentQueryParameters represents query parameters for listing agents
type ListAgentQueryParameters struct {
	Kind  *AgentKind
	Limit *int32
	After *string
	Order *string
}
