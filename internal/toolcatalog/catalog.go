// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package toolcatalog holds the function tools attached to the GNO Planner agent.
package toolcatalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"gnoagent/internal/pkg/agents/agent_api"
)

//go:embed tools.json
var catalogJSON []byte

// Tool is one function tool schema. Parameters is the raw JSON schema, kept byte-for-byte so the
// property order sent to the service matches the catalog file.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
	Strict      bool            `json:"strict"`
}

var catalog = mustParse(catalogJSON)

func mustParse(data []byte) []Tool {
	var tools []Tool
	if err := json.Unmarshal(data, &tools); err != nil {
		panic(fmt.Sprintf("invalid tool catalog: %v", err))
	}

	return tools
}

// All returns a copy of the catalog in its declared order.
func All() []Tool {
	return slices.Clone(catalog)
}

// Names returns the tool names in catalog order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for _, tool := range catalog {
		names = append(names, tool.Name)
	}

	return names
}

// Lookup finds a tool by its snake_case name or its camelCase function name.
func Lookup(name string) (Tool, bool) {
	for _, tool := range catalog {
		if tool.Name == name || tool.FunctionName() == name {
			return tool, true
		}
	}

	return Tool{}, false
}

// FunctionName is the camelCase route name of the tool, e.g. searchRestaurants.
func (t Tool) FunctionName() string {
	parts := strings.Split(t.Name, "_")
	var sb strings.Builder
	for i, part := range parts {
		if i == 0 || part == "" {
			sb.WriteString(part)
			continue
		}

		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}

	return sb.String()
}

// Required returns the names of the required arguments.
func (t Tool) Required() []string {
	var required []string
	for _, value := range gjson.GetBytes(t.Parameters, "required").Array() {
		required = append(required, value.String())
	}

	return required
}

// Properties returns the argument names in schema order.
func (t Tool) Properties() []string {
	var names []string
	gjson.GetBytes(t.Parameters, "properties").ForEach(func(key, _ gjson.Result) bool {
		names = append(names, key.String())
		return true
	})

	return names
}

// AgentTool converts the schema to the agents API tool shape.
func (t Tool) AgentTool() agent_api.FunctionTool {
	return agent_api.FunctionTool{
		Type:        agent_api.ToolTypeFunction,
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
		Strict:      t.Strict,
	}
}

// AgentTools converts the whole catalog.
func AgentTools() []agent_api.FunctionTool {
	tools := make([]agent_api.FunctionTool, 0, len(catalog))
	for _, tool := range catalog {
		tools = append(tools, tool.AgentTool())
	}

	return tools
}

// MarshalJSON renders the catalog as indented JSON.
func MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(catalog, "", "  ")
}

// MarshalYAML renders the catalog as YAML.
func MarshalYAML() ([]byte, error) {
	var doc any
	if err := json.Unmarshal(catalogJSON, &doc); err != nil {
		return nil, err
	}

	return yaml.Marshal(doc)
}
