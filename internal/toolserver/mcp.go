// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package toolserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"gnoagent/internal/exterrors"
	"gnoagent/internal/toolcatalog"
	"gnoagent/internal/version"
)

const mcpServerName = "GNO Planner Tools"

// NewMCPServer registers every catalog tool with its JSON schema, dispatching calls to invoker.
func NewMCPServer(invoker Invoker) *server.MCPServer {
	s := server.NewMCPServer(
		mcpServerName, version.Version,
		server.WithToolCapabilities(true),
	)

	s.AddTools(MCPTools(invoker)...)

	return s
}

// MCPTools returns one server tool per catalog entry.
func MCPTools(invoker Invoker) []server.ServerTool {
	catalog := toolcatalog.All()
	tools := make([]server.ServerTool, 0, len(catalog))
	for _, tool := range catalog {
		tools = append(tools, server.ServerTool{
			Tool:    mcp.NewToolWithRawSchema(tool.Name, tool.Description, tool.Parameters),
			Handler: mcpHandler(invoker, tool.Name),
		})
	}

	return tools
}

func mcpHandler(invoker Invoker, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		if args == nil {
			args = map[string]any{}
		}

		raw, err := json.Marshal(args)
		if err != nil {
			return mcp.NewToolResultError("Invalid arguments format"), nil
		}

		result, err := invoker.Invoke(ctx, name, raw)
		if err != nil {
			if exterrors.IsCancellation(err) {
				return nil, err
			}
			return mcp.NewToolResultError(err.Error()), nil
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encoding %s result: %w", name, err)
		}

		return mcp.NewToolResultText(string(payload)), nil
	}
}

// ServeStdio serves the MCP tools over stdin/stdout until the input closes.
func ServeStdio(invoker Invoker) error {
	return server.ServeStdio(NewMCPServer(invoker))
}
