// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"gnoagent/internal/exterrors"
	"gnoagent/internal/output"
	"gnoagent/internal/toolbackend"
	"gnoagent/internal/toolcatalog"
	"gnoagent/internal/toolserver"
	"gnoagent/internal/venues"
)

func newToolsCommand() *cobra.Command {
	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and serve the function tools the agent calls.",
	}

	toolsCmd.AddCommand(newToolsCatalogCommand())
	toolsCmd.AddCommand(newToolsServeCommand())
	toolsCmd.AddCommand(newToolsMcpCommand())

	return toolsCmd
}

func newToolsCatalogCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the tool schemas attached to the agent.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error

			switch format {
			case "json":
				data, err = toolcatalog.MarshalJSON()
			case "yaml":
				data, err = toolcatalog.MarshalYAML()
			default:
				return exterrors.Validation(
					exterrors.CodeInvalidOutputFormat,
					fmt.Sprintf("unsupported output format '%s'", format),
					"use --output json or --output yaml",
				)
			}
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "json", "Output format: json or yaml.")

	return cmd
}

func newBackend() (*toolbackend.Backend, error) {
	dataset, err := venues.Dallas()
	if err != nil {
		return nil, err
	}

	return toolbackend.New(dataset), nil
}

func newToolsServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over HTTP for the hosted agent.",
		Long: heredoc.Doc(`
			Serves every catalog tool at POST /api/tools/{name} and at the function routes
			POST /api/{functionName} (e.g. /api/searchRestaurants). GET /api/tools returns the catalog.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := newBackend()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runTraced(cmd, func(_ context.Context) error {
				return toolserver.Serve(ctx, addr, toolserver.NewHandler(backend), func(bound net.Addr) {
					fmt.Fprintf(cmd.OutOrStdout(), "Serving %d tools on %s\n",
						len(toolcatalog.All()), output.WithLinkFormat("http://%s/api/tools", bound))
				})
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:7071", "Address to listen on.")

	return cmd
}

func newToolsMcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the tools as an MCP server over stdio.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := newBackend()
			if err != nil {
				return err
			}

			if err := toolserver.ServeStdio(backend); err != nil {
				fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
				return err
			}

			return nil
		},
	}
}
