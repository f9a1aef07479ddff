// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"gnoagent/internal/config"
	"gnoagent/internal/tracing"
	"gnoagent/internal/version"
)

type rootFlagsDefinition struct {
	Debug     bool
	EnvFile   string
	TraceFile string
}

var rootFlags rootFlagsDefinition

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gnoagent <command> [options]",
		Short: "Provision and serve the GNO Planner agent in Azure AI Foundry.",
		Long: heredoc.Doc(`
			gnoagent provisions the GNO Planner agent in an Azure AI Foundry project and serves
			the function tools the agent calls while planning a night out.

			Settings are read from the environment, pre-populated from the env file:
			  PROJECT_ENDPOINT       Foundry project endpoint (required)
			  MODEL_DEPLOYMENT_NAME  model deployment (default gpt-4o)
			  AGENT_NAME             agent name (default GNOPlanner)
			  AZURE_TENANT_ID        tenant to authenticate against (optional)
		`),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if rootFlags.Debug {
				log.SetOutput(cmd.ErrOrStderr())
				log.SetFlags(log.LstdFlags | log.Lmicroseconds)
			} else {
				log.SetOutput(io.Discard)
			}

			return config.LoadEnvFile(rootFlags.EnvFile)
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().BoolVar(
		&rootFlags.Debug,
		"debug",
		false,
		"Enable debug logging, including agents API requests and responses.",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootFlags.EnvFile,
		"env-file",
		".env",
		"Env file that pre-populates settings and receives AGENT_ID.",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootFlags.TraceFile,
		"trace-file",
		"",
		"Write OpenTelemetry spans to this file.",
	)

	rootCmd.AddCommand(newProvisionCommand())
	rootCmd.AddCommand(newListCommand())
	rootCmd.AddCommand(newDeleteCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newToolsCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// runTraced runs fn with tracing configured from the root flags, flushing spans when fn returns.
func runTraced(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	shutdown, err := tracing.Init(cmd.Context(), tracing.Options{
		TraceFile:      rootFlags.TraceFile,
		OtlpEndpoint:   os.Getenv(tracing.OtlpEndpointEnvVar),
		ServiceVersion: version.Version,
	})
	if err != nil {
		return err
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Printf("flushing traces: %v", err)
		}
	}()

	return fn(cmd.Context())
}
