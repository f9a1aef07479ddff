// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"gnoagent/internal/exterrors"
	"gnoagent/internal/history"
	"gnoagent/internal/output"
	"gnoagent/internal/provision"
)

const provisionLockName = "gnoagent-provision.lock"

type provisionFlags struct {
	prompt       string
	expandPrompt bool
	skipVerify   bool
	historyDB    string
}

func newProvisionCommand() *cobra.Command {
	flags := &provisionFlags{}

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Replace the project's agent with a fresh one and record its id in the env file.",
		Long: heredoc.Doc(`
			Deletes every agent whose name equals or starts with AGENT_NAME, creates the agent from the
			system prompt and the tool catalog, then writes AGENT_ID to the env file.

			Deleted agents cannot be recovered. Rerun the command to recover from a failed run.
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTraced(cmd, func(ctx context.Context) error {
				return runProvision(ctx, cmd, flags)
			})
		},
	}

	cmd.Flags().StringVar(&flags.prompt, "prompt", "gno-system-prompt.md", "System prompt file.")
	cmd.Flags().BoolVar(&flags.expandPrompt, "expand-prompt", false, "Substitute ${VAR} references in the prompt.")
	cmd.Flags().BoolVar(&flags.skipVerify, "skip-verify", false, "Do not wait for the created agent to be readable.")
	addHistoryFlag(cmd.Flags(), &flags.historyDB, "Provisioning history database. Empty disables history.")

	return cmd
}

func addHistoryFlag(flags *pflag.FlagSet, target *string, usage string) {
	flags.StringVar(target, "history-db", history.DefaultPath, usage)
}

func runProvision(ctx context.Context, cmd *cobra.Command, flags *provisionFlags) error {
	lock := flock.New(filepath.Join(os.TempDir(), provisionLockName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring provision lock: %w", err)
	}
	if !locked {
		return exterrors.User(
			exterrors.CodeProvisionInProgress,
			fmt.Sprintf("another provision is already running (lock %s)", lock.Path()),
		)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Printf("releasing provision lock: %v", err)
		}
	}()

	options := []provision.Option{}
	if flags.historyDB != "" {
		store := history.OpenLazy(flags.historyDB)
		defer func() {
			if err := store.Close(); err != nil {
				log.Printf("closing history database: %v", err)
			}
		}()
		options = append(options, provision.WithRecorder(store))
	}

	provisioner := provision.New(newAgentService, output.NewPrinter(cmd.OutOrStdout()), options...)
	_, err = provisioner.Provision(ctx, provision.Options{
		PromptPath:   flags.prompt,
		EnvFile:      rootFlags.EnvFile,
		ExpandPrompt: flags.expandPrompt,
		SkipVerify:   flags.skipVerify,
	})

	return err
}
