// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"gnoagent/internal/config"
	"gnoagent/internal/exterrors"
	"gnoagent/internal/history"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	rootCmd := NewRootCommand()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()

	var localErr *exterrors.LocalError
	require.ErrorAs(t, err, &localErr)
	require.Equal(t, code, localErr.Code)
}

// isolateEnv clears the provisioning settings so the tests do not depend on the caller's environment.
func isolateEnv(t *testing.T) string {
	t.Helper()

	for _, key := range []string{
		config.EnvProjectEndpoint,
		config.EnvModelDeploymentName,
		config.EnvAgentName,
		config.EnvTenantID,
		config.EnvAgentsAPIVersion,
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	return filepath.Join(t.TempDir(), ".env")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "Version: dev")
}

func TestToolsCatalogCommand(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		out, err := execute(t, "tools", "catalog")
		require.NoError(t, err)

		names := gjson.Get(out, "#.name").Array()
		require.Len(t, names, 6)
		require.Equal(t, "check_availability", names[5].String())
	})

	t.Run("YAML", func(t *testing.T) {
		out, err := execute(t, "tools", "catalog", "--output", "yaml")
		require.NoError(t, err)
		require.Contains(t, out, "name: search_restaurants")
		require.Contains(t, out, "additionalProperties: false")
	})

	t.Run("UnsupportedFormat", func(t *testing.T) {
		_, err := execute(t, "tools", "catalog", "-o", "xml")
		requireCode(t, err, exterrors.CodeInvalidOutputFormat)
	})
}

func TestProvisionCommandFailsBeforeConnecting(t *testing.T) {
	t.Run("MissingEndpoint", func(t *testing.T) {
		envFile := isolateEnv(t)
		dbPath := filepath.Join(t.TempDir(), "history.db")

		out, err := execute(t, "provision", "--env-file", envFile, "--history-db", dbPath)
		requireCode(t, err, exterrors.CodeMissingProjectEndpoint)
		require.NotContains(t, out, "Connecting")
		require.NoFileExists(t, envFile)
		require.NoFileExists(t, dbPath)
	})

	t.Run("EmptyEnvFile", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv(config.EnvProjectEndpoint, "https://contoso.services.ai.azure.com/api/projects/gno")

		out, err := execute(t, "provision", "--env-file", "", "--history-db", "")
		requireCode(t, err, exterrors.CodeMissingEnvFile)
		require.NotContains(t, out, "[1/4]")
	})

	t.Run("InvalidEndpointFromEnvFile", func(t *testing.T) {
		envFile := isolateEnv(t)
		require.NoError(t, os.WriteFile(envFile, []byte("PROJECT_ENDPOINT=ftp://contoso\n"), 0600))

		_, err := execute(t, "provision", "--env-file", envFile, "--history-db", "")
		requireCode(t, err, exterrors.CodeInvalidProjectEndpoint)
	})

	t.Run("MissingPrompt", func(t *testing.T) {
		envFile := isolateEnv(t)
		t.Setenv(config.EnvProjectEndpoint, "https://contoso.services.ai.azure.com/api/projects/gno")
		prompt := filepath.Join(t.TempDir(), "missing.md")

		out, err := execute(t, "provision", "--env-file", envFile, "--history-db", "", "--prompt", prompt)
		requireCode(t, err, exterrors.CodePromptNotFound)
		require.Contains(t, out, "[1/4]")
		require.NotContains(t, out, "[2/4]")
		require.NoFileExists(t, envFile)
	})
}

func TestDeleteCommandMissingEndpoint(t *testing.T) {
	envFile := isolateEnv(t)

	_, err := execute(t, "delete", "--dry-run", "--env-file", envFile)
	requireCode(t, err, exterrors.CodeMissingProjectEndpoint)
}

func TestHistoryCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")

	out, err := execute(t, "history", "--history-db", dbPath)
	require.NoError(t, err)
	require.Contains(t, out, "No provisioning runs recorded.")

	store, err := history.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), history.Run{
		RunID:        "run-1",
		AgentName:    "GNOPlanner",
		AgentID:      "asst_001",
		Model:        "gpt-4o",
		Endpoint:     "https://contoso.services.ai.azure.com/api/projects/gno",
		DeletedCount: 2,
		CreatedAt:    time.Now(),
	}))
	require.NoError(t, store.Close())

	out, err = execute(t, "history", "--history-db", dbPath)
	require.NoError(t, err)
	require.Contains(t, out, "AGENT ID")
	require.Contains(t, out, "asst_001")
	require.Contains(t, out, "run-1")
}
