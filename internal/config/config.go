// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package config resolves the provisioner settings from the process environment, optionally
// pre-populated from a dotenv file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"strings"

	"gnoagent/internal/exterrors"

	"github.com/joho/godotenv"
)

const (
	EnvProjectEndpoint     = "PROJECT_ENDPOINT"
	EnvModelDeploymentName = "MODEL_DEPLOYMENT_NAME"
	EnvAgentName           = "AGENT_NAME"
	EnvTenantID            = "AZURE_TENANT_ID"
	EnvAgentsAPIVersion    = "AGENTS_API_VERSION"

	DefaultModelDeploymentName = "gpt-4o"
	DefaultAgentName           = "GNOPlanner"
	DefaultAgentsAPIVersion    = "2025-05-15-preview"
)

// Config holds the resolved provisioning settings.
type Config struct {
	ProjectEndpoint     string
	ModelDeploymentName string
	AgentName           string
	TenantID            string
	APIVersion          string
}

// LoadEnvFile pre-populates the process environment from a dotenv file. Variables that are
// already set in the process win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("env file %s not found, using process environment only", path)
		return nil
	}
	if err != nil {
		return exterrors.Wrap(
			exterrors.Configuration(
				exterrors.CodeEnvFileLoadFailed,
				fmt.Sprintf("loading %s", path),
				"check that the file contains KEY=VALUE lines",
			),
			err,
		)
	}

	return nil
}

// Load resolves the configuration from the process environment.
func Load() (*Config, error) {
	return Resolve(os.LookupEnv)
}

// Resolve resolves the configuration using the provided lookup function.
func Resolve(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, fallback string) string {
		if value, has := lookup(key); has && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
		return fallback
	}

	cfg := &Config{
		ProjectEndpoint:     strings.TrimRight(get(EnvProjectEndpoint, ""), "/"),
		ModelDeploymentName: get(EnvModelDeploymentName, DefaultModelDeploymentName),
		AgentName:           get(EnvAgentName, DefaultAgentName),
		TenantID:            get(EnvTenantID, ""),
		APIVersion:          get(EnvAgentsAPIVersion, DefaultAgentsAPIVersion),
	}

	if cfg.ProjectEndpoint == "" {
		return nil, exterrors.Validation(
			exterrors.CodeMissingProjectEndpoint,
			fmt.Sprintf("%s not set", EnvProjectEndpoint),
			fmt.Sprintf(
				"set %s to your Microsoft Foundry project endpoint, either in the environment or in the env file",
				EnvProjectEndpoint,
			),
		)
	}

	if err := validateEndpoint(cfg.ProjectEndpoint); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateEndpoint(endpoint string) error {
	invalid := func(reason string) error {
		return exterrors.Validation(
			exterrors.CodeInvalidProjectEndpoint,
			fmt.Sprintf("%s '%s' is invalid: %s", EnvProjectEndpoint, endpoint, reason),
			"use the project endpoint shown in the Foundry portal, "+
				"e.g. https://<resource>.services.ai.azure.com/api/projects/<project>",
		)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return invalid(err.Error())
	}

	if u.Host == "" {
		return invalid("missing host")
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		if u.Hostname() == "localhost" || u.Hostname() == "127.0.0.1" {
			return nil
		}
		return invalid("plain http is only allowed for localhost")
	default:
		return invalid(fmt.Sprintf("unsupported scheme '%s'", u.Scheme))
	}
}
