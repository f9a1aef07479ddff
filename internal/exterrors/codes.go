// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package exterrors

// Error codes for user cancellation.
const (
	CodeCancelled = "cancelled"
)

// Error codes for validation errors.
const (
	CodeMissingProjectEndpoint = "missing_project_endpoint"
	CodeInvalidProjectEndpoint = "invalid_project_endpoint"
	CodeInvalidAgentName       = "invalid_agent_name"
	CodeUnknownTool            = "unknown_tool"
	CodeInvalidToolArguments   = "invalid_tool_arguments"
	CodeInvalidOutputFormat    = "invalid_output_format"
	CodeInvalidPrompt          = "invalid_prompt"
	CodeMissingEnvFile         = "missing_env_file"
)

// Error codes for dependency errors.
const (
	CodePromptNotFound    = "prompt_not_found"
	CodeEnvFileLoadFailed = "env_file_load_failed"
	CodeEnvFileSaveFailed = "env_file_save_failed"
	CodeHistoryFailed     = "history_failed"
)

// Error codes for auth errors.
const (
	CodeCredentialCreationFailed = "credential_creation_failed"
)

// Error codes for user errors.
const (
	CodeProvisionInProgress = "provision_in_progress"
)

// Operation names for ServiceFromAzure errors.
// These are prefixed to the Azure error code (e.g., "create_agent.Conflict").
const (
	OpListAgents  = "list_agents"
	OpDeleteAgent = "delete_agent"
	OpCreateAgent = "create_agent"
	OpGetAgent    = "get_agent"
)
