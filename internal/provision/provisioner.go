// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package provision replaces the project's agent with a freshly created one bound to the configured
// model, the system prompt and the tool catalog, then records the new agent id locally.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"
	"unicode/utf8"

	"gnoagent/internal/config"
	"gnoagent/internal/envfile"
	"gnoagent/internal/exterrors"
	"gnoagent/internal/history"
	"gnoagent/internal/output"
	"gnoagent/internal/pkg/agents/agent_api"
	"gnoagent/internal/toolcatalog"
	"gnoagent/internal/tracing"
	"gnoagent/internal/version"

	"github.com/benbjohnson/clock"
	"github.com/drone/envsubst"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Description is attached to every agent the provisioner creates.
	Description = "Girls Night Out planning assistant - helps groups plan perfect nights out in Dallas"

	// MetadataRunID and MetadataCreatedBy are the metadata keys stamped on created agents.
	MetadataRunID     = "gnoagent_run_id"
	MetadataCreatedBy = "created_by"

	totalSteps = 4
)

// ServiceFactory connects to the project described by cfg. It is only called once configuration
// and the prompt have been loaded successfully.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (AgentService, error)

// Recorder persists successful runs.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}

// Options controls a single provisioning run.
type Options struct {
	// PromptPath is the system prompt file.
	PromptPath string
	// EnvFile receives the AGENT_ID record.
	EnvFile string
	// ExpandPrompt substitutes ${VAR} references in the prompt from the environment.
	ExpandPrompt bool
	// SkipVerify skips waiting for the created agent to become readable.
	SkipVerify bool
}

// Result describes a completed run.
type Result struct {
	RunID    string
	Config   *config.Config
	Agent    *agent_api.AgentObject
	Deleted  []agent_api.AgentObject
	Verified bool
}

type Provisioner struct {
	newService    ServiceFactory
	printer       *output.Printer
	lookupEnv     func(string) (string, bool)
	recorder      Recorder
	clock         clock.Clock
	verifyBackoff func() retry.Backoff
}

type Option func(*Provisioner)

// WithLookupEnv overrides how configuration and prompt variables are read. Defaults to os.LookupEnv.
func WithLookupEnv(lookup func(string) (string, bool)) Option {
	return func(p *Provisioner) {
		p.lookupEnv = lookup
	}
}

// WithRecorder records every successful run.
func WithRecorder(recorder Recorder) Option {
	return func(p *Provisioner) {
		p.recorder = recorder
	}
}

func WithClock(c clock.Clock) Option {
	return func(p *Provisioner) {
		p.clock = c
	}
}

// WithVerifyBackoff sets the backoff used while waiting for a created agent to become readable.
// The factory is called once per run since backoffs are stateful.
func WithVerifyBackoff(backoff func() retry.Backoff) Option {
	return func(p *Provisioner) {
		p.verifyBackoff = backoff
	}
}

func New(newService ServiceFactory, printer *output.Printer, options ...Option) *Provisioner {
	p := &Provisioner{
		newService: newService,
		printer:    printer,
		lookupEnv:  os.LookupEnv,
		clock:      clock.New(),
		verifyBackoff: func() retry.Backoff {
			return retry.WithMaxRetries(4, retry.NewConstant(2*time.Second))
		},
	}

	for _, option := range options {
		option(p)
	}

	return p
}

// Provision runs the full sequence: resolve configuration, load the prompt, connect, clean up
// existing agents, create the agent and write its id to the env file. Configuration and prompt
// failures are returned before any remote call is made.
func (p *Provisioner) Provision(ctx context.Context, options Options) (result *Result, err error) {
	ctx, span := tracing.Tracer().Start(ctx, "provision")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if options.EnvFile == "" {
		return nil, exterrors.Validation(
			exterrors.CodeMissingEnvFile,
			"no env file to record AGENT_ID in",
			"pass --env-file with the path of the env file, e.g. --env-file .env",
		)
	}

	cfg, err := config.Resolve(p.lookupEnv)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	span.SetAttributes(
		attribute.String("run.id", runID),
		attribute.String("agent.name", cfg.AgentName),
		attribute.String("agent.model", cfg.ModelDeploymentName),
	)

	p.printer.Banner("Azure AI Foundry - Agent Setup")
	p.printer.Blank()
	p.printer.Line("Project Endpoint: %s", cfg.ProjectEndpoint)
	p.printer.Line("Model: %s", cfg.ModelDeploymentName)
	p.printer.Line("Agent Name: %s", cfg.AgentName)
	p.printer.Blank()

	p.printer.Step(1, totalSteps, "Loading system prompt...")
	instructions, err := p.loadPrompt(ctx, options)
	if err != nil {
		return nil, err
	}
	p.printer.Success("Loaded %d characters", utf8.RuneCountInString(instructions))

	p.printer.Step(2, totalSteps, "Connecting to Azure AI Foundry...")
	service, err := p.newService(ctx, cfg)
	if err != nil {
		return nil, err
	}
	p.printer.Success("Connected")

	p.printer.Step(3, totalSteps, "Cleaning up existing agents...")
	deleted, err := Cleanup(ctx, service, cfg.AgentName, p.printer, false)
	if err != nil {
		return nil, err
	}

	p.printer.Step(4, totalSteps, "Creating agent...")
	agent, err := p.create(ctx, service, cfg, instructions, runID)
	if err != nil {
		return nil, err
	}
	p.printer.Success("Agent created!")

	result = &Result{
		RunID:   runID,
		Config:  cfg,
		Agent:   agent,
		Deleted: deleted,
	}

	if !options.SkipVerify {
		if err := p.verify(ctx, service, agent.Name); err != nil {
			if exterrors.IsCancellation(err) {
				return nil, exterrors.Cancelled("waiting for the agent was cancelled")
			}
			p.printer.Warning("Agent %s is not readable yet: %v", agent.Name, err)
		} else {
			result.Verified = true
			p.printer.Success("Agent is available")
		}
	}

	p.printer.Blank()
	p.printer.Banner("Agent Details")
	p.printer.Line("  ID: %s", agent.ID)
	p.printer.Line("  Name: %s", agent.Name)
	p.printer.Line("  Model: %s", cfg.ModelDeploymentName)
	p.printer.Line("  Tools: %d", len(toolcatalog.All()))
	p.printer.Blank()

	if err := envfile.SetAgentID(options.EnvFile, agent.ID); err != nil {
		return result, exterrors.Wrap(
			exterrors.Dependency(
				exterrors.CodeEnvFileSaveFailed,
				fmt.Sprintf("agent %s was created but %s could not be updated", agent.ID, options.EnvFile),
				fmt.Sprintf("add AGENT_ID=%s to %s manually", agent.ID, options.EnvFile),
			),
			err,
		)
	}
	p.printer.Line("%s Updated %s with AGENT_ID", output.WithSuccessFormat("✓"), options.EnvFile)

	p.record(ctx, result)

	p.printer.Blank()
	p.printer.Line("Next steps:")
	p.printer.Line("  1. Test the agent in the Azure AI Foundry portal")
	p.printer.Line("  2. Serve the agent's tools: %s", output.WithHighLightFormat("gnoagent tools serve"))
	p.printer.Line("  3. Start the planner API and chat with %s", agent.Name)
	p.printer.Blank()

	return result, nil
}

func (p *Provisioner) loadPrompt(ctx context.Context, options Options) (string, error) {
	_, span := tracing.Tracer().Start(ctx, "provision.load_prompt",
		trace.WithAttributes(attribute.String("prompt.path", options.PromptPath)))
	defer span.End()

	data, err := os.ReadFile(options.PromptPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", exterrors.Wrap(
			exterrors.Dependency(
				exterrors.CodePromptNotFound,
				fmt.Sprintf("system prompt file not found: %s", options.PromptPath),
				"pass the path of the system prompt markdown file with --prompt",
			),
			err,
		)
	}
	if err != nil {
		return "", fmt.Errorf("reading system prompt: %w", err)
	}

	instructions := string(data)
	if !options.ExpandPrompt {
		return instructions, nil
	}

	expanded, err := envsubst.Eval(instructions, func(name string) string {
		value, _ := p.lookupEnv(name)
		return value
	})
	if err != nil {
		return "", exterrors.Wrap(
			exterrors.Validation(
				exterrors.CodeInvalidPrompt,
				fmt.Sprintf("expanding variables in %s", options.PromptPath),
				"escape literal dollar signs as $$ or run without --expand-prompt",
			),
			err,
		)
	}

	return expanded, nil
}

// CreateRequest builds the create request for the configured agent.
func CreateRequest(cfg *config.Config, instructions string, runID string) *agent_api.CreateAgentRequest {
	description := Description

	return &agent_api.CreateAgentRequest{
		Name: cfg.AgentName,
		CreateAgentVersionRequest: agent_api.CreateAgentVersionRequest{
			Description: &description,
			Metadata: map[string]string{
				MetadataRunID:     runID,
				MetadataCreatedBy: version.UserAgent(),
			},
			Definition: agent_api.PromptAgentDefinition{
				AgentDefinition: agent_api.AgentDefinition{Kind: agent_api.AgentKindPrompt},
				Model:           cfg.ModelDeploymentName,
				Instructions:    &instructions,
				Tools:           toolcatalog.AgentTools(),
			},
		},
	}
}

func (p *Provisioner) create(
	ctx context.Context,
	service AgentService,
	cfg *config.Config,
	instructions string,
	runID string,
) (*agent_api.AgentObject, error) {
	ctx, span := tracing.Tracer().Start(ctx, "provision.create")
	defer span.End()

	agent, err := service.CreateAgent(ctx, CreateRequest(cfg, instructions, runID))
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("agent.id", agent.ID))
	log.Printf("created agent %s (%s)", agent.Name, agent.ID)

	return agent, nil
}

// verify waits until the agent can be read back by name.
func (p *Provisioner) verify(ctx context.Context, service AgentService, agentName string) error {
	ctx, span := tracing.Tracer().Start(ctx, "provision.verify")
	defer span.End()

	attempt := 0
	return retry.Do(ctx, p.verifyBackoff(), func(ctx context.Context) error {
		attempt++
		span.SetAttributes(attribute.Int("verify.attempts", attempt))

		_, err := service.GetAgent(ctx, agentName)
		if err == nil {
			return nil
		}

		var serviceErr *exterrors.ServiceError
		if errors.As(err, &serviceErr) && serviceErr.StatusCode == http.StatusNotFound {
			log.Printf("agent %s not visible yet (attempt %d)", agentName, attempt)
			return retry.RetryableError(err)
		}

		return err
	})
}

func (p *Provisioner) record(ctx context.Context, result *Result) {
	if p.recorder == nil {
		return
	}

	run := history.Run{
		RunID:        result.RunID,
		AgentName:    result.Agent.Name,
		AgentID:      result.Agent.ID,
		Model:        result.Config.ModelDeploymentName,
		Endpoint:     result.Config.ProjectEndpoint,
		DeletedCount: len(result.Deleted),
		CreatedAt:    p.clock.Now().UTC(),
	}

	if err := p.recorder.Record(ctx, run); err != nil {
		p.printer.Warning("Could not record run in history: %v", err)
	}
}
