// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package provision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"gnoagent/internal/config"
	"gnoagent/internal/exterrors"
	"gnoagent/internal/history"
	"gnoagent/internal/output"
	"gnoagent/internal/pkg/agents/agent_api"
)

const testEndpoint = "https://contoso.services.ai.azure.com/api/projects/gno"

// fakeAgentService is an in-memory project.
type fakeAgentService struct {
	mu        sync.Mutex
	agents    []agent_api.AgentObject
	nextID    int
	creates   []*agent_api.CreateAgentRequest
	deletes   []string
	listErr   error
	hiddenFor int
	gets      int
}

func newFakeAgentService(names ...string) *fakeAgentService {
	f := &fakeAgentService{}
	for _, name := range names {
		f.add(name)
	}
	return f
}

func (f *fakeAgentService) add(name string) agent_api.AgentObject {
	f.nextID++
	agent := agent_api.AgentObject{
		Object: "agent",
		ID:     fmt.Sprintf("asst_%03d", f.nextID),
		Name:   name,
	}
	f.agents = append(f.agents, agent)
	return agent
}

func (f *fakeAgentService) ListAgents(context.Context) ([]agent_api.AgentObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]agent_api.AgentObject(nil), f.agents...), nil
}

func (f *fakeAgentService) DeleteAgent(_ context.Context, agentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, agentID)
	for i, agent := range f.agents {
		if agent.ID == agentID {
			f.agents = append(f.agents[:i], f.agents[i+1:]...)
			return nil
		}
	}
	return &exterrors.ServiceError{ErrorCode: "delete_agent.NotFound", StatusCode: http.StatusNotFound}
}

func (f *fakeAgentService) CreateAgent(
	_ context.Context,
	request *agent_api.CreateAgentRequest,
) (*agent_api.AgentObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creates = append(f.creates, request)
	agent := f.add(request.Name)
	return &agent, nil
}

func (f *fakeAgentService) GetAgent(_ context.Context, agentName string) (*agent_api.AgentObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.gets++
	if f.gets <= f.hiddenFor {
		return nil, &exterrors.ServiceError{ErrorCode: "get_agent.NotFound", StatusCode: http.StatusNotFound}
	}
	for _, agent := range f.agents {
		if agent.Name == agentName {
			return &agent, nil
		}
	}
	return nil, &exterrors.ServiceError{ErrorCode: "get_agent.NotFound", StatusCode: http.StatusNotFound}
}

func (f *fakeAgentService) named(name string) []agent_api.AgentObject {
	f.mu.Lock()
	defer f.mu.Unlock()

	var named []agent_api.AgentObject
	for _, agent := range f.agents {
		if agent.Name == name {
			named = append(named, agent)
		}
	}
	return named
}

type fakeRecorder struct {
	runs []history.Run
}

func (r *fakeRecorder) Record(_ context.Context, run history.Run) error {
	r.runs = append(r.runs, run)
	return nil
}

type fixture struct {
	service   *fakeAgentService
	connected int
	env       map[string]string
	options   Options
	out       *bytes.Buffer
}

func newFixture(t *testing.T, service *fakeAgentService) *fixture {
	dir := t.TempDir()
	promptPath := filepath.Join(dir, "gno-system-prompt.md")
	require.NoError(t, os.WriteFile(promptPath, []byte("You are GNO Planner."), 0600))

	return &fixture{
		service: service,
		env: map[string]string{
			config.EnvProjectEndpoint: testEndpoint,
		},
		options: Options{
			PromptPath: promptPath,
			EnvFile:    filepath.Join(dir, ".env"),
		},
		out: &bytes.Buffer{},
	}
}

func (f *fixture) provisioner(options ...Option) *Provisioner {
	factory := func(context.Context, *config.Config) (AgentService, error) {
		f.connected++
		return f.service, nil
	}
	lookup := func(key string) (string, bool) {
		value, has := f.env[key]
		return value, has
	}

	options = append([]Option{
		WithLookupEnv(lookup),
		WithVerifyBackoff(func() retry.Backoff {
			return retry.WithMaxRetries(4, retry.NewConstant(time.Millisecond))
		}),
	}, options...)

	return New(factory, output.NewPrinter(f.out), options...)
}

func TestProvision(t *testing.T) {
	t.Run("CreatesAgent", func(t *testing.T) {
		f := newFixture(t, newFakeAgentService())

		result, err := f.provisioner().Provision(context.Background(), f.options)
		require.NoError(t, err)

		require.Equal(t, "asst_001", result.Agent.ID)
		require.Equal(t, config.DefaultAgentName, result.Agent.Name)
		require.Empty(t, result.Deleted)
		require.True(t, result.Verified)
		require.NotEmpty(t, result.RunID)

		require.Len(t, f.service.creates, 1)
		definition := f.service.creates[0].Definition.(agent_api.PromptAgentDefinition)
		require.Equal(t, config.DefaultModelDeploymentName, definition.Model)
		require.Equal(t, "You are GNO Planner.", *definition.Instructions)
		require.Equal(t, Description, *f.service.creates[0].Description)
		require.Equal(t, result.RunID, f.service.creates[0].Metadata[MetadataRunID])

		out := f.out.String()
		require.Contains(t, out, "Azure AI Foundry - Agent Setup")
		require.Contains(t, out, "Project Endpoint: "+testEndpoint)
		require.Contains(t, out, "Loaded 20 characters")
		require.Contains(t, out, "No existing agents to clean up")
		require.Contains(t, out, "ID: asst_001")
		require.Contains(t, out, "with AGENT_ID")
	})

	t.Run("IsIdempotent", func(t *testing.T) {
		f := newFixture(t, newFakeAgentService("OtherAgent"))
		p := f.provisioner()

		first, err := p.Provision(context.Background(), f.options)
		require.NoError(t, err)
		second, err := p.Provision(context.Background(), f.options)
		require.NoError(t, err)

		require.NotEqual(t, first.Agent.ID, second.Agent.ID)
		require.Equal(t, []string{first.Agent.ID}, f.service.deletes)

		named := f.service.named(config.DefaultAgentName)
		require.Len(t, named, 1)
		require.Equal(t, second.Agent.ID, named[0].ID)
		require.Len(t, f.service.named("OtherAgent"), 1)

		env, err := os.ReadFile(f.options.EnvFile)
		require.NoError(t, err)
		require.Equal(t, 1, strings.Count(string(env), "AGENT_ID="))
		require.Contains(t, string(env), "AGENT_ID="+second.Agent.ID+"\n")
	})

	t.Run("DeletesPrefixedAgents", func(t *testing.T) {
		f := newFixture(t, newFakeAgentService("GNOPlanner", "GNOPlanner-old", "OtherAgent"))

		result, err := f.provisioner().Provision(context.Background(), f.options)
		require.NoError(t, err)

		var deleted []string
		for _, agent := range result.Deleted {
			deleted = append(deleted, agent.Name)
		}
		require.Equal(t, []string{"GNOPlanner", "GNOPlanner-old"}, deleted)
		require.Equal(t, []string{"asst_001", "asst_002"}, f.service.deletes)
		require.Len(t, f.service.named("OtherAgent"), 1)
		require.Empty(t, f.service.named("GNOPlanner-old"))

		out := f.out.String()
		require.Contains(t, out, "Deleting existing agent: GNOPlanner (asst_001)")
		require.Contains(t, out, "Deleting existing agent: GNOPlanner-old (asst_002)")
		require.Contains(t, out, "Deleted 2 existing agent(s)")
	})

	t.Run("UsesConfiguredNames", func(t *testing.T) {
		f := newFixture(t, newFakeAgentService("GNOPlanner"))
		f.env[config.EnvAgentName] = "GNOPlannerDev"
		f.env[config.EnvModelDeploymentName] = "gpt-4.1"

		result, err := f.provisioner().Provision(context.Background(), f.options)
		require.NoError(t, err)

		require.Empty(t, result.Deleted)
		require.Equal(t, "GNOPlannerDev", result.Agent.Name)
		definition := f.service.creates[0].Definition.(agent_api.PromptAgentDefinition)
		require.Equal(t, "gpt-4.1", definition.Model)
	})

	t.Run("PreservesEnvFile", func(t *testing.T) {
		f := newFixture(t, newFakeAgentService())
		existing := "PROJECT_ENDPOINT=" + testEndpoint + "\nAGENT_ID=asst_stale\n# keep me\nFOO=bar\n"
		require.NoError(t, os.WriteFile(f.options.EnvFile, []byte(existing), 0600))

		result, err := f.provisioner().Provision(context.Background(), f.options)
		require.NoError(t, err)

		env, err := os.ReadFile(f.options.EnvFile)
		require.NoError(t, err)

		expected := "PROJECT_ENDPOINT=" + testEndpoint + "\n# keep me\nFOO=bar\n\n" +
			"# Agent created by gnoagent provision\nAGENT_ID=" + result.Agent.ID + "\n"
		require.Equal(t, expected, string(env))
	})

	t.Run("ExpandsPrompt", func(t *testing.T) {
		f := newFixture(t, newFakeAgentService())
		require.NoError(t, os.WriteFile(f.options.PromptPath, []byte("Plan nights out in ${GNO_CITY}."), 0600))
		f.env["GNO_CITY"] = "Dallas"
		f.options.ExpandPrompt = true

		_, err := f.provisioner().Provision(context.Background(), f.options)
		require.NoError(t, err)

		definition := f.service.creates[0].Definition.(agent_api.PromptAgentDefinition)
		require.Equal(t, "Plan nights out in Dallas.", *definition.Instructions)
	})

	t.Run("KeepsPromptVerbatimWithoutExpand", func(t *testing.T) {
		f := newFixture(t, newFakeAgentService())
		require.NoError(t, os.WriteFile(f.options.PromptPath, []byte("Costs ${PRICE}"), 0600))

		_, err := f.provisioner().Provision(context.Background(), f.options)
		require.NoError(t, err)

		definition := f.service.creates[0].Definition.(agent_api.PromptAgentDefinition)
		require.Equal(t, "Costs ${PRICE}", *definition.Instructions)
	})

	t.Run("RecordsHistory", func(t *testing.T) {
		f := newFixture(t, newFakeAgentService("GNOPlanner"))
		recorder := &fakeRecorder{}
		mockClock := clock.NewMock()
		now := time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC)
		mockClock.Set(now)

		result, err := f.provisioner(WithRecorder(recorder), WithClock(mockClock)).
			Provision(context.Background(), f.options)
		require.NoError(t, err)

		require.Equal(t, []history.Run{{
			RunID:        result.RunID,
			AgentName:    "GNOPlanner",
			AgentID:      "asst_002",
			Model:        config.DefaultModelDeploymentName,
			Endpoint:     testEndpoint,
			DeletedCount: 1,
			CreatedAt:    now,
		}}, recorder.runs)
	})
}

func TestProvisionFailures(t *testing.T) {
	t.Run("MissingEndpoint", func(t *testing.T) {
		f := newFixture(t, newFakeAgentService())
		delete(f.env, config.EnvProjectEndpoint)

		_, err := f.provisioner().Provision(context.Background(), f.options)

		var localErr *exterrors.LocalError
		require.ErrorAs(t, err, &localErr)
		require.Equal(t, exterrors.CodeMissingProjectEndpoint, localErr.Code)
		require.Zero(t, f.connected)
		require.Empty(t, f.service.creates)
		require.NoFileExists(t, f.options.EnvFile)
	})

	t.Run("EmptyEnvFile", func(t *testing.T) {
		f := newFixture(t, newFakeAgentService())
		f.options.EnvFile = ""

		_, err := f.provisioner().Provision(context.Background(), f.options)

		var localErr *exterrors.LocalError
		require.ErrorAs(t, err, &localErr)
		require.Equal(t, exterrors.CodeMissingEnvFile, localErr.Code)
		require.Zero(t, f.connected)
		require.Empty(t, f.service.creates)
		require.Empty(t, f.out.String())
	})

	t.Run("MissingPrompt", func(t *testing.T) {
		f := newFixture(t, newFakeAgentService())
		f.options.PromptPath = filepath.Join(t.TempDir(), "missing.md")

		_, err := f.provisioner().Provision(context.Background(), f.options)

		var localErr *exterrors.LocalError
		require.ErrorAs(t, err, &localErr)
		require.Equal(t, exterrors.CodePromptNotFound, localErr.Code)
		require.ErrorIs(t, err, os.ErrNotExist)
		require.Zero(t, f.connected)
		require.NoFileExists(t, f.options.EnvFile)
	})

	t.Run("ConnectFails", func(t *testing.T) {
		f := newFixture(t, newFakeAgentService())
		p := New(
			func(context.Context, *config.Config) (AgentService, error) {
				return nil, errors.New("no credential")
			},
			output.NewPrinter(f.out),
			WithLookupEnv(func(key string) (string, bool) {
				value, has := f.env[key]
				return value, has
			}),
		)

		_, err := p.Provision(context.Background(), f.options)
		require.EqualError(t, err, "no credential")
		require.NoFileExists(t, f.options.EnvFile)
	})

	t.Run("ListFails", func(t *testing.T) {
		service := newFakeAgentService("GNOPlanner")
		service.listErr = &exterrors.ServiceError{
			Message:    "list_agents: denied",
			ErrorCode:  "list_agents.PermissionDenied",
			StatusCode: http.StatusForbidden,
		}
		f := newFixture(t, service)

		_, err := f.provisioner().Provision(context.Background(), f.options)

		var serviceErr *exterrors.ServiceError
		require.ErrorAs(t, err, &serviceErr)
		require.Equal(t, "list_agents.PermissionDenied", serviceErr.ErrorCode)
		require.Empty(t, service.creates)
		require.Empty(t, service.deletes)
		require.Len(t, service.named("GNOPlanner"), 1)
		require.NoFileExists(t, f.options.EnvFile)
	})
}

func TestProvisionVerify(t *testing.T) {
	t.Run("RetriesUntilVisible", func(t *testing.T) {
		service := newFakeAgentService()
		service.hiddenFor = 2
		f := newFixture(t, service)

		result, err := f.provisioner().Provision(context.Background(), f.options)
		require.NoError(t, err)
		require.True(t, result.Verified)
		require.Equal(t, 3, service.gets)
	})

	t.Run("WarnsWhenNeverVisible", func(t *testing.T) {
		service := newFakeAgentService()
		service.hiddenFor = 100
		f := newFixture(t, service)

		result, err := f.provisioner().Provision(context.Background(), f.options)
		require.NoError(t, err)
		require.False(t, result.Verified)
		require.Equal(t, 5, service.gets)
		require.Contains(t, f.out.String(), "is not readable yet")
		require.FileExists(t, f.options.EnvFile)
	})

	t.Run("Skipped", func(t *testing.T) {
		service := newFakeAgentService()
		f := newFixture(t, service)
		f.options.SkipVerify = true

		result, err := f.provisioner().Provision(context.Background(), f.options)
		require.NoError(t, err)
		require.False(t, result.Verified)
		require.Zero(t, service.gets)
	})
}

func TestCreateRequest(t *testing.T) {
	cfg := &config.Config{
		ProjectEndpoint:     testEndpoint,
		ModelDeploymentName: "gpt-4o",
		AgentName:           "GNOPlanner",
	}

	payload, err := json.Marshal(CreateRequest(cfg, "instructions", "run-1"))
	require.NoError(t, err)

	body := gjson.ParseBytes(payload)
	require.Equal(t, "GNOPlanner", body.Get("name").String())
	require.Equal(t, Description, body.Get("description").String())
	require.Equal(t, "run-1", body.Get("metadata."+MetadataRunID).String())
	require.Equal(t, "prompt", body.Get("definition.kind").String())
	require.Equal(t, "gpt-4o", body.Get("definition.model").String())
	require.Equal(t, "instructions", body.Get("definition.instructions").String())

	tools := body.Get("definition.tools").Array()
	require.Len(t, tools, 6)

	required := map[string][]string{}
	for _, tool := range tools {
		require.Equal(t, "function", tool.Get("type").String())
		require.False(t, tool.Get("strict").Bool())
		require.False(t, tool.Get("parameters.additionalProperties").Bool())

		var names []string
		for _, name := range tool.Get("parameters.required").Array() {
			names = append(names, name.String())
		}
		required[tool.Get("name").String()] = names
	}

	require.Equal(t, map[string][]string{
		"search_restaurants":     {"location", "party_size"},
		"search_bars":            {"location"},
		"search_events":          {"location", "date"},
		"get_rideshare_estimate": {"pickup_address", "dropoff_address"},
		"get_directions":         {"origin", "destination", "mode"},
		"check_availability":     {"venue_id", "venue_name", "date", "time", "party_size"},
	}, required)
}
