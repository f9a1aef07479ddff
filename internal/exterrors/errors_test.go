// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package exterrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/stretchr/testify/require"
)

func newResponseError(t *testing.T, statusCode int, body string) error {
	req, err := http.NewRequest(http.MethodPost, "https://proj.services.ai.azure.com/api/projects/p/agents", nil)
	require.NoError(t, err)

	return runtime.NewResponseError(&http.Response{
		StatusCode: statusCode,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	})
}

func TestServiceFromAzure(t *testing.T) {
	t.Run("ResponseErrorWithCode", func(t *testing.T) {
		respErr := newResponseError(t, http.StatusConflict, `{"error":{"code":"Conflict","message":"exists"}}`)

		err := ServiceFromAzure(respErr, OpCreateAgent)

		var serviceErr *ServiceError
		require.ErrorAs(t, err, &serviceErr)
		require.Equal(t, "create_agent.Conflict", serviceErr.ErrorCode)
		require.Equal(t, http.StatusConflict, serviceErr.StatusCode)
		require.Equal(t, "proj.services.ai.azure.com", serviceErr.ServiceName)
		require.True(t, errors.Is(err, respErr))
	})

	t.Run("ResponseErrorWithoutCode", func(t *testing.T) {
		respErr := newResponseError(t, http.StatusInternalServerError, ``)

		err := ServiceFromAzure(fmt.Errorf("listing: %w", respErr), OpListAgents)

		var serviceErr *ServiceError
		require.ErrorAs(t, err, &serviceErr)
		require.Equal(t, "list_agents.500", serviceErr.ErrorCode)
	})

	t.Run("Cancelled", func(t *testing.T) {
		err := ServiceFromAzure(context.Canceled, OpDeleteAgent)

		var localErr *LocalError
		require.ErrorAs(t, err, &localErr)
		require.Equal(t, CodeCancelled, localErr.Code)
		require.Equal(t, LocalErrorCategoryUser, localErr.Category)
	})

	t.Run("Other", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		err := ServiceFromAzure(cause, OpGetAgent)

		var localErr *LocalError
		require.ErrorAs(t, err, &localErr)
		require.Equal(t, OpGetAgent, localErr.Code)
		require.Equal(t, LocalErrorCategoryInternal, localErr.Category)
		require.ErrorIs(t, err, cause)
		require.Equal(t, "get_agent: dial tcp: connection refused", err.Error())
	})

	t.Run("Nil", func(t *testing.T) {
		require.NoError(t, ServiceFromAzure(nil, OpGetAgent))
	})
}

func TestSuggestion(t *testing.T) {
	err := Validation(CodeMissingProjectEndpoint, "PROJECT_ENDPOINT not set", "set it in .env")
	require.Equal(t, "set it in .env", Suggestion(fmt.Errorf("loading config: %w", err)))
	require.Empty(t, Suggestion(errors.New("plain")))
}
