// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, store.Record(ctx, Run{
			RunID:        id,
			AgentName:    "GNOPlanner",
			AgentID:      "agent-" + id,
			Model:        "gpt-4o",
			Endpoint:     "https://contoso.services.ai.azure.com/api/projects/gno",
			DeletedCount: i,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	t.Run("NewestFirst", func(t *testing.T) {
		runs, err := store.List(ctx, 0)
		require.NoError(t, err)
		require.Len(t, runs, 3)
		require.Equal(t, "run-3", runs[0].RunID)
		require.Equal(t, "run-1", runs[2].RunID)
		require.Equal(t, 2, runs[0].DeletedCount)
		require.True(t, base.Add(2*time.Minute).Equal(runs[0].CreatedAt))
	})

	t.Run("Limit", func(t *testing.T) {
		runs, err := store.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		require.Equal(t, "run-2", runs[1].RunID)
	})

	t.Run("DuplicateRunID", func(t *testing.T) {
		err := store.Record(ctx, Run{RunID: "run-1", CreatedAt: base})
		require.Error(t, err)
	})

	t.Run("Reopen", func(t *testing.T) {
		require.NoError(t, store.Close())

		reopened, err := Open(path)
		require.NoError(t, err)
		defer reopened.Close()

		runs, err := reopened.List(ctx, 10)
		require.NoError(t, err)
		require.Len(t, runs, 3)
	})
}

func TestLazyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	lazy := OpenLazy(path)
	require.NoFileExists(t, path)

	t.Run("CloseWithoutRecord", func(t *testing.T) {
		require.NoError(t, OpenLazy(path).Close())
		require.NoFileExists(t, path)
	})

	t.Run("RecordOpens", func(t *testing.T) {
		require.NoError(t, lazy.Record(context.Background(), Run{
			RunID:     "run-1",
			AgentName: "GNOPlanner",
			AgentID:   "asst_001",
			CreatedAt: time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC),
		}))
		require.NoError(t, lazy.Close())
		require.FileExists(t, path)

		store, err := Open(path)
		require.NoError(t, err)
		defer store.Close()

		runs, err := store.List(context.Background(), 0)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		require.Equal(t, "asst_001", runs[0].AgentID)
	})

	t.Run("OpenFailure", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0600))

		err := OpenLazy(filepath.Join(blocker, "history.db")).Record(context.Background(), Run{RunID: "run-2"})
		require.ErrorContains(t, err, "opening history database")
	})
}
