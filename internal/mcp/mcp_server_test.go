package mcp_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/internal/diskcache"
	mcp_internal "github.com/repvault/repvault/internal/mcp"
	"github.com/repvault/repvault/internal/ratelimit"
	"github.com/repvault/repvault/internal/snapshot"
	"github.com/repvault/repvault/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServerHandlers(t *testing.T) {
	dir := t.TempDir()
	cfg := &contract.Config{
		CacheDir:        filepath.Join(dir, "cache"),
		SnapshotPath:    filepath.Join(dir, "session.json"),
		StalenessCutoff: contract.DefaultStalenessCutoff,
	}
	cache := diskcache.New(cfg.CacheDir)
	limiter := ratelimit.New(3, 10*time.Second)
	mgr, err := snapshot.NewManager(schema.FileBackend, cfg)
	require.NoError(t, err)

	s := mcp_internal.NewMCPServer(cfg, cache, limiter, mgr)
	ctx := context.Background()

	t.Run("get_cache_status reports entries", func(t *testing.T) {
		cache.Set("exercises", []byte(`{"count":42}`), time.Minute)

		tool := s.GetTool("get_cache_status")
		require.NotNil(t, tool, "Tool get_cache_status should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_cache_status",
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.False(t, res.IsError)

		var payload struct {
			Status  schema.CacheStatus      `json:"status"`
			Entries []schema.CacheEntryInfo `json:"entries"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &payload))
		assert.Equal(t, 1, payload.Status.TotalEntries)
		require.Len(t, payload.Entries, 1)
		assert.Equal(t, "exercises", payload.Entries[0].Key)
	})

	t.Run("invalidate_cache requires a scope", func(t *testing.T) {
		tool := s.GetTool("invalidate_cache")
		require.NotNil(t, tool, "Tool invalidate_cache should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name:      "invalidate_cache",
				Arguments: map[string]any{},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "one of key, prefix or all is required")
	})

	t.Run("invalidate_cache by key", func(t *testing.T) {
		cache.Set("doomed", []byte("x"), time.Minute)

		tool := s.GetTool("invalidate_cache")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "invalidate_cache",
				Arguments: map[string]any{
					"key": "doomed",
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.False(t, res.IsError)
		_, ok := cache.Get("doomed")
		assert.False(t, ok, "the entry should be gone after invalidation")
	})

	t.Run("probe_limiter reflects recorded requests", func(t *testing.T) {
		limiter.Reset()
		limiter.RecordRequest()

		tool := s.GetTool("probe_limiter")
		require.NotNil(t, tool, "Tool probe_limiter should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "probe_limiter",
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.False(t, res.IsError)

		var status schema.LimiterStatus
		require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &status))
		assert.Equal(t, 1, status.Used)
		assert.Equal(t, 2, status.Remaining)
	})

	t.Run("get_session_status includes a resumable snapshot", func(t *testing.T) {
		state := schema.ActiveSessionState{
			WorkoutKind:    schema.StrengthWorkout,
			StartedAt:      time.Now().Add(-10 * time.Minute),
			ElapsedSeconds: 600,
		}
		require.NoError(t, mgr.GetSessionStore().Save(state))

		tool := s.GetTool("get_session_status")
		require.NotNil(t, tool, "Tool get_session_status should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "get_session_status",
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.False(t, res.IsError)

		var payload struct {
			Status   schema.SessionStoreStatus  `json:"status"`
			Snapshot *schema.ActiveSessionState `json:"snapshot"`
		}
		require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &payload))
		require.NotNil(t, payload.Snapshot)
		assert.Equal(t, schema.StrengthWorkout, payload.Snapshot.WorkoutKind)
	})

	t.Run("list_session_history rejects the file backend", func(t *testing.T) {
		tool := s.GetTool("list_session_history")
		require.NotNil(t, tool, "Tool list_session_history should exist")

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "list_session_history",
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "sqlite backend")
	})

	t.Run("list_session_history rejects an absurd limit", func(t *testing.T) {
		dbCfg := cfg.Clone()
		dbCfg.SessionDBPath = filepath.Join(dir, "history.db")
		dbMgr, err := snapshot.NewManager(schema.SQLiteBackend, dbCfg)
		require.NoError(t, err)
		defer dbMgr.Close()

		dbServer := mcp_internal.NewMCPServer(dbCfg, cache, limiter, dbMgr)
		tool := dbServer.GetTool("list_session_history")
		require.NotNil(t, tool)

		req := mcp.CallToolRequest{
			Params: mcp.CallToolParams{
				Name: "list_session_history",
				Arguments: map[string]any{
					"limit": 5000.0, // Over the cap
				},
			},
		}

		res, err := tool.Handler(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, res.Content[0].(mcp.TextContent).Text, "limit must be between 1 and")
	})
}

func TestSweepCacheTool(t *testing.T) {
	dir := t.TempDir()
	cfg := &contract.Config{
		CacheDir:        filepath.Join(dir, "cache"),
		SnapshotPath:    filepath.Join(dir, "session.json"),
		StalenessCutoff: contract.DefaultStalenessCutoff,
	}

	current := time.Now()
	cache := diskcache.NewWithClock(cfg.CacheDir, func() time.Time { return current })
	limiter := ratelimit.New(3, 10*time.Second)
	mgr, err := snapshot.NewManager(schema.FileBackend, cfg)
	require.NoError(t, err)

	cache.Set("short", []byte("a"), time.Second)
	cache.Set("long", []byte("b"), time.Hour)
	current = current.Add(time.Minute) // "short" is now expired

	s := mcp_internal.NewMCPServer(cfg, cache, limiter, mgr)
	tool := s.GetTool("sweep_cache")
	require.NotNil(t, tool, "Tool sweep_cache should exist")

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "sweep_cache",
		},
	}

	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var payload struct {
		Removed int                `json:"removed"`
		Status  schema.CacheStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(mcp.TextContent).Text), &payload))
	assert.Equal(t, 1, payload.Removed)
	assert.Equal(t, 1, payload.Status.TotalEntries)
}
