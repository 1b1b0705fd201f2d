// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/internal/snapshot"
)

// NewMCPServer initializes and configures the RepVault MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, cache contract.Cache, limiter contract.Limiter, mgr *snapshot.Manager) *server.MCPServer {
	s := server.NewMCPServer(
		"RepVault Diagnostics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		cache:   cache,
		limiter: limiter,
		mgr:     mgr,
	}

	// --- 1. Tool: get_cache_status ---
	s.AddTool(mcp.NewTool("get_cache_status",
		mcp.WithDescription("Inspect the disk cache: entry count, size on disk and per-entry freshness."),
		mcp.WithBoolean("include_entries", mcp.Description("Include per-entry metadata (key, age, size). Defaults to true.")),
	), h.handleGetCacheStatus)

	// --- 2. Tool: sweep_cache ---
	s.AddTool(mcp.NewTool("sweep_cache",
		mcp.WithDescription("Scan the disk cache and delete every expired entry, returning how many were removed."),
	), h.handleSweepCache)

	// --- 3. Tool: invalidate_cache ---
	s.AddTool(mcp.NewTool("invalidate_cache",
		mcp.WithDescription("Remove cache entries by exact key, by key prefix, or all at once."),
		mcp.WithString("key", mcp.Description("Exact key to invalidate.")),
		mcp.WithString("prefix", mcp.Description("Invalidate every entry whose key starts with this prefix.")),
		mcp.WithBoolean("all", mcp.Description("Invalidate every entry. Overrides key and prefix.")),
	), h.handleInvalidateCache)

	// --- 4. Tool: probe_limiter ---
	s.AddTool(mcp.NewTool("probe_limiter",
		mcp.WithDescription("Probe the outbound rate limiter: slots used, slots remaining and time until the next slot frees up."),
	), h.handleProbeLimiter)

	// --- 5. Tool: get_session_status ---
	s.AddTool(mcp.NewTool("get_session_status",
		mcp.WithDescription("Report the session store backend health and any resumable workout snapshot."),
	), h.handleGetSessionStatus)

	// --- 6. Tool: list_session_history ---
	s.AddTool(mcp.NewTool("list_session_history",
		mcp.WithDescription("List archived workout sessions, most recent first. Requires the sqlite backend."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleListSessionHistory)

	return s
}

// StartMCPServer starts the RepVault MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, cache contract.Cache, limiter contract.Limiter, mgr *snapshot.Manager) error {
	s := NewMCPServer(baseCfg, cache, limiter, mgr)
	return server.ServeStdio(s)
}
