package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/repvault/repvault/internal/contract"
	"github.com/repvault/repvault/internal/snapshot"
	"github.com/repvault/repvault/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	cache   contract.Cache
	limiter contract.Limiter
	mgr     *snapshot.Manager
}

func (h *toolHandler) handleGetCacheStatus(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload := struct {
		Status  schema.CacheStatus      `json:"status"`
		Entries []schema.CacheEntryInfo `json:"entries,omitempty"`
	}{
		Status: h.cache.Status(),
	}
	if request.GetBool("include_entries", true) {
		payload.Entries = h.cache.Entries()
	}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleSweepCache(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	removed := h.cache.SweepExpired()

	payload := struct {
		Removed int                `json:"removed"`
		Status  schema.CacheStatus `json:"status"`
	}{
		Removed: removed,
		Status:  h.cache.Status(),
	}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleInvalidateCache(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := request.GetString("key", "")
	prefix := request.GetString("prefix", "")
	all := request.GetBool("all", false)

	var scope string
	switch {
	case all:
		h.cache.InvalidateAll()
		scope = "all entries"
	case prefix != "":
		h.cache.InvalidatePrefix(prefix)
		scope = fmt.Sprintf("entries with prefix %q", prefix)
	case key != "":
		h.cache.Invalidate(key)
		scope = fmt.Sprintf("entry %q", key)
	default:
		return mcp.NewToolResultError("one of key, prefix or all is required"), nil
	}

	payload := struct {
		Invalidated string             `json:"invalidated"`
		Status      schema.CacheStatus `json:"status"`
	}{
		Invalidated: scope,
		Status:      h.cache.Status(),
	}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleProbeLimiter(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonData, _ := json.MarshalIndent(h.limiter.Status(), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetSessionStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store := h.mgr.GetSessionStore()
	status, err := store.Status()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("session store probe failed: %v", err)), nil
	}

	payload := struct {
		Status   schema.SessionStoreStatus  `json:"status"`
		Snapshot *schema.ActiveSessionState `json:"snapshot,omitempty"`
	}{
		Status: status,
	}
	if state, ok := store.Restore(); ok {
		payload.Snapshot = &state
	}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListSessionHistory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history := h.mgr.GetHistoryStore()
	if history == nil {
		return mcp.NewToolResultError(fmt.Sprintf("session history requires the %s backend", schema.SQLiteBackend)), nil
	}

	limit := request.GetInt("limit", contract.DefaultHistoryLimit)
	if limit < 1 || limit > contract.MaxHistoryLimit {
		return mcp.NewToolResultError(fmt.Sprintf("limit must be between 1 and %d", contract.MaxHistoryLimit)), nil
	}

	records, err := history.ListSessions(limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history query failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(records, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
