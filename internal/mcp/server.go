// Package mcp provides the stdio MCP server exposing bookmark tools for coding agents.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/go-ports/dm/internal/buildinfo"
	"github.com/go-ports/dm/internal/service"
)

const listDescription = `List every directory bookmark as name/path pairs, ordered by name.`

const lookupDescription = `Resolve a bookmark name to its absolute directory path. Use this instead of guessing where a project lives on disk.`

const addDescription = `Bookmark a directory under a short name. If name is omitted the final path segment is used. An existing bookmark with the same name is replaced.`

const removeDescription = `Delete a bookmark by name.`

// NewServer creates and registers all bookmark tools on a new MCP server.
// It is separate from Serve so tests can obtain a configured server without
// committing to the stdio transport.
func NewServer(svc *service.Service) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("dm", buildinfo.Version)
	registerTools(s, svc)
	return s
}

// Serve starts the stdio MCP server for the store at home, blocking until
// stdin closes. An empty home is resolved the same way as for the CLI.
func Serve(_ context.Context, home string) error {
	svc, err := service.New(home)
	if err != nil {
		return fmt.Errorf("mcp: init service: %w", err)
	}
	defer svc.Close()

	return mcpserver.ServeStdio(NewServer(svc))
}

// registerTools wires all bookmark tools into the server.
func registerTools(s *mcpserver.MCPServer, svc *service.Service) {
	s.AddTool(mcp.NewTool("bookmark_list",
		mcp.WithDescription(listDescription),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleList(ctx, svc, req)
	})

	s.AddTool(mcp.NewTool("bookmark_lookup",
		mcp.WithDescription(lookupDescription),
		mcp.WithString("name",
			mcp.Description("Bookmark name."),
			mcp.Required(),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleLookup(ctx, svc, req)
	})

	s.AddTool(mcp.NewTool("bookmark_add",
		mcp.WithDescription(addDescription),
		mcp.WithString("path",
			mcp.Description("Absolute directory path to bookmark."),
			mcp.Required(),
		),
		mcp.WithString("name",
			mcp.Description("Bookmark name. Defaults to the final path segment."),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAdd(ctx, svc, req)
	})

	s.AddTool(mcp.NewTool("bookmark_remove",
		mcp.WithDescription(removeDescription),
		mcp.WithString("name",
			mcp.Description("Bookmark name."),
			mcp.Required(),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRemove(ctx, svc, req)
	})
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

func handleList(_ context.Context, svc *service.Service, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bookmarks := svc.List()
	out := make([]map[string]any, 0, len(bookmarks))
	for _, b := range bookmarks {
		out = append(out, map[string]any{"name": b.Name, "path": b.Path})
	}
	return jsonResult(out)
}

func handleLookup(_ context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	path, ok := svc.Lookup(name)
	if !ok {
		return mcp.NewToolResultError(notFound(name)), nil
	}
	return jsonResult(map[string]any{"name": name, "path": path})
}

func handleAdd(_ context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	b, err := svc.AddDir(path, req.GetString("name", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"name": b.Name, "path": b.Path})
}

func handleRemove(_ context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	removed, err := svc.Remove(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !removed {
		return mcp.NewToolResultError(notFound(name)), nil
	}
	return jsonResult(map[string]any{"name": name, "removed": true})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func notFound(name string) string {
	return fmt.Sprintf("bookmark %q not found", name)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
