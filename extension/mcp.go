// mcp.go defines how extensions contribute MCP tools.

package extension

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MCPTool pairs an MCP tool definition with its handler.
type MCPTool struct {
	Tool    mcp.Tool
	Handler MCPHandler
}

// MCPHandler processes MCP tool requests with access to the extension
// context.
type MCPHandler func(ctx context.Context, extCtx Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ServerTools binds the tools of every registered extension to extCtx.
func ServerTools(extCtx Context) []server.ServerTool {
	var tools []server.ServerTool
	for _, ext := range All() {
		for _, t := range ext.MCPTools() {
			tools = append(tools, Bind(extCtx, t))
		}
	}
	return tools
}

// Bind turns t into a server tool whose handler receives extCtx.
func Bind(extCtx Context, t MCPTool) server.ServerTool {
	handler := t.Handler
	return server.ServerTool{
		Tool: t.Tool,
		Handler: func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handler(ctx, extCtx, req)
		},
	}
}
