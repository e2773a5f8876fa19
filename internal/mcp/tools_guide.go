// tools_guide.go implements the MCP tool for reading the embedded guides.

package mcp

import (
	"context"
	"fmt"

	"github.com/aitormendez/nextcloud-mcp-server/guide"
	"github.com/aitormendez/nextcloud-mcp-server/internal/log"
	"github.com/mark3labs/mcp-go/mcp"
)

// getGuide handles guide tool calls.
func (h *handlers) getGuide(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic := getString(req, "topic", "")

	content, err := guide.Get(topic)
	log.Event("mcp:guide", "read").User(h.user).Detail("topic", topic).Write(err)
	if err != nil {
		topics, listErr := guide.List()
		if listErr != nil {
			return nil, fmt.Errorf("listing guides: %w", listErr)
		}
		return jsonResult(map[string]any{
			"error":            fmt.Sprintf("guide %q not found", topic),
			"available_topics": topics,
		})
	}
	return mcp.NewToolResultText(content), nil
}
