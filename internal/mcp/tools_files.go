// tools_files.go implements the MCP tools over the file collection.

package mcp

import (
	"context"
	"fmt"

	"github.com/aitormendez/nextcloud-mcp-server/internal/cat"
	"github.com/aitormendez/nextcloud-mcp-server/internal/log"
	"github.com/aitormendez/nextcloud-mcp-server/internal/ls"
	"github.com/aitormendez/nextcloud-mcp-server/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultReadChars is how much text read_file returns when max_chars is absent.
const DefaultReadChars = 6000

// listFiles handles list_files tool calls.
func (h *handlers) listFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := validate.Path(getString(req, "path", ""))
	if err != nil {
		return errorResult(err), nil
	}

	if !getBool(req, "long", false) {
		names, err := h.client.ListFiles(ctx, path)
		log.Event("mcp:list_files", "list").User(h.user).Path(path).Detail("count", len(names)).Write(err)
		if err != nil {
			return errorResult(err), nil
		}
		if names == nil {
			names = []string{}
		}
		return jsonResult(names)
	}

	entries, err := h.client.ListEntries(ctx, path)
	log.Event("mcp:list_files", "list").User(h.user).Path(path).Detail("count", len(entries)).Detail("long", true).Write(err)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(ls.EntriesJSON(entries))
}

// readFile handles read_file tool calls.
func (h *handlers) readFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil //nolint:nilerr
	}
	if path, err = validate.File(path); err != nil {
		return errorResult(err), nil
	}
	maxChars := getInt(req, "max_chars", DefaultReadChars)

	res, err := cat.Text(ctx, h.client, path, maxChars)
	log.Event("mcp:read_file", "read").User(h.user).Path(path).Detail("max_chars", maxChars).Write(err)
	if err != nil {
		return errorResult(err), nil
	}

	text := res.Content
	if res.Truncated {
		text += fmt.Sprintf("\n\n[truncated after %d characters]", maxChars)
	}
	return mcp.NewToolResultText(text), nil
}

// renameFile handles rename_file tool calls.
func (h *handlers) renameFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldName, err := req.RequireString("old_name")
	if err != nil {
		return mcp.NewToolResultError("old_name is required"), nil //nolint:nilerr
	}
	newName, err := req.RequireString("new_name")
	if err != nil {
		return mcp.NewToolResultError("new_name is required"), nil //nolint:nilerr
	}
	if oldName, err = validate.File(oldName); err != nil {
		return errorResult(err), nil
	}
	if newName, err = validate.File(newName); err != nil {
		return errorResult(err), nil
	}

	err = h.client.Rename(ctx, oldName, newName)
	log.Event("mcp:rename_file", "rename").User(h.user).Path(oldName).Target(newName).Write(err)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("renamed %s to %s", oldName, newName)), nil
}
