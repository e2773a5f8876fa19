// tools_tags.go implements the MCP tools for system tags.
//
// tag_file is idempotent: assigning a tag the file already carries succeeds,
// so agents need not track current tag state.

package mcp

import (
	"context"

	"github.com/aitormendez/nextcloud-mcp-server/internal/log"
	"github.com/aitormendez/nextcloud-mcp-server/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

type tagsJSON struct {
	Path string   `json:"path,omitempty"`
	Tags []string `json:"tags"`
}

// tagFile handles tag_file tool calls.
func (h *handlers) tagFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path is required"), nil //nolint:nilerr
	}
	tag, err := req.RequireString("tag")
	if err != nil || tag == "" {
		return mcp.NewToolResultError("tag is required"), nil //nolint:nilerr
	}
	if path, err = validate.File(path); err != nil {
		return errorResult(err), nil
	}
	if err := validate.Tag(tag); err != nil {
		return errorResult(err), nil
	}

	tagged, err := h.client.TagFile(ctx, path, tag)
	log.Event("mcp:tag_file", "tag").User(h.user).Path(path).Detail("tag", tag).Detail("tag_id", tagged.TagID).Write(err)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(tagged)
}

// listTags handles list_tags tool calls.
func (h *handlers) listTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := validate.Path(getString(req, "path", ""))
	if err != nil {
		return errorResult(err), nil
	}

	var tags []string
	if path == "" {
		tags, err = h.client.ListAllTags(ctx)
	} else {
		tags, err = h.client.ListTagsForFile(ctx, path)
	}
	log.Event("mcp:list_tags", "list_tags").User(h.user).Path(path).Detail("count", len(tags)).Write(err)
	if err != nil {
		return errorResult(err), nil
	}
	if tags == nil {
		tags = []string{}
	}
	return jsonResult(tagsJSON{Path: path, Tags: tags})
}
