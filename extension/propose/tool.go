// tool.go implements the propose_tags MCP tool.

package propose

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aitormendez/nextcloud-mcp-server/extension"
	"github.com/aitormendez/nextcloud-mcp-server/internal/log"
	"github.com/aitormendez/nextcloud-mcp-server/internal/proposal"
	"github.com/aitormendez/nextcloud-mcp-server/internal/validate"
	"github.com/mark3labs/mcp-go/mcp"
)

// parseFailure is returned to the agent when the model answered with
// something other than the expected JSON object.
type parseFailure struct {
	Error  string `json:"error"`
	Output string `json:"output"`
}

func proposeTagsTool(e *Extension) extension.MCPTool {
	return extension.MCPTool{
		Tool: mcp.NewTool("propose_tags",
			mcp.WithDescription("Ask the configured language model to classify a book against a markdown tag catalogue. "+
				"Returns existing_tags from the catalogue and new_tags with a justification. Nothing is assigned; call tag_file to apply"),
			mcp.WithString("title", mcp.Required(), mcp.Description("Book title")),
			mcp.WithString("file_path", mcp.Required(), mcp.Description("Book path relative to the files root (EPUB or text)")),
			mcp.WithString("tags_md_path", mcp.Required(), mcp.Description("Local path of the tag catalogue (## Name headings with descriptions)")),
		),
		Handler: e.handleProposeTags,
	}
}

func (e *Extension) handleProposeTags(ctx context.Context, extCtx extension.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title is required"), nil //nolint:nilerr
	}
	filePath, err := req.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError("file_path is required"), nil //nolint:nilerr
	}
	catalogPath, err := req.RequireString("tags_md_path")
	if err != nil {
		return mcp.NewToolResultError("tags_md_path is required"), nil //nolint:nilerr
	}
	if filePath, err = validate.File(filePath); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client := extCtx.Client()
	l := log.Event("mcp:propose_tags", "propose").
		User(client.RemoteContext().User).
		Path(filePath).
		Detail("catalog", catalogPath)

	model, err := e.newModel(ctx, extCtx.Config(), "", "")
	if err != nil {
		l.Write(err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	l = l.Detail("provider", model.Name())

	prop, err := proposal.New(client, model).Propose(ctx, title, filePath, catalogPath)
	l.Detail("existing", len(prop.ExistingTags)).Detail("new", len(prop.NewTags)).Write(err)

	var parseErr *proposal.ParseError
	switch {
	case errors.As(err, &parseErr):
		return jsonResult(parseFailure{Error: parseErr.Error(), Output: parseErr.Output})
	case err != nil:
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(prop)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
