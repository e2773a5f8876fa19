// Package files provides the files extension: ls, cat and mv over the
// Nextcloud file collection.
//
// The matching MCP tools (list_files, read_file, rename_file) are built into
// internal/mcp, so this extension contributes commands only.

package files

import (
	"github.com/aitormendez/nextcloud-mcp-server/extension"
	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
	"github.com/spf13/cobra"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the files extension.
type Extension struct {
	client *nextcloud.Client
	user   string
}

// Compile-time interface compliance.
var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
)

// Name returns "files".
func (e *Extension) Name() string { return "files" }

// Init connects to the shared client.
func (e *Extension) Init(ctx extension.Context) error {
	e.client = ctx.Client()
	e.user = e.client.RemoteContext().User
	return nil
}

// Commands returns the file commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newLsCmd(),
		e.newCatCmd(),
		e.newMvCmd(),
	}
}

// MCPTools returns nil - file MCP tools are provided by internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}
