// Package core provides the core extension for nextcloud-mcp.
// It registers commands: config, serve, guide, llm, audit, version.
package core

import (
	"github.com/aitormendez/nextcloud-mcp-server/extension"
	"github.com/spf13/cobra"
)

func init() {
	extension.Register(&Extension{})
}

// Extension implements the core extension.
type Extension struct {
	ctx extension.Context
}

// Compile-time interface compliance.
var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
	_ extension.Offline       = (*Extension)(nil)
)

// Name returns "core".
func (e *Extension) Name() string { return "core" }

// Init keeps the shared context for serve.
func (e *Extension) Init(ctx extension.Context) error {
	e.ctx = ctx
	return nil
}

// Commands returns the core CLI commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		newConfigCmd(),
		e.newServeCmd(),
		newGuideCmd(),
		newLlmCmd(),
		newAuditCmd(),
		newVersionCmd(),
	}
}

// MCPTools returns nil. The built-in tools live in internal/mcp; serve
// adds the tools of the other extensions.
func (e *Extension) MCPTools() []extension.MCPTool {
	return nil
}

// OfflineCommands returns the commands that need no server.
func (e *Extension) OfflineCommands() []string {
	return []string{"config", "guide", "llm", "audit", "version"}
}
