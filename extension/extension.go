// Package extension is the plugin surface of nextcloud-mcp. Extensions
// bundle CLI commands and MCP tools and register themselves at init time.
package extension

import (
	"github.com/spf13/cobra"
)

// Extension defines the contract for extensions.
type Extension interface {
	// Name returns a unique identifier for this extension.
	Name() string

	// Commands returns CLI commands to register with the root command.
	Commands() []*cobra.Command

	// MCPTools returns MCP tools to register with the server.
	MCPTools() []MCPTool
}

// Initializable extensions receive the shared context once the remote
// client is configured.
type Initializable interface {
	Extension
	Init(ctx Context) error
}

// Offline is implemented by extensions with commands that run without a
// configured server (config, guide, version). Those commands skip client
// setup in the root command.
type Offline interface {
	OfflineCommands() []string
}
