// Package all imports all built-in nextcloud-mcp extensions.
// Import this package to register all built-in commands.
package all

import (
	// Each registers itself via init()
	_ "github.com/aitormendez/nextcloud-mcp-server/extension/core"
	_ "github.com/aitormendez/nextcloud-mcp-server/extension/files"
	_ "github.com/aitormendez/nextcloud-mcp-server/extension/propose"
	_ "github.com/aitormendez/nextcloud-mcp-server/extension/tag"
)
