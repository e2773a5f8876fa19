/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/
package main

import (
	"github.com/aitormendez/nextcloud-mcp-server/cmd"

	// Import extensions - each registers itself via init()
	_ "github.com/aitormendez/nextcloud-mcp-server/extension/all"
)

func main() {
	cmd.Execute()
}
