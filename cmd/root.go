/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// root.go defines the root command and CLI execution entry point.
//
// Design: PersistentPreRunE creates the Nextcloud client lazily - only
// commands that talk to the server trigger extension init. Offline commands
// (config, guide, llm, version) work with no server configured, which is
// how a first-time user gets one configured.

package cmd

import (
	"fmt"
	"os"
	"slices"

	"github.com/aitormendez/nextcloud-mcp-server/internal/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nextcloud-mcp",
	Short: "Nextcloud files and tags for LLM workflows",
	Long: `Lists, reads, renames and tags files in a Nextcloud account over WebDAV.
Run "nextcloud-mcp serve" to expose the same operations as MCP tools on stdio.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if output != "" && !slices.Contains(validOutputFormats, output) {
			return fmt.Errorf("invalid output format: %s (valid: %v)", output, validOutputFormats)
		}

		if !cmd.HasParent() || offlineCommands[topLevelCmdName(cmd)] {
			return nil
		}

		if err := initExtensions(); err != nil {
			if JSON() {
				_ = PrintJSON(map[string]string{"error": err.Error()})
				cmd.SilenceErrors = true
			}
			return fmt.Errorf("connect to nextcloud: %w\n\nSet NEXTCLOUD_URL, NEXTCLOUD_USER and NEXTCLOUD_PASSWORD, or run: nextcloud-mcp config server.url https://cloud.example.com", err)
		}
		return nil
	},
}

// topLevelCmdName returns the name of the top-level command (direct child of root).
// For "nextcloud-mcp tag add path tag", returns "tag".
func topLevelCmdName(cmd *cobra.Command) string {
	for cmd.HasParent() && cmd.Parent().HasParent() {
		cmd = cmd.Parent()
	}
	return cmd.Name()
}

// Execute runs the root command and handles process lifecycle.
// Opens audit logging, registers extensions, executes the command and
// flushes diagnostics before exit. Exit code 1 indicates error.
func Execute() {
	if err := log.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
	}
	defer log.Close()

	registerExtensions()
	err := rootCmd.Execute()
	syncLogger()

	if err != nil {
		os.Exit(1)
	}
}

// RootCmd returns the root command for testing and extension access.
func RootCmd() *cobra.Command {
	return rootCmd
}
