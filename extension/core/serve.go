// serve.go implements the "nextcloud-mcp serve" command.
//
// Unlike other commands that run and exit, serve blocks handling MCP
// requests over stdio until stdin closes or the process is interrupted.

package core

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aitormendez/nextcloud-mcp-server/extension"
	"github.com/aitormendez/nextcloud-mcp-server/internal/mcp"
	"github.com/spf13/cobra"
)

func (e *Extension) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start MCP server",
		Long: `Start an MCP (Model Context Protocol) server over stdio for LLM integration.

Which tools are offered depends on client.capabilities:
  list_only    list_files, read_file
  list_rename  adds rename_file
  full         adds tag_file and list_tags

Tool calls are limited to client.rate_limit per second (0 disables).
Diagnostics go to stderr; stdout carries the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return e.serve(ctx)
		},
	}
}

func (e *Extension) serve(ctx context.Context) error {
	cfg := e.ctx.Config()
	return mcp.Serve(ctx, mcp.Options{
		Client:    e.ctx.Client(),
		Tools:     extension.ServerTools(e.ctx),
		RateLimit: cfg.RateLimit(),
		Burst:     cfg.Burst(),
		Logger:    e.ctx.Logger(),
	})
}
