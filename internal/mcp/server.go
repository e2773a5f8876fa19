// Package mcp implements the Model Context Protocol server that exposes the
// Nextcloud file and tag operations to LLM agents over stdio.
//
// Tools are registered according to the client's capability set, so an agent
// talking to a list-only client never sees rename or tag tools.
package mcp

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
	"github.com/aitormendez/nextcloud-mcp-server/internal/version"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Name is the server name advertised during initialisation.
const Name = "nextcloud-mcp"

// instructions is sent to clients during initialisation.
const instructions = `Tools for a Nextcloud file collection. Paths are relative to the user's files root.
Call list_files before rename_file or tag_file to learn exact names. Tag names are case-sensitive;
tag_file creates a missing tag before assigning it. Call guide for details.`

// Options configures the MCP server.
type Options struct {
	Client *nextcloud.Client
	// Tools are extra tools contributed by extensions.
	Tools []server.ServerTool
	// RateLimit is tool calls per second; zero disables limiting.
	RateLimit int
	Burst     int
	Logger    *zap.Logger
}

// handlers provides MCP request handlers with access to the remote client.
type handlers struct {
	client *nextcloud.Client
	user   string
}

// NewServer builds the MCP server with every tool the client supports.
func NewServer(opts Options) *server.MCPServer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	srvOpts := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithInstructions(instructions),
		server.WithToolHandlerMiddleware(withLogging(logger)),
	}
	if opts.RateLimit > 0 {
		srvOpts = append(srvOpts, server.WithToolHandlerMiddleware(withRateLimit(opts.RateLimit, opts.Burst, logger)))
	}
	s := server.NewMCPServer(Name, version.Short(), srvOpts...)

	h := &handlers{client: opts.Client, user: opts.Client.RemoteContext().User}
	registerTools(s, h)
	registerResources(s, h)
	if len(opts.Tools) > 0 {
		s.AddTools(opts.Tools...)
	}
	return s
}

// Serve runs the MCP server over stdio until ctx is cancelled or stdin
// closes. Cancellation is a clean stop.
func Serve(ctx context.Context, opts Options) error {
	return serve(ctx, opts, os.Stdin, os.Stdout)
}

func serve(ctx context.Context, opts Options, in io.Reader, out io.Writer) error {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := NewServer(opts)

	stdio := server.NewStdioServer(s)
	stdio.SetErrorLogger(zap.NewStdLog(opts.Logger))

	opts.Logger.Info("MCP server ready",
		zap.String("version", version.Short()),
		zap.String("transport", "stdio"),
		zap.String("capabilities", opts.Client.Capabilities().String()))

	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) {
		opts.Logger.Info("server stopped")
		return nil
	}
	return err
}

// registerTools exposes the client operations as MCP tools.
func registerTools(s *server.MCPServer, h *handlers) {
	if h.client.Can(nextcloud.CapList) {
		s.AddTool(
			mcp.NewTool("list_files",
				mcp.WithDescription("List the names of the files and folders directly inside a folder"),
				mcp.WithString("path", mcp.Description("Folder path relative to the files root (default: root)")),
				mcp.WithBoolean("long", mcp.Description("Return size, modification time and folder flag for each entry")),
			),
			h.listFiles,
		)
	}

	if h.client.Can(nextcloud.CapRead) {
		s.AddTool(
			mcp.NewTool("read_file",
				mcp.WithDescription("Read a file as text. EPUB books are returned as their chapter text"),
				mcp.WithString("path", mcp.Required(), mcp.Description("File path relative to the files root")),
				mcp.WithNumber("max_chars", mcp.Description("Maximum characters to return (default: 6000, 0 for all)")),
			),
			h.readFile,
		)
	}

	if h.client.Can(nextcloud.CapRename) {
		s.AddTool(
			mcp.NewTool("rename_file",
				mcp.WithDescription("Rename or move a file. Fails if the destination exists; tags and shares are kept"),
				mcp.WithString("old_name", mcp.Required(), mcp.Description("Current path relative to the files root")),
				mcp.WithString("new_name", mcp.Required(), mcp.Description("New path relative to the files root")),
			),
			h.renameFile,
		)
	}

	if h.client.Can(nextcloud.CapTag) {
		s.AddTool(
			mcp.NewTool("tag_file",
				mcp.WithDescription("Assign a system tag to a file, creating the tag if it does not exist"),
				mcp.WithString("path", mcp.Required(), mcp.Description("File path relative to the files root")),
				mcp.WithString("tag", mcp.Required(), mcp.Description("Tag name (case-sensitive)")),
			),
			h.tagFile,
		)

		s.AddTool(
			mcp.NewTool("list_tags",
				mcp.WithDescription("List the tags of a file, or every tag on the server when no path is given"),
				mcp.WithString("path", mcp.Description("File path relative to the files root (optional)")),
			),
			h.listTags,
		)
	}

	s.AddTool(
		mcp.NewTool("guide",
			mcp.WithDescription("Get usage guidance for these tools"),
			mcp.WithString("topic", mcp.Description("Guide topic (e.g. 'files', 'tags') or empty for the index")),
		),
		h.getGuide,
	)
}
