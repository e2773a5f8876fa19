// Package tag registers the "tag" command group: tag add and tag ls.
//
// Tags here are Nextcloud system tags, shared by every user of the server.
// The MCP equivalents (tag_file, list_tags) live in internal/mcp.
package tag

import (
	"fmt"
	"io"

	"github.com/aitormendez/nextcloud-mcp-server/cmd"
	"github.com/aitormendez/nextcloud-mcp-server/extension"
	"github.com/aitormendez/nextcloud-mcp-server/internal/log"
	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
	"github.com/aitormendez/nextcloud-mcp-server/internal/tag"
	"github.com/spf13/cobra"
)

func init() {
	extension.Register(&Extension{})
}

// Extension holds the client shared by the tag subcommands.
type Extension struct {
	client *nextcloud.Client
	user   string
}

var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
)

func (e *Extension) Name() string { return "tag" }

func (e *Extension) Init(ctx extension.Context) error {
	e.client = ctx.Client()
	e.user = e.client.RemoteContext().User
	return nil
}

func (e *Extension) Commands() []*cobra.Command {
	group := &cobra.Command{
		Use:   "tag",
		Short: "Manage file tags",
		Long: `Assign and list Nextcloud system tags. Names are case-sensitive;
add creates a missing tag before assigning it.

  nextcloud-mcp tag add Books/cloud.epub Mysticism
  nextcloud-mcp tag ls Books/cloud.epub
  nextcloud-mcp tag ls                     # every tag on the server`,
	}
	group.AddCommand(
		&cobra.Command{
			Use:   "add <path> <tag>",
			Short: "Assign a tag to a file",
			Args:  cobra.ExactArgs(2),
			RunE:  e.runAdd,
		},
		&cobra.Command{
			Use:   "ls [path]",
			Short: "List the tags of a file, or all tags",
			Args:  cobra.MaximumNArgs(1),
			RunE:  e.runList,
		},
	)
	return []*cobra.Command{group}
}

// MCPTools is empty; the tagging tools are served by internal/mcp.
func (e *Extension) MCPTools() []extension.MCPTool { return nil }

// textOut is where human output goes; JSON mode prints the result instead.
func textOut() io.Writer {
	if cmd.JSON() {
		return io.Discard
	}
	return cmd.Out()
}

func (e *Extension) runAdd(c *cobra.Command, args []string) error {
	res, err := tag.Add(c.Context(), textOut(), e.client, args[0], args[1])

	log.Event("tag:add", "tag").
		User(e.user).
		Path(res.Path).
		Target(args[1]).
		Detail("tag_id", res.TagID).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("tag add %q %q: %w", args[0], args[1], err))
	}
	return cmd.PrintJSON(res)
}

func (e *Extension) runList(c *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}

	res, err := tag.List(c.Context(), textOut(), e.client, path)

	log.Event("tag:ls", "list_tags").
		User(e.user).
		Path(res.Path).
		Detail("count", len(res.Tags)).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("tag ls %q: %w", path, err))
	}
	return cmd.PrintJSON(res)
}
