// ls.go implements the "nextcloud-mcp ls" command.

package files

import (
	"fmt"
	"io"
	"slices"

	"github.com/aitormendez/nextcloud-mcp-server/cmd"
	"github.com/aitormendez/nextcloud-mcp-server/extension"
	"github.com/aitormendez/nextcloud-mcp-server/internal/log"
	"github.com/aitormendez/nextcloud-mcp-server/internal/ls"
	"github.com/aitormendez/nextcloud-mcp-server/internal/validate"
	"github.com/spf13/cobra"
)

var sortFields = []string{"name", "time", "size"}

func (e *Extension) newLsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "ls [folder]",
		Short: "List a folder",
		Long: `List the entries of a folder, relative to the files root.

  nextcloud-mcp ls              # files root
  nextcloud-mcp ls Books -l     # sizes and modification times
  nextcloud-mcp ls Books -s time`,
		Args: cobra.MaximumNArgs(1),
		RunE: e.runLs,
	}
	c.Flags().BoolP(extension.FlagLong, "l", false, "Long format with size and modification time")
	c.Flags().StringP(extension.FlagSort, "s", "", "Sort by: name, time, size")
	c.Flags().BoolP(extension.FlagReverse, "R", false, "Reverse sort order")
	return c
}

func (e *Extension) runLs(c *cobra.Command, args []string) error {
	ctx := c.Context()
	opts := ls.Options{}
	if len(args) > 0 {
		opts.Path = args[0]
	}
	opts.Long, _ = c.Flags().GetBool(extension.FlagLong)
	opts.Reverse, _ = c.Flags().GetBool(extension.FlagReverse)

	sortBy, _ := c.Flags().GetString(extension.FlagSort)
	if sortBy != "" && !slices.Contains(sortFields, sortBy) {
		return cmd.PrintJSONError(fmt.Errorf("invalid sort field %q: must be one of %v", sortBy, sortFields))
	}
	opts.Sort = ls.SortField(sortBy)

	p, err := validate.Path(opts.Path)
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	opts.Path = p

	w := cmd.Out()
	if cmd.JSON() {
		w = io.Discard
	}

	result, err := ls.Run(ctx, w, e.client, opts)

	log.Event("files:ls", "list").
		User(e.user).
		Path(opts.Path).
		Detail("count", result.Count()).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("ls %q: %w", opts.Path, err))
	}
	return cmd.PrintJSON(result.ToJSON())
}
