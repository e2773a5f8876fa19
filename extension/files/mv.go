// mv.go implements the "nextcloud-mcp mv" command.
//
// Design: Mv never overwrites. An existing destination fails with a
// conflict, matching the rename_file tool.

package files

import (
	"errors"
	"fmt"

	"github.com/aitormendez/nextcloud-mcp-server/cmd"
	"github.com/aitormendez/nextcloud-mcp-server/internal/log"
	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
	"github.com/aitormendez/nextcloud-mcp-server/internal/validate"
	"github.com/spf13/cobra"
)

// mvResult contains the outcome of a move operation.
type mvResult struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (e *Extension) newMvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <source> <dest>",
		Short: "Rename or move a file",
		Long: `Rename a file or move it to another folder. Both paths are relative to the
files root. The destination must not exist.`,
		Args: cobra.ExactArgs(2),
		RunE: e.runMv,
	}
}

func (e *Extension) runMv(c *cobra.Command, args []string) error {
	ctx := c.Context()

	src, err := validate.File(args[0])
	if err != nil {
		return cmd.PrintJSONError(err)
	}
	dst, err := validate.File(args[1])
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	err = e.client.Rename(ctx, src, dst)

	log.Event("files:mv", "rename").
		User(e.user).
		Path(src).
		Target(dst).
		Write(err)

	if err != nil {
		var conflict *nextcloud.ConflictError
		if errors.As(err, &conflict) {
			return cmd.PrintJSONError(fmt.Errorf("mv %q to %q: destination exists", src, dst))
		}
		return cmd.PrintJSONError(fmt.Errorf("mv %q to %q: %w", src, dst, err))
	}

	if !cmd.JSON() {
		fmt.Fprintf(cmd.Out(), "Moved %s -> %s\n", src, dst)
	}
	return cmd.PrintJSON(mvResult{From: src, To: dst})
}
