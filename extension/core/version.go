// version.go implements the version command.

package core

import (
	"fmt"

	"github.com/aitormendez/nextcloud-mcp-server/cmd"
	"github.com/aitormendez/nextcloud-mcp-server/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print build tag, build date, git commit, Go version and platform.`,
		Run: func(_ *cobra.Command, _ []string) {
			info := version.Get()
			if cmd.JSON() {
				_ = cmd.PrintJSON(info)
				return
			}
			fmt.Fprint(cmd.Out(), info.String())
		},
	}
}
