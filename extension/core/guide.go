// guide.go implements the "nextcloud-mcp guide" command.
//
// Guides are embedded in the binary via the guide package. Terminal output
// gets glamour rendering; pipes and redirects get raw markdown so the text
// can be loaded straight into an LLM context.

package core

import (
	"fmt"
	"os"
	"strings"

	"github.com/aitormendez/nextcloud-mcp-server/cmd"
	"github.com/aitormendez/nextcloud-mcp-server/guide"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newGuideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guide [topic]",
		Short: "Show the nextcloud-mcp usage guide",
		Long: `Outputs the nextcloud-mcp guide for LLMs and humans.

  nextcloud-mcp guide          # main guide
  nextcloud-mcp guide files    # listing, reading and renaming
  nextcloud-mcp guide tags     # tagging`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}

			content, err := guide.Get(name)
			if err != nil {
				available, listErr := guide.List()
				if listErr != nil {
					return listErr
				}
				return cmd.PrintJSONError(fmt.Errorf("guide %q not found. Available: %s", name, strings.Join(available, ", ")))
			}
			printMarkdown(content)
			return nil
		},
	}
}

// printMarkdown renders content for a terminal, or writes it raw.
func printMarkdown(content string) {
	if cmd.Out() == os.Stdout && term.IsTerminal(int(os.Stdout.Fd())) {
		if rendered, err := glamour.Render(content, "dark"); err == nil {
			fmt.Fprint(cmd.Out(), rendered)
			return
		}
	}
	fmt.Fprint(cmd.Out(), content)
}
