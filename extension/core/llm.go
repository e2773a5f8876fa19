// llm.go implements the "nextcloud-mcp llm" command: a quick start for AI
// assistants, read from guide/llm.md.

package core

import (
	"github.com/aitormendez/nextcloud-mcp-server/cmd"
	"github.com/aitormendez/nextcloud-mcp-server/guide"
	"github.com/spf13/cobra"
)

func newLlmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "llm",
		Short: "Getting started guide for LLMs",
		Long:  `Quick reference for LLMs to discover the tools, their arguments and the order to call them in.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			content, err := guide.Get("llm")
			if err != nil {
				return cmd.PrintJSONError(err)
			}
			printMarkdown(content)
			return nil
		},
	}
}
