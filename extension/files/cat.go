// cat.go implements the "nextcloud-mcp cat" command.
//
// Design: Cat behaves like Unix cat. EPUB books are printed as their
// extracted text. Terminal output of markdown files gets glamour rendering;
// pipes and redirects get the raw text. The -l flag uses colon syntax
// (10:20) matching sed/awk conventions.

package files

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aitormendez/nextcloud-mcp-server/cmd"
	"github.com/aitormendez/nextcloud-mcp-server/extension"
	"github.com/aitormendez/nextcloud-mcp-server/internal/cat"
	"github.com/aitormendez/nextcloud-mcp-server/internal/log"
	"github.com/aitormendez/nextcloud-mcp-server/internal/validate"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (e *Extension) newCatCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "cat <path>",
		Short: "Read a file",
		Long: `Output the text of a file to stdout. EPUB books are converted to plain text
in reading order.`,
		Args: cobra.ExactArgs(1),
		RunE: e.runCat,
	}
	c.Flags().BoolP(extension.FlagNumber, "n", false, "Number all output lines")
	c.Flags().StringP(extension.FlagLines, "l", "", "Line range (e.g., 10:20, 5:, :15)")
	c.Flags().Int(extension.FlagMaxChars, 0, "Stop after this many characters (0 = whole file)")
	c.Flags().Bool(extension.FlagRaw, false, "Output raw text without rendering")
	return c
}

func (e *Extension) runCat(c *cobra.Command, args []string) error {
	ctx := c.Context()
	lineNums, _ := c.Flags().GetBool(extension.FlagNumber)
	lineRange, _ := c.Flags().GetString(extension.FlagLines)
	maxChars, _ := c.Flags().GetInt(extension.FlagMaxChars)
	raw, _ := c.Flags().GetBool(extension.FlagRaw)

	if maxChars < 0 {
		return cmd.PrintJSONError(fmt.Errorf("--%s must not be negative", extension.FlagMaxChars))
	}
	opts := cat.Options{MaxChars: maxChars, LineNumbers: lineNums}

	if lineRange != "" {
		start, end, err := parseLineRange(lineRange)
		if err != nil {
			return cmd.PrintJSONError(err)
		}
		opts.StartLine = start
		opts.EndLine = end
	}

	p, err := validate.File(args[0])
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	var result cat.Result
	defer func() {
		log.Event("files:cat", "read").
			User(e.user).
			Path(p).
			Detail("epub", result.EPUB).
			Detail("truncated", result.Truncated).
			Write(err)
	}()

	if cmd.JSON() {
		result, err = cat.Run(ctx, io.Discard, e.client, p, opts)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("cat %q: %w", p, err))
		}
		return cmd.PrintJSON(result)
	}

	if !raw && isMarkdown(p) && cmd.Out() == os.Stdout && term.IsTerminal(int(os.Stdout.Fd())) {
		var buf bytes.Buffer
		result, err = cat.Run(ctx, &buf, e.client, p, opts)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("cat %q: %w", p, err))
		}
		if rendered, renderErr := glamour.Render(buf.String(), "dark"); renderErr == nil {
			fmt.Fprint(cmd.Out(), rendered)
			return nil
		}
		fmt.Fprint(cmd.Out(), buf.String())
		return nil
	}

	result, err = cat.Run(ctx, cmd.Out(), e.client, p, opts)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("cat %q: %w", p, err))
	}
	return nil
}

func isMarkdown(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// parseLineRange parses a line range string like "10:20", "5:", or ":15".
// Returns start and end line numbers (1-indexed), where 0 means unspecified.
func parseLineRange(s string) (start, end int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid line range %q: expected format START:END", s)
	}

	if parts[0] != "" {
		if _, err := fmt.Sscanf(parts[0], "%d", &start); err != nil || start < 1 {
			return 0, 0, fmt.Errorf("invalid start line %q", parts[0])
		}
	}
	if parts[1] != "" {
		if _, err := fmt.Sscanf(parts[1], "%d", &end); err != nil || end < 1 {
			return 0, 0, fmt.Errorf("invalid end line %q", parts[1])
		}
	}
	if start > 0 && end > 0 && start > end {
		return 0, 0, fmt.Errorf("start line %d is greater than end line %d", start, end)
	}
	return start, end, nil
}
