// cmd.go implements the "propose" and "ask" commands.

package propose

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aitormendez/nextcloud-mcp-server/cmd"
	"github.com/aitormendez/nextcloud-mcp-server/extension"
	"github.com/aitormendez/nextcloud-mcp-server/internal/cat"
	"github.com/aitormendez/nextcloud-mcp-server/internal/llm"
	"github.com/aitormendez/nextcloud-mcp-server/internal/log"
	"github.com/aitormendez/nextcloud-mcp-server/internal/logging"
	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
	"github.com/aitormendez/nextcloud-mcp-server/internal/progress"
	"github.com/aitormendez/nextcloud-mcp-server/internal/proposal"
	"github.com/aitormendez/nextcloud-mcp-server/internal/validate"
	"github.com/spf13/cobra"
)

// proposeResult is the JSON output of propose.
type proposeResult struct {
	proposal.Proposal
	Applied []string `json:"applied,omitempty"`
}

// askResult is the JSON output of ask.
type askResult struct {
	Provider string   `json:"provider"`
	Files    []string `json:"files"`
	Answer   string   `json:"answer"`
}

func (e *Extension) newProposeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "propose <title> <path>",
		Short: "Propose tags for a book",
		Long: `Read the start of a book (EPUB or text) and ask the configured language model
which catalogue tags fit it, and which new tags it would add.

  nextcloud-mcp propose "Dune" Books/dune.epub --catalog tags.md
  nextcloud-mcp propose "Dune" Books/dune.epub --catalog tags.md --apply

The catalogue is a local markdown file: one "## Name" heading per tag,
followed by its description. --apply assigns the proposed catalogue tags.`,
		Args: cobra.ExactArgs(2),
		RunE: e.runPropose,
	}
	c.Flags().String(extension.FlagCatalog, "", "Tag catalogue markdown file (required)")
	c.Flags().Int(extension.FlagMaxChars, proposal.DefaultMaxChars, "Characters of book text sent to the model")
	c.Flags().String(extension.FlagProvider, "", "LLM provider: "+strings.Join(llm.Names(), ", "))
	c.Flags().String(extension.FlagModel, "", "LLM model (default per provider)")
	c.Flags().Bool(extension.FlagApply, false, "Assign the proposed catalogue tags to the file")
	_ = c.MarkFlagRequired(extension.FlagCatalog)
	return c
}

func (e *Extension) runPropose(c *cobra.Command, args []string) error {
	ctx := logging.WithContext(c.Context(), e.ctx.Logger())
	title := args[0]
	catalogPath, _ := c.Flags().GetString(extension.FlagCatalog)
	maxChars, _ := c.Flags().GetInt(extension.FlagMaxChars)
	provider, _ := c.Flags().GetString(extension.FlagProvider)
	modelName, _ := c.Flags().GetString(extension.FlagModel)
	apply, _ := c.Flags().GetBool(extension.FlagApply)

	path, err := validate.File(args[1])
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	client := e.ctx.Client()
	if apply && !client.Can(nextcloud.CapTag) {
		return cmd.PrintJSONError(fmt.Errorf("--%s: %w", extension.FlagApply, nextcloud.ErrUnsupported))
	}

	model, err := e.newModel(ctx, e.ctx.Config(), provider, modelName)
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	spin := progress.NewSpinner("Asking " + model.Name())
	spin.Start()
	prop, err := proposal.New(client, model).WithMaxChars(maxChars).Propose(ctx, title, path, catalogPath)
	spin.Stop()
	log.Event("propose:propose", "propose").
		User(client.RemoteContext().User).
		Path(path).
		Detail("provider", model.Name()).
		Detail("existing", len(prop.ExistingTags)).
		Detail("new", len(prop.NewTags)).
		Write(err)
	if err != nil {
		var parseErr *proposal.ParseError
		if errors.As(err, &parseErr) {
			if cmd.JSON() {
				return cmd.PrintJSON(parseFailure{Error: parseErr.Error(), Output: parseErr.Output})
			}
			fmt.Fprintf(cmd.Out(), "Model output:\n%s\n", parseErr.Output)
		}
		return cmd.PrintJSONError(fmt.Errorf("propose %q: %w", path, err))
	}

	result := proposeResult{Proposal: prop}
	if apply {
		result.Applied, err = e.apply(ctx, client, path, prop)
		if err != nil {
			return cmd.PrintJSONError(fmt.Errorf("propose %q: %w", path, err))
		}
	}

	if cmd.JSON() {
		return cmd.PrintJSON(result)
	}
	printProposal(result)
	return nil
}

// apply assigns the proposed tags that exist in the catalogue. New tags are
// never created here; they need a human decision first.
func (e *Extension) apply(ctx context.Context, client *nextcloud.Client, path string, prop proposal.Proposal) ([]string, error) {
	unknown := make(map[string]bool, len(prop.UnknownTags))
	for _, t := range prop.UnknownTags {
		unknown[t] = true
	}
	var applied []string
	for _, t := range prop.ExistingTags {
		if unknown[t] {
			continue
		}
		tagged, err := client.TagFile(ctx, path, t)
		log.Event("propose:apply", "tag").
			User(client.RemoteContext().User).
			Path(path).
			Target(t).
			Detail("tag_id", tagged.TagID).
			Write(err)
		if err != nil {
			return applied, fmt.Errorf("tag %q: %w", t, err)
		}
		applied = append(applied, t)
	}
	return applied, nil
}

func printProposal(r proposeResult) {
	w := cmd.Out()
	fmt.Fprintln(w, "Catalogue tags:")
	if len(r.ExistingTags) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, t := range r.ExistingTags {
		fmt.Fprintf(w, "  %s\n", t)
	}
	fmt.Fprintln(w, "New tags:")
	if len(r.NewTags) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, t := range r.NewTags {
		fmt.Fprintf(w, "  %s: %s\n", t.Name, t.Justification)
	}
	if len(r.UnknownTags) > 0 {
		fmt.Fprintf(w, "Not in catalogue: %s\n", strings.Join(r.UnknownTags, ", "))
	}
	if len(r.Applied) > 0 {
		fmt.Fprintf(w, "Applied: %s\n", strings.Join(r.Applied, ", "))
	}
}

func (e *Extension) newAskCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "ask <question> <path>...",
		Short: "Ask the language model about files",
		Long: `Read one or more files (EPUB or text) and ask the configured language model a
question with their text as context.

  nextcloud-mcp ask "Who is the narrator?" Books/dune.epub`,
		Args: cobra.MinimumNArgs(2),
		RunE: e.runAsk,
	}
	c.Flags().Int(extension.FlagMaxChars, proposal.DefaultMaxChars, "Characters read from each file")
	c.Flags().String(extension.FlagProvider, "", "LLM provider: "+strings.Join(llm.Names(), ", "))
	c.Flags().String(extension.FlagModel, "", "LLM model (default per provider)")
	return c
}

func (e *Extension) runAsk(c *cobra.Command, args []string) error {
	ctx := logging.WithContext(c.Context(), e.ctx.Logger())
	question := args[0]
	maxChars, _ := c.Flags().GetInt(extension.FlagMaxChars)
	provider, _ := c.Flags().GetString(extension.FlagProvider)
	modelName, _ := c.Flags().GetString(extension.FlagModel)

	client := e.ctx.Client()
	if !client.Can(nextcloud.CapRead) {
		return cmd.PrintJSONError(fmt.Errorf("ask: %w", nextcloud.ErrUnsupported))
	}

	files := make(map[string]string, len(args)-1)
	paths := make([]string, 0, len(args)-1)
	counter := progress.NewCounter("Reading files", len(args)-1)
	for _, arg := range args[1:] {
		p, err := validate.File(arg)
		if err != nil {
			return cmd.PrintJSONError(err)
		}
		res, err := cat.Text(ctx, client, p, maxChars)
		if err != nil {
			counter.Done()
			return cmd.PrintJSONError(fmt.Errorf("ask: read %q: %w", p, err))
		}
		files[p] = res.Content
		paths = append(paths, p)
		counter.Step()
	}
	counter.Done()

	model, err := e.newModel(ctx, e.ctx.Config(), provider, modelName)
	if err != nil {
		return cmd.PrintJSONError(err)
	}

	spin := progress.NewSpinner("Asking " + model.Name())
	spin.Start()
	answer, err := llm.Query(ctx, model, question, files)
	spin.Stop()
	log.Event("propose:ask", "query").
		User(client.RemoteContext().User).
		Path(strings.Join(paths, ",")).
		Detail("provider", model.Name()).
		Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("ask: %w", err))
	}

	if cmd.JSON() {
		return cmd.PrintJSON(askResult{Provider: model.Name(), Files: paths, Answer: answer})
	}
	fmt.Fprintln(cmd.Out(), strings.TrimSpace(answer))
	return nil
}
