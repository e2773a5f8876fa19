// Package propose provides the propose extension: LLM-assisted tag
// proposals for books and free-form questions over remote files.
// It registers commands propose and ask, and the propose_tags MCP tool.
package propose

import (
	"context"
	"fmt"

	"github.com/aitormendez/nextcloud-mcp-server/extension"
	"github.com/aitormendez/nextcloud-mcp-server/internal/config"
	"github.com/aitormendez/nextcloud-mcp-server/internal/llm"
	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
	"github.com/spf13/cobra"
)

func init() {
	extension.Register(&Extension{newModel: modelFromConfig})
}

// modelFactory builds the language model from configuration. provider and
// model override the configured values when not empty.
type modelFactory func(ctx context.Context, cfg *config.Config, provider, model string) (llm.Provider, error)

// Extension implements the propose extension.
type Extension struct {
	ctx      extension.Context
	newModel modelFactory
}

// Compile-time interface compliance.
var (
	_ extension.Extension     = (*Extension)(nil)
	_ extension.Initializable = (*Extension)(nil)
)

// Name returns "propose".
func (e *Extension) Name() string { return "propose" }

// Init keeps the shared context; the model is built per call so config
// changes apply without restarting.
func (e *Extension) Init(ctx extension.Context) error {
	e.ctx = ctx
	return nil
}

// Commands returns the propose and ask commands.
func (e *Extension) Commands() []*cobra.Command {
	return []*cobra.Command{
		e.newProposeCmd(),
		e.newAskCmd(),
	}
}

// MCPTools returns propose_tags when the client may read files.
func (e *Extension) MCPTools() []extension.MCPTool {
	if e.ctx == nil || !e.ctx.Client().Can(nextcloud.CapRead) {
		return nil
	}
	return []extension.MCPTool{proposeTagsTool(e)}
}

// modelFromConfig builds the provider named in llm.provider.
func modelFromConfig(ctx context.Context, cfg *config.Config, provider, model string) (llm.Provider, error) {
	if provider == "" {
		provider = cfg.Provider()
	}
	opts := llm.Options{APIKey: cfg.LLM.APIKey, BaseURL: cfg.LLM.BaseURL, Model: cfg.LLM.Model}
	if model != "" {
		opts.Model = model
	}
	p, err := llm.New(ctx, provider, opts)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	return p, nil
}
