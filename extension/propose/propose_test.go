package propose

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aitormendez/nextcloud-mcp-server/extension"
	"github.com/aitormendez/nextcloud-mcp-server/internal/config"
	"github.com/aitormendez/nextcloud-mcp-server/internal/llm"
	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud/nextcloudtest"
	"github.com/aitormendez/nextcloud-mcp-server/internal/proposal"
)

const catalogue = `# Tags

## Science Fiction
Speculative futures.

## Desert
Arid settings.
`

type cannedModel struct {
	reply  string
	err    error
	prompt string
}

func (m *cannedModel) Name() string { return "canned" }

func (m *cannedModel) Complete(_ context.Context, req llm.Request) (string, error) {
	m.prompt = req.Prompt
	return m.reply, m.err
}

type fixture struct {
	srv     *nextcloudtest.Server
	ext     *Extension
	extCtx  extension.Context
	model   *cannedModel
	catalog string
	fileID  string
}

func newFixture(t *testing.T, caps nextcloud.Capability) *fixture {
	t.Helper()
	srv := nextcloudtest.New(t)
	id := srv.AddFile(t, "Books/dune.txt", []byte("A desert planet and its spice."))

	rc, err := nextcloud.NewRemoteContext(srv.BaseURL(), nextcloudtest.User, nextcloudtest.Password)
	require.NoError(t, err)
	client := nextcloud.New(rc, nextcloud.WithDoer(srv.Client()), nextcloud.WithCapabilities(caps))

	catalogPath := filepath.Join(t.TempDir(), "tags.md")
	require.NoError(t, os.WriteFile(catalogPath, []byte(catalogue), 0o600))

	model := &cannedModel{}
	ext := &Extension{newModel: func(context.Context, *config.Config, string, string) (llm.Provider, error) {
		return model, nil
	}}
	extCtx := extension.NewContext(client, &config.Config{}, nil)
	require.NoError(t, ext.Init(extCtx))

	return &fixture{srv: srv, ext: ext, extCtx: extCtx, model: model, catalog: catalogPath, fileID: id}
}

func (f *fixture) call(t *testing.T, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = "propose_tags"
	req.Params.Arguments = args
	res, err := f.ext.handleProposeTags(context.Background(), f.extCtx, req)
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestMCPTools_RequiresRead(t *testing.T) {
	assert.Empty(t, (&Extension{}).MCPTools(), "no context before Init")

	f := newFixture(t, nextcloud.CapList)
	assert.Empty(t, f.ext.MCPTools())

	f = newFixture(t, nextcloud.ListOnly)
	tools := f.ext.MCPTools()
	require.Len(t, tools, 1)
	assert.Equal(t, "propose_tags", tools[0].Tool.Name)
}

func TestProposeTags(t *testing.T) {
	f := newFixture(t, nextcloud.Full)
	f.model.reply = "Sure:\n" + `{"existing_tags":["Desert","Space Opera"],"new_tags":[{"name":"Ecology","justification":"spice ecosystem"}]}`

	res := f.call(t, map[string]any{"title": "Dune", "file_path": "Books/dune.txt", "tags_md_path": f.catalog})
	require.False(t, res.IsError, text(t, res))

	var prop proposal.Proposal
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &prop))
	assert.Equal(t, []string{"Desert", "Space Opera"}, prop.ExistingTags)
	assert.Equal(t, []string{"Space Opera"}, prop.UnknownTags)
	assert.Equal(t, []proposal.NewTag{{Name: "Ecology", Justification: "spice ecosystem"}}, prop.NewTags)

	assert.Contains(t, f.model.prompt, "Dune")
	assert.Contains(t, f.model.prompt, "A desert planet")
	assert.Contains(t, f.model.prompt, "Science Fiction")
	assert.Empty(t, f.srv.TagNames(), "proposals assign nothing")
}

func TestProposeTags_ParseFailure(t *testing.T) {
	f := newFixture(t, nextcloud.Full)
	f.model.reply = "I cannot decide."

	res := f.call(t, map[string]any{"title": "Dune", "file_path": "Books/dune.txt", "tags_md_path": f.catalog})
	assert.False(t, res.IsError)

	var got parseFailure
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &got))
	assert.Equal(t, "I cannot decide.", got.Output)
	assert.NotEmpty(t, got.Error)
}

func TestProposeTags_Errors(t *testing.T) {
	f := newFixture(t, nextcloud.Full)

	res := f.call(t, map[string]any{"file_path": "Books/dune.txt", "tags_md_path": f.catalog})
	assert.Equal(t, "title is required", text(t, res))

	res = f.call(t, map[string]any{"title": "Dune", "file_path": "Books/dune.txt", "tags_md_path": "/nonexistent/tags.md"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "catalogue")

	res = f.call(t, map[string]any{"title": "Dune", "file_path": "Books/missing.txt", "tags_md_path": f.catalog})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "read book")

	f.model.err = errors.New("connection refused")
	res = f.call(t, map[string]any{"title": "Dune", "file_path": "Books/dune.txt", "tags_md_path": f.catalog})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "connection refused")
}

func TestApply(t *testing.T) {
	f := newFixture(t, nextcloud.Full)
	prop := proposal.Proposal{
		ExistingTags: []string{"Desert", "Space Opera"},
		UnknownTags:  []string{"Space Opera"},
		NewTags:      []proposal.NewTag{{Name: "Ecology"}},
	}

	applied, err := f.ext.apply(context.Background(), f.extCtx.Client(), "Books/dune.txt", prop)
	require.NoError(t, err)
	assert.Equal(t, []string{"Desert"}, applied)
	assert.Equal(t, []string{"Desert"}, f.srv.TagNames())
}

func TestModelFromConfig(t *testing.T) {
	cfg := &config.Config{}
	_, err := modelFromConfig(context.Background(), cfg, "skynet", "")
	assert.ErrorIs(t, err, llm.ErrUnknownProvider)

	p, err := modelFromConfig(context.Background(), cfg, "", "")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultProvider, p.Name())
}
