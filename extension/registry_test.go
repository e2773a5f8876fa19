package extension

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testExtension struct {
	name    string
	offline []string
	tools   []MCPTool
}

func (e testExtension) Name() string               { return e.name }
func (e testExtension) Commands() []*cobra.Command { return nil }
func (e testExtension) MCPTools() []MCPTool        { return e.tools }
func (e testExtension) OfflineCommands() []string  { return e.offline }

func TestRegister_PanicOnDuplicate(t *testing.T) {
	name := "test-duplicate-panic"
	Register(testExtension{name: name})

	assert.Panics(t, func() { Register(testExtension{name: name}) })
	assert.NotNil(t, Get(name))
	assert.Contains(t, Names(), name)
}

func TestOfflineCommands(t *testing.T) {
	Register(testExtension{name: "test-offline", offline: []string{"hello", "about"}})

	cmds := OfflineCommands()
	assert.True(t, cmds["hello"])
	assert.True(t, cmds["about"])
	assert.False(t, cmds["ls"])
}

func TestBind(t *testing.T) {
	extCtx := NewContext(nil, nil, nil)
	require.NotNil(t, extCtx.Logger())

	var got Context
	tool := MCPTool{
		Tool: mcp.NewTool("test_bind"),
		Handler: func(_ context.Context, c Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			got = c
			return mcp.NewToolResultText("ok"), nil
		},
	}
	Register(testExtension{name: "test-bind", tools: []MCPTool{tool}})

	var bound []string
	for _, st := range ServerTools(extCtx) {
		bound = append(bound, st.Tool.Name)
		if st.Tool.Name == "test_bind" {
			res, err := st.Handler(context.Background(), mcp.CallToolRequest{})
			require.NoError(t, err)
			assert.False(t, res.IsError)
		}
	}
	assert.Contains(t, bound, "test_bind")
	assert.Same(t, extCtx, got)
}
