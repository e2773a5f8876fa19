// tools_util.go holds helpers for reading tool arguments and building results.
//
// Optional arguments are read permissively: a missing or mistyped value
// yields the default instead of an error, because agents often omit or
// stringify optional parameters.

package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
	"github.com/mark3labs/mcp-go/mcp"
)

// getString returns the named string argument or def.
func getString(req mcp.CallToolRequest, name, def string) string {
	if v, err := req.RequireString(name); err == nil {
		return v
	}
	return def
}

// getBool returns the named boolean argument or def.
func getBool(req mcp.CallToolRequest, name string, def bool) bool {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}

// getInt returns the named numeric argument or def. JSON numbers arrive
// as float64.
func getInt(req mcp.CallToolRequest, name string, def int) int {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return def
	}
	if v, ok := args[name].(float64); ok {
		return int(v)
	}
	return def
}

// jsonResult wraps v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult turns a client error into a tool error the agent can act on.
func errorResult(err error) *mcp.CallToolResult {
	var (
		conflict *nextcloud.ConflictError
		notFound *nextcloud.NotFoundError
		remote   *nextcloud.RemoteError
	)
	switch {
	case errors.As(err, &conflict):
		return mcp.NewToolResultError(fmt.Sprintf("%v (choose another name)", err))
	case errors.As(err, &notFound):
		return mcp.NewToolResultError(fmt.Sprintf("%v (check the path with list_files)", err))
	case errors.As(err, &remote) && remote.Status == 404:
		return mcp.NewToolResultError(fmt.Sprintf("%v (check the path with list_files)", err))
	}
	return mcp.NewToolResultError(err.Error())
}
