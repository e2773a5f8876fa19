// resources.go exposes file text as MCP resources.
//
// Resources give clients read-only access by URI without a tool call, which
// suits loading a file into context. URIs look like
// nextcloud://files/{path}; the path is relative to the files root.

package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aitormendez/nextcloud-mcp-server/internal/cat"
	"github.com/aitormendez/nextcloud-mcp-server/internal/log"
	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const fileURIPrefix = "nextcloud://files/"

var (
	// ErrInvalidURI indicates a resource URI outside the files scheme.
	ErrInvalidURI = errors.New("invalid URI")
	// ErrEmptyPath indicates a resource URI without a file path.
	ErrEmptyPath = errors.New("empty file path")
)

func registerResources(s *server.MCPServer, h *handlers) {
	if !h.client.Can(nextcloud.CapRead) {
		return
	}
	s.AddResourceTemplate(
		mcp.NewResourceTemplate(
			fileURIPrefix+"{+path}",
			"File",
			mcp.WithTemplateDescription("Text content of a file (EPUB books as chapter text)"),
			mcp.WithTemplateMIMEType("text/plain"),
		),
		h.readFileResource,
	)
}

// readFileResource handles nextcloud://files/{path} resource reads.
func (h *handlers) readFileResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	path, err := parseFileURI(uri)
	if err != nil {
		return nil, err
	}

	res, err := cat.Text(ctx, h.client, path, 0)
	log.Event("mcp:resource", "read").User(h.user).Path(path).Write(err)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     res.Content,
		},
	}, nil
}

// parseFileURI extracts the unescaped file path from a resource URI.
func parseFileURI(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, fileURIPrefix)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidURI, uri)
	}
	if rest == "" {
		return "", ErrEmptyPath
	}
	path, err := url.PathUnescape(rest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	return path, nil
}
