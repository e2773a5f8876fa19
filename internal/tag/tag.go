// Package tag provides the tag add and list operations for the CLI layer.
//
// This package orchestrates the client calls and output formatting; the
// create-then-assign workflow itself lives in internal/nextcloud.

package tag

import (
	"context"
	"fmt"
	"io"

	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
	"github.com/aitormendez/nextcloud-mcp-server/internal/validate"
)

// Client is the part of the Nextcloud client the tag commands need.
type Client interface {
	TagFile(ctx context.Context, path, tagName string) (nextcloud.Tagged, error)
	ListTagsForFile(ctx context.Context, path string) ([]string, error)
	ListAllTags(ctx context.Context) ([]string, error)
}

// Result contains the outcome of a tag operation.
type Result struct {
	Path   string           `json:"path,omitempty"`
	Tag    string           `json:"tag,omitempty"`
	Action string           `json:"action,omitempty"`
	FileID nextcloud.FileID `json:"file_id,omitempty"`
	TagID  int              `json:"tag_id,omitempty"`
	Tags   []string         `json:"tags"`
}

// Add assigns tag to the file at path, creating the tag when missing.
func Add(ctx context.Context, w io.Writer, c Client, path, tag string) (Result, error) {
	result := Result{Path: path, Tag: tag, Action: "add", Tags: []string{}}

	path, err := validate.File(path)
	if err != nil {
		return result, err
	}
	if err := validate.Tag(tag); err != nil {
		return result, err
	}
	result.Path = path

	tagged, err := c.TagFile(ctx, path, tag)
	if err != nil {
		return result, err
	}
	result.FileID = tagged.FileID
	result.TagID = tagged.TagID

	if tags, err := c.ListTagsForFile(ctx, path); err == nil {
		result.Tags = tags
	}

	fmt.Fprintf(w, "Added tag %q to %s\n", tag, path)
	return result, nil
}

// List lists the tags of the file at path, or every tag on the server when
// path is empty.
func List(ctx context.Context, w io.Writer, c Client, path string) (Result, error) {
	result := Result{Path: path, Tags: []string{}}

	path, err := validate.Path(path)
	if err != nil {
		return result, err
	}
	result.Path = path

	var tags []string
	if path == "" {
		tags, err = c.ListAllTags(ctx)
	} else {
		tags, err = c.ListTagsForFile(ctx, path)
	}
	if err != nil {
		return result, err
	}
	if tags != nil {
		result.Tags = tags
	}

	for _, t := range result.Tags {
		fmt.Fprintln(w, t)
	}
	return result, nil
}
