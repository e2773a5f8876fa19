// Package guide embeds the usage pages shown by the guide command and the
// guide MCP tool.
package guide

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.md
var files embed.FS

// Index is the page returned for an empty topic.
const Index = "guide"

// aliases maps command and tool names to the page that documents them.
var aliases = map[string]string{
	"ls":           "files",
	"mv":           "files",
	"cat":          "files",
	"list_files":   "files",
	"rename_file":  "files",
	"read_file":    "files",
	"tag":          "tags",
	"tag_file":     "tags",
	"list_tags":    "tags",
	"propose_tags": "propose",
	"ask":          "propose",
	"audit":        "config",
	"serve":        "config",
}

// Get returns the page for topic. Command and tool names resolve to the page
// that covers them; an empty topic returns the index.
func Get(topic string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(topic))
	if name == "" {
		name = Index
	}
	if page, ok := aliases[name]; ok {
		name = page
	}
	data, err := files.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("guide %q: %w", topic, fs.ErrNotExist)
	}
	return string(data), nil
}

// List returns the topic names, sorted, without the index page.
func List() ([]string, error) {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".md")
		if name != Index {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
