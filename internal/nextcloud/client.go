// Package nextcloud is a client for the WebDAV file and systemtags endpoints
// of a Nextcloud server.
//
// A Client is built from a RemoteContext and a capability set. Every call is
// a fresh round trip: nothing about remote state is cached, nothing is
// retried, and multi-step operations are not rolled back.
package nextcloud

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Capability is a set of operation groups a Client may perform.
type Capability uint8

const (
	CapList Capability = 1 << iota
	CapRead
	CapRename
	CapTag
)

// Capability presets.
const (
	ListOnly   = CapList | CapRead
	ListRename = ListOnly | CapRename
	Full       = ListRename | CapTag
)

var capabilityNames = map[string]Capability{
	"list":   CapList,
	"read":   CapRead,
	"rename": CapRename,
	"tag":    CapTag,
}

var presetNames = map[string]Capability{
	"list-only":   ListOnly,
	"list-rename": ListRename,
	"full":        Full,
}

// Has reports whether every capability in want is present in c.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

func (c Capability) String() string {
	for name, preset := range presetNames {
		if c == preset {
			return name
		}
	}
	var parts []string
	for _, name := range []string{"list", "read", "rename", "tag"} {
		if c.Has(capabilityNames[name]) {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ",")
}

// ParseCapabilities parses a preset name ("list-only", "list-rename",
// "full") or a comma-separated list of "list", "read", "rename" and "tag".
// An empty string means Full.
func ParseCapabilities(s string) (Capability, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Full, nil
	}
	if preset, ok := presetNames[s]; ok {
		return preset, nil
	}
	var c Capability
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		bit, ok := capabilityNames[part]
		if !ok {
			return 0, &ConfigurationError{
				Field:  "capabilities",
				Reason: fmt.Sprintf("unknown capability %q", part),
			}
		}
		c |= bit
	}
	return c, nil
}

type options struct {
	doer    Doer
	timeout time.Duration
	logger  *zap.Logger
	caps    Capability
	maxBody int64
}

// Option configures a Client.
type Option func(*options)

// WithDoer replaces the default HTTP client.
func WithDoer(d Doer) Option {
	return func(o *options) { o.doer = d }
}

// WithTimeout sets the per-call timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCapabilities restricts the client to caps.
func WithCapabilities(caps Capability) Option {
	return func(o *options) { o.caps = caps }
}

// WithMaxBody caps the size of any response body read by the client.
func WithMaxBody(n int64) Option {
	return func(o *options) { o.maxBody = n }
}

// Client is a Nextcloud client restricted to a capability set.
type Client struct {
	rc       RemoteContext
	caps     Capability
	resolver Resolver
	dir      *Directory
	registry *Registry
	tagger   *Tagger
}

// New returns a Client for rc.
func New(rc RemoteContext, opts ...Option) *Client {
	o := options{caps: Full, maxBody: DefaultMaxBody}
	for _, opt := range opts {
		opt(&o)
	}
	if o.doer == nil {
		o.doer = NewHTTPClient(o.timeout)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.maxBody <= 0 {
		o.maxBody = DefaultMaxBody
	}

	t := &transport{doer: o.doer, rc: rc, logger: o.logger, maxBody: o.maxBody}
	resolver := NewResolver(rc)
	dir := &Directory{t: t, resolver: resolver}
	registry := &Registry{t: t}
	return &Client{
		rc:       rc,
		caps:     o.caps,
		resolver: resolver,
		dir:      dir,
		registry: registry,
		tagger:   &Tagger{dir: dir, registry: registry},
	}
}

// Capabilities returns the client's capability set.
func (c *Client) Capabilities() Capability { return c.caps }

// Can reports whether the client supports want.
func (c *Client) Can(want Capability) bool { return c.caps.Has(want) }

// RemoteContext returns the endpoints the client talks to.
func (c *Client) RemoteContext() RemoteContext { return c.rc }

// Normalize maps a server href or URL to a path relative to the storage root.
func (c *Client) Normalize(path string) string { return c.resolver.Normalize(path) }

func (c *Client) require(want Capability, op string) error {
	if c.caps.Has(want) {
		return nil
	}
	return fmt.Errorf("%s: %w", op, ErrUnsupported)
}

// ListFiles returns the display names of the children of path.
func (c *Client) ListFiles(ctx context.Context, path string) ([]string, error) {
	if err := c.require(CapList, "list files"); err != nil {
		return nil, err
	}
	return c.dir.ListFiles(ctx, path)
}

// ListEntries returns the children of path with size, time and type.
func (c *Client) ListEntries(ctx context.Context, path string) ([]Entry, error) {
	if err := c.require(CapList, "list entries"); err != nil {
		return nil, err
	}
	return c.dir.ListEntries(ctx, path)
}

// ResolveFileID returns the file id of path.
func (c *Client) ResolveFileID(ctx context.Context, path string) (FileID, error) {
	if err := c.require(CapList, "resolve file id"); err != nil {
		return "", err
	}
	return c.dir.ResolveFileID(ctx, path)
}

// Read returns at most limit bytes of the file at path.
func (c *Client) Read(ctx context.Context, path string, limit int64) ([]byte, error) {
	if err := c.require(CapRead, "read"); err != nil {
		return nil, err
	}
	return c.dir.Read(ctx, path, limit)
}

// Rename moves oldPath to newPath without overwriting.
func (c *Client) Rename(ctx context.Context, oldPath, newPath string) error {
	if err := c.require(CapRename, "rename"); err != nil {
		return err
	}
	return c.dir.Rename(ctx, oldPath, newPath)
}

// TagFile assigns tagName to the file at path.
func (c *Client) TagFile(ctx context.Context, path, tagName string) (Tagged, error) {
	if err := c.require(CapTag, "tag file"); err != nil {
		return Tagged{}, err
	}
	return c.tagger.TagFile(ctx, path, tagName)
}

// ListTagsForFile returns the names of the tags assigned to path.
func (c *Client) ListTagsForFile(ctx context.Context, path string) ([]string, error) {
	if err := c.require(CapTag, "list file tags"); err != nil {
		return nil, err
	}
	return c.tagger.ListTagsForFile(ctx, path)
}

// ListAllTags returns the names of every tag.
func (c *Client) ListAllTags(ctx context.Context) ([]string, error) {
	if err := c.require(CapTag, "list tags"); err != nil {
		return nil, err
	}
	return c.tagger.ListAllTags(ctx)
}

// Tags returns every tag with its id and flags.
func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	if err := c.require(CapTag, "list tags"); err != nil {
		return nil, err
	}
	return c.registry.List(ctx)
}
