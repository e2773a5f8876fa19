// context.go defines what extensions may reach: the remote client, the
// loaded configuration and the diagnostic logger.

package extension

import (
	"github.com/aitormendez/nextcloud-mcp-server/internal/config"
	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
	"go.uber.org/zap"
)

// Context provides extensions controlled access to shared resources.
type Context interface {
	// Client returns the Nextcloud client, restricted to the configured
	// capability set.
	Client() *nextcloud.Client

	// Config returns the loaded configuration.
	Config() *config.Config

	// Logger returns the diagnostic logger (stderr).
	Logger() *zap.Logger
}

type extContext struct {
	client *nextcloud.Client
	cfg    *config.Config
	logger *zap.Logger
}

// NewContext creates a new extension context. A nil logger is replaced by
// a no-op logger.
func NewContext(client *nextcloud.Client, cfg *config.Config, logger *zap.Logger) Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &extContext{client: client, cfg: cfg, logger: logger}
}

func (c *extContext) Client() *nextcloud.Client { return c.client }

func (c *extContext) Config() *config.Config { return c.cfg }

func (c *extContext) Logger() *zap.Logger { return c.logger }
