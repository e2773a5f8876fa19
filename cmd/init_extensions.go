/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// init_extensions.go handles extension initialisation and command registration.
//
// Design: Extensions register during init() but aren't initialised until
// first command execution. Offline commands (config, guide, llm, version)
// never reach this point, so they work before a server is configured. The
// client is created once and shared across all extensions via the Context.

package cmd

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/aitormendez/nextcloud-mcp-server/extension"
	"github.com/aitormendez/nextcloud-mcp-server/internal/config"
	"github.com/aitormendez/nextcloud-mcp-server/internal/log"
	"github.com/aitormendez/nextcloud-mcp-server/internal/logging"
	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
)

// offlineCommands lists commands that run without a remote client.
var offlineCommands map[string]bool

// buildOfflineCommands merges the core bootstrap commands with those
// declared by extensions implementing extension.Offline.
func buildOfflineCommands() map[string]bool {
	cmds := map[string]bool{
		"help":       true,
		"completion": true,
	}
	for name := range extension.OfflineCommands() {
		cmds[name] = true
	}
	return cmds
}

var (
	extContext extension.Context
	logger     *zap.Logger
	initOnce   sync.Once
	initErr    error
)

// loadConfig reads the --config file when given, otherwise the discovered
// local or global file.
func loadConfig() (*config.Config, error) {
	if p := ConfigPath(); p != "" {
		return config.LoadFile(p)
	}
	return config.Load()
}

// newLogger builds the stderr diagnostic logger. --verbose forces debug.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel()
	if Verbose() {
		level = "debug"
	}
	return logging.New(level, cfg.LogFormat())
}

// initExtensions builds the Nextcloud client and injects it into extensions.
//
// A missing URL or credential surfaces here as a *nextcloud.ConfigurationError,
// before any command talks to the server.
func initExtensions() error {
	initOnce.Do(func() {
		cfg, err := loadConfig()
		if err != nil {
			initErr = err
			return
		}

		rc, err := cfg.Remote()
		if err != nil {
			initErr = err
			return
		}

		logger, err = newLogger(cfg)
		if err != nil {
			initErr = err
			return
		}

		client := nextcloud.New(rc,
			nextcloud.WithTimeout(cfg.Timeout()),
			nextcloud.WithLogger(logger),
			nextcloud.WithCapabilities(cfg.Capabilities()),
			nextcloud.WithMaxBody(cfg.MaxBody()),
		)
		log.SetServer(rc.RootURL)

		extContext = extension.NewContext(client, cfg, logger)
		for _, ext := range extension.All() {
			if init, ok := ext.(extension.Initializable); ok {
				if err := init.Init(extContext); err != nil {
					initErr = fmt.Errorf("init extension %s: %w", ext.Name(), err)
					return
				}
			}
		}
		logger.Debug("client ready",
			zap.String("server", rc.RootURL),
			zap.String("user", rc.User),
			zap.Stringer("capabilities", cfg.Capabilities()))
	})
	return initErr
}

var extensionsOnce sync.Once

// registerExtensions adds commands from all registered extensions.
// Called once before Execute runs.
func registerExtensions() {
	extensionsOnce.Do(func() {
		for _, ext := range extension.All() {
			for _, cmd := range ext.Commands() {
				rootCmd.AddCommand(cmd)
			}
		}
		offlineCommands = buildOfflineCommands()
	})
}

// syncLogger flushes buffered diagnostics. Errors from syncing stderr are
// expected on some platforms and ignored.
func syncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}
