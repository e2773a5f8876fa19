// config.go implements the "nextcloud-mcp config" command.
//
// Design: Config follows a cascade model similar to git: local config
// (.nextcloud-mcp/config.yaml) takes precedence over global
// (~/.nextcloud-mcp/config.yaml), and the environment overrides both when
// reading. Writes never see the environment, so a password exported in the
// shell is not copied into a file.

package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/aitormendez/nextcloud-mcp-server/cmd"
	"github.com/aitormendez/nextcloud-mcp-server/extension"
	"github.com/aitormendez/nextcloud-mcp-server/internal/config"
	"github.com/aitormendez/nextcloud-mcp-server/internal/log"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "config [key] [value]",
		Short: "View or set config values",
		Long: `View or set config values.

  nextcloud-mcp config                                   # show config
  nextcloud-mcp config server.url                        # show one value
  nextcloud-mcp config server.url https://cloud.example  # set a value

Configuration locations:
  Global: ~/.nextcloud-mcp/config.yaml
  Local:  .nextcloud-mcp/config.yaml

Uses local config if it exists, otherwise global.
Writes go to the same place reads come from.
Use --local to use local config instead.

NEXTCLOUD_URL, NEXTCLOUD_USER, NEXTCLOUD_PASSWORD and NEXTCLOUD_MCP_<KEY>
override file values when reading. Secrets are masked in output.`,
		Args: cobra.MaximumNArgs(2),
		RunE: runConfig,
	}
	c.Flags().Bool(extension.FlagLocal, false, "Use local config (.nextcloud-mcp/config.yaml)")
	return c
}

// configForWrite loads the file a set should modify, without the
// environment overlay.
func configForWrite(forceLocal bool) (*config.Config, error) {
	if cmd.ConfigPath() != "" {
		return nil, errors.New("config set does not support --config; edit the file directly")
	}
	if forceLocal {
		return config.LoadScope(config.ScopeLocal)
	}
	if _, err := os.Stat(config.LocalPath()); err == nil {
		return config.LoadScope(config.ScopeLocal)
	}
	return config.LoadScope(config.ScopeGlobal)
}

// configForRead loads the effective configuration.
func configForRead(forceLocal bool) (*config.Config, error) {
	switch {
	case cmd.ConfigPath() != "":
		return config.LoadFile(cmd.ConfigPath())
	case forceLocal:
		return config.LoadScope(config.ScopeLocal)
	default:
		return config.Load()
	}
}

func scopeName(s config.Scope) string {
	switch s {
	case config.ScopeLocal:
		return "local"
	case config.ScopeFile:
		return "file"
	default:
		return "global"
	}
}

func runConfig(c *cobra.Command, args []string) error {
	forceLocal, _ := c.Flags().GetBool(extension.FlagLocal)

	if len(args) == 2 {
		return setConfig(forceLocal, args[0], args[1])
	}

	cfg, err := configForRead(forceLocal)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("config load: %w", err))
	}

	if len(args) == 0 {
		all := cfg.All()
		log.Event("core:config", "list").Write(nil)
		if cmd.JSON() {
			return cmd.PrintJSON(all)
		}
		for _, k := range config.ValidKeys() {
			v := all[k]
			if !cfg.IsSet(k) {
				v += " (default)"
			}
			fmt.Fprintf(cmd.Out(), "%s: %s\n", k, v)
		}
		return nil
	}

	key := args[0]
	v, err := cfg.Get(key)
	log.Event("core:config", "get").Detail("key", key).Write(err)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("config get %q: %w", key, err))
	}
	if config.IsSecret(key) && v != "" {
		v = cfg.All()[key]
	}
	if cmd.JSON() {
		return cmd.PrintJSON(map[string]string{key: v})
	}
	fmt.Fprintln(cmd.Out(), v)
	return nil
}

func setConfig(forceLocal bool, key, value string) error {
	cfg, err := configForWrite(forceLocal)
	if err != nil {
		return cmd.PrintJSONError(fmt.Errorf("config load: %w", err))
	}

	if err := cfg.Set(key, value); err != nil {
		log.Event("core:config", "set").Detail("key", key).Write(err)
		return cmd.PrintJSONError(fmt.Errorf("config set %q: %w", key, err))
	}

	scope := scopeName(cfg.Scope())
	saveErr := cfg.Save()
	// Value not logged: it may be a password or API key.
	log.Event("core:config", "set").Detail("key", key).Detail("scope", scope).Write(saveErr)
	if saveErr != nil {
		return cmd.PrintJSONError(fmt.Errorf("config save: %w", saveErr))
	}

	shown := value
	if config.IsSecret(key) {
		shown = cfg.All()[key]
	}
	if cmd.JSON() {
		return cmd.PrintJSON(map[string]string{"key": key, "value": shown, "scope": scope})
	}
	fmt.Fprintf(cmd.Out(), "%s = %s (%s)\n", key, shown, scope)
	return nil
}
