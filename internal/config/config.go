// Package config provides reading and writing of nextcloud-mcp configuration.
// Supports both global (~/.nextcloud-mcp/config.yaml) and local
// (.nextcloud-mcp/config.yaml).
// Reading: uses local if it exists, otherwise global, then overlays the
// environment (NEXTCLOUD_URL, NEXTCLOUD_USER, NEXTCLOUD_PASSWORD and
// NEXTCLOUD_MCP_*) and a .env file in the working directory.
// Writing: defaults to global, use --local for local. Environment values are
// never written back.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.nextcloud-mcp/config.yaml (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is directory-specific config in .nextcloud-mcp/config.yaml
	ScopeLocal
	// ScopeFile is an explicit file given with --config
	ScopeFile
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

// Server holds the Nextcloud connection settings.
type Server struct {
	URL      string `yaml:"url,omitempty" mapstructure:"url" validate:"omitempty,url"`
	User     string `yaml:"user,omitempty" mapstructure:"user"`
	Password string `yaml:"password,omitempty" mapstructure:"password"`
}

// Client holds remote call and tool surface settings.
type Client struct {
	Timeout      time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout" validate:"gte=0"`
	Capabilities string        `yaml:"capabilities,omitempty" mapstructure:"capabilities"`
	RateLimit    *int          `yaml:"rate_limit,omitempty" mapstructure:"rate_limit" validate:"omitempty,gte=0"`
	Burst        *int          `yaml:"burst,omitempty" mapstructure:"burst" validate:"omitempty,gte=1"`
	MaxBody      int64         `yaml:"max_body,omitempty" mapstructure:"max_body" validate:"gte=0"`
}

// LLM selects the language model used for tag proposals.
type LLM struct {
	Provider string `yaml:"provider,omitempty" mapstructure:"provider" validate:"omitempty,oneof=openai anthropic ollama gemini"`
	Model    string `yaml:"model,omitempty" mapstructure:"model"`
	APIKey   string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty" mapstructure:"base_url" validate:"omitempty,url"`
}

// Logging controls diagnostic output on stderr.
type Logging struct {
	Level  string `yaml:"level,omitempty" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format,omitempty" mapstructure:"format" validate:"omitempty,oneof=console json"`
}

// Defaults applied when not configured.
const (
	DefaultTimeout      = nextcloud.DefaultTimeout
	DefaultCapabilities = "full"
	DefaultRateLimit    = 10
	DefaultBurst        = 20
	DefaultMaxBody      = nextcloud.DefaultMaxBody
	DefaultProvider     = "ollama"
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "console"
)

// Config contains configuration for nextcloud-mcp.
type Config struct {
	Server  Server  `yaml:"server,omitempty" mapstructure:"server"`
	Client  Client  `yaml:"client,omitempty" mapstructure:"client"`
	LLM     LLM     `yaml:"llm,omitempty" mapstructure:"llm"`
	Logging Logging `yaml:"logging,omitempty" mapstructure:"logging"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

var validate = validator.New()

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if all values are valid or not set (defaults will be used).
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	if _, err := nextcloud.ParseCapabilities(c.Client.Capabilities); err != nil {
		return fmt.Errorf("%w: client.capabilities: %v", ErrInvalidValue, err)
	}
	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Errorf("%w: %s failed on '%s' (value: %v)",
			ErrInvalidValue, strings.ToLower(strings.TrimPrefix(e.Namespace(), "Config.")), e.Tag(), e.Value())
	}
	return err
}

// Remote returns the connection context for the configured server.
// Missing values yield *nextcloud.ConfigurationError.
func (c *Config) Remote() (nextcloud.RemoteContext, error) {
	return nextcloud.NewRemoteContext(c.Server.URL, c.Server.User, c.Server.Password)
}

// Timeout returns the per-call timeout (defaults to 30s).
func (c *Config) Timeout() time.Duration {
	if c.Client.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Client.Timeout
}

// Capabilities returns the client capability set (defaults to full).
func (c *Config) Capabilities() nextcloud.Capability {
	caps, err := nextcloud.ParseCapabilities(c.Client.Capabilities)
	if err != nil {
		return nextcloud.Full
	}
	return caps
}

// RateLimit returns the allowed tool calls per second. Zero disables limiting.
func (c *Config) RateLimit() int {
	if c.Client.RateLimit == nil {
		return DefaultRateLimit
	}
	return *c.Client.RateLimit
}

// Burst returns the tool call burst size (defaults to 20).
func (c *Config) Burst() int {
	if c.Client.Burst == nil {
		return DefaultBurst
	}
	return *c.Client.Burst
}

// MaxBody returns the response body cap in bytes (defaults to 16 MB).
func (c *Config) MaxBody() int64 {
	if c.Client.MaxBody <= 0 {
		return DefaultMaxBody
	}
	return c.Client.MaxBody
}

// Provider returns the LLM provider name (defaults to ollama).
func (c *Config) Provider() string {
	if c.LLM.Provider == "" {
		return DefaultProvider
	}
	return c.LLM.Provider
}

// LogLevel returns the diagnostic log level (defaults to warn).
func (c *Config) LogLevel() string {
	if c.Logging.Level == "" {
		return DefaultLogLevel
	}
	return c.Logging.Level
}

// LogFormat returns the diagnostic log format (defaults to console).
func (c *Config) LogFormat() string {
	if c.Logging.Format == "" {
		return DefaultLogFormat
	}
	return c.Logging.Format
}

// LocalPath returns the path to the local config file.
func LocalPath() string {
	return filepath.Join(".nextcloud-mcp", "config.yaml")
}

// GlobalPath returns the path to the global (user) config file:
// ~/.nextcloud-mcp/config.yaml
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".nextcloud-mcp", "config.yaml")
}

// Load reads configuration: uses local if it exists, otherwise global, and
// overlays the environment.
func Load() (*Config, error) {
	scope := ScopeGlobal
	if _, err := os.Stat(LocalPath()); err == nil {
		scope = ScopeLocal
	}
	return load(pathForScope(scope), scope, true)
}

// LoadFile reads configuration from an explicit file and overlays the
// environment. A missing file is an error.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}
	return load(path, ScopeFile, true)
}

// LoadScope reads configuration from a specific scope without the
// environment overlay. Use it when the config is going to be saved.
func LoadScope(scope Scope) (*Config, error) {
	return load(pathForScope(scope), scope, false)
}

func load(path string, scope Scope, withEnv bool) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if withEnv {
		if err := bindEnv(v); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("malformed config file %s: %w\n\nTo fix: edit the file to correct the YAML syntax, or delete it to use defaults", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config file %s: %w", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		if path == "" {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// envNames maps configuration keys to their environment variables. The
// connection settings keep the plain NEXTCLOUD_* names.
func envNames(key string) []string {
	switch key {
	case "server.url":
		return []string{"NEXTCLOUD_URL"}
	case "server.user":
		return []string{"NEXTCLOUD_USER"}
	case "server.password":
		return []string{"NEXTCLOUD_PASSWORD"}
	default:
		return []string{"NEXTCLOUD_MCP_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
	}
}

// bindEnv binds every key to its environment variable and copies values
// from a .env file for variables the environment leaves unset.
func bindEnv(v *viper.Viper) error {
	dotenv := viper.New()
	dotenv.SetConfigFile(DotEnvFile)
	dotenv.SetConfigType("env")
	haveDotEnv := true
	if err := dotenv.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("malformed %s file: %w", DotEnvFile, err)
		}
		haveDotEnv = false
	}

	for _, key := range ValidKeys() {
		names := envNames(key)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
		if !haveDotEnv {
			continue
		}
		for _, name := range names {
			if _, set := os.LookupEnv(name); set {
				break
			}
			if val := dotenv.GetString(strings.ToLower(name)); val != "" {
				v.Set(key, val)
				break
			}
		}
	}
	return nil
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Path returns the file this config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration to its original location.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = pathForScope(c.scope)
	}
	if c.path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(c.path)
}

// SaveScope writes the configuration to the specified scope.
func (c *Config) SaveScope(scope Scope) error {
	path := pathForScope(scope)
	if path == "" {
		return ErrNoConfigPath
	}
	return c.saveToPath(path)
}

// saveToPath writes configuration to a specific filesystem path.
// The file holds credentials, so it is written with mode 0600.
func (c *Config) saveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// pathForScope returns the filesystem path for a given scope.
func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
