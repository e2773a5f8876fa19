// config_keys.go provides key-value access to configuration settings.
//
// The MCP and CLI surfaces address settings by string keys such as
// "client.timeout". Optional numeric fields are pointers so "not set" (nil)
// stays distinct from an explicit zero.

package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud"
)

// masked replaces secrets in listings.
const masked = "********"

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"server.url", "server.user", "server.password",
		"client.timeout", "client.capabilities", "client.rate_limit", "client.burst", "client.max_body",
		"llm.provider", "llm.model", "llm.api_key", "llm.base_url",
		"logging.level", "logging.format",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// IsSecret reports whether key holds a credential.
func IsSecret(key string) bool {
	return key == "server.password" || key == "llm.api_key"
}

// Get returns the value of a configuration key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "server.url":
		return c.Server.URL, nil
	case "server.user":
		return c.Server.User, nil
	case "server.password":
		return c.Server.Password, nil
	case "client.timeout":
		return c.Timeout().String(), nil
	case "client.capabilities":
		return c.Capabilities().String(), nil
	case "client.rate_limit":
		return strconv.Itoa(c.RateLimit()), nil
	case "client.burst":
		return strconv.Itoa(c.Burst()), nil
	case "client.max_body":
		return strconv.FormatInt(c.MaxBody(), 10), nil
	case "llm.provider":
		return c.Provider(), nil
	case "llm.model":
		return c.LLM.Model, nil
	case "llm.api_key":
		return c.LLM.APIKey, nil
	case "llm.base_url":
		return c.LLM.BaseURL, nil
	case "logging.level":
		return c.LogLevel(), nil
	case "logging.format":
		return c.LogFormat(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "server.url":
		if err := checkURL(key, value); err != nil {
			return err
		}
		c.Server.URL = value
	case "server.user":
		c.Server.User = value
	case "server.password":
		c.Server.Password = value
	case "client.timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: client.timeout must be a positive duration such as 30s", ErrInvalidValue)
		}
		c.Client.Timeout = d
	case "client.capabilities":
		if _, err := nextcloud.ParseCapabilities(value); err != nil {
			return fmt.Errorf("%w: client.capabilities must be list-only, list-rename, full or a list of list,read,rename,tag", ErrInvalidValue)
		}
		c.Client.Capabilities = value
	case "client.rate_limit":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: client.rate_limit must be a non-negative integer", ErrInvalidValue)
		}
		c.Client.RateLimit = &n
	case "client.burst":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: client.burst must be a positive integer", ErrInvalidValue)
		}
		c.Client.Burst = &n
	case "client.max_body":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: client.max_body must be a positive integer", ErrInvalidValue)
		}
		c.Client.MaxBody = n
	case "llm.provider":
		v := strings.ToLower(value)
		if !slices.Contains([]string{"openai", "anthropic", "ollama", "gemini"}, v) {
			return fmt.Errorf("%w: llm.provider must be openai, anthropic, ollama or gemini", ErrInvalidValue)
		}
		c.LLM.Provider = v
	case "llm.model":
		c.LLM.Model = value
	case "llm.api_key":
		c.LLM.APIKey = value
	case "llm.base_url":
		if err := checkURL(key, value); err != nil {
			return err
		}
		c.LLM.BaseURL = value
	case "logging.level":
		v := strings.ToLower(value)
		if !slices.Contains([]string{"debug", "info", "warn", "error"}, v) {
			return fmt.Errorf("%w: logging.level must be debug, info, warn or error", ErrInvalidValue)
		}
		c.Logging.Level = v
	case "logging.format":
		v := strings.ToLower(value)
		if v != "console" && v != "json" {
			return fmt.Errorf("%w: logging.format must be console or json", ErrInvalidValue)
		}
		c.Logging.Format = v
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

func checkURL(key, value string) error {
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s must be an http(s) URL", ErrInvalidValue, key)
	}
	return nil
}

// All returns all configuration values as a map. Secrets are masked.
func (c *Config) All() map[string]string {
	all := make(map[string]string, len(ValidKeys()))
	for _, key := range ValidKeys() {
		v, _ := c.Get(key)
		if IsSecret(key) && v != "" {
			v = masked
		}
		all[key] = v
	}
	return all
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case "server.url":
		return c.Server.URL != ""
	case "server.user":
		return c.Server.User != ""
	case "server.password":
		return c.Server.Password != ""
	case "client.timeout":
		return c.Client.Timeout != 0
	case "client.capabilities":
		return c.Client.Capabilities != ""
	case "client.rate_limit":
		return c.Client.RateLimit != nil
	case "client.burst":
		return c.Client.Burst != nil
	case "client.max_body":
		return c.Client.MaxBody != 0
	case "llm.provider":
		return c.LLM.Provider != ""
	case "llm.model":
		return c.LLM.Model != ""
	case "llm.api_key":
		return c.LLM.APIKey != ""
	case "llm.base_url":
		return c.LLM.BaseURL != ""
	case "logging.level":
		return c.Logging.Level != ""
	case "logging.format":
		return c.Logging.Format != ""
	default:
		return false
	}
}
