package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "BLOG_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (BLOG_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults. List defaults are applied after unmarshalling
	// because decoding into a populated slice overwrites it element-wise.
	cfg := DefaultConfig()
	cfg.Server.AllowedOrigins = nil
	cfg.Import.Include = nil

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// BLOG_SERVER_PORT -> server.port, BLOG_AUTH_ADMIN_PASSWORD_BCRYPT -> auth.admin_password_bcrypt
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = DefaultAllowedOrigins
	}
	if len(cfg.Import.Include) == 0 {
		cfg.Import.Include = DefaultImportIncludes
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validCacheTypes = map[string]bool{
	"memory": true,
	"redis":  true,
}

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server.request_timeout must be non-negative")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}
	if c.Auth.AdminPasswordBcrypt != "" && !strings.HasPrefix(c.Auth.AdminPasswordBcrypt, "$2") {
		return fmt.Errorf("auth.admin_password_bcrypt does not look like a bcrypt hash")
	}

	if !validCacheTypes[c.Cache.Type] {
		return fmt.Errorf("invalid cache.type %q: must be one of memory, redis", c.Cache.Type)
	}
	if c.Cache.Type == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required when cache.type is redis")
	}

	if c.Log.Format != "" && !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be one of text, json", c.Log.Format)
	}

	if c.Strava.CallbackPort < 0 || c.Strava.CallbackPort > 65535 {
		return fmt.Errorf("strava.callback_port %d out of range", c.Strava.CallbackPort)
	}

	return nil
}

// StravaConfigured reports whether Strava API credentials are present.
func (c *Config) StravaConfigured() bool {
	return c.Strava.ClientID != "" && c.Strava.ClientSecret != ""
}
