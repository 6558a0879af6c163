package config

import (
	"time"

	"github.com/scottfrazer/blog/internal/cache"
	"github.com/scottfrazer/blog/internal/logging"
)

// Config is the top-level blog configuration, corresponding to blog.yml.
type Config struct {
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	Database DatabaseConfig `yaml:"database" koanf:"database"`
	Auth     AuthConfig     `yaml:"auth" koanf:"auth"`
	Cache    cache.Config   `yaml:"cache" koanf:"cache"`
	Log      logging.Config `yaml:"log" koanf:"log"`
	Render   RenderConfig   `yaml:"render" koanf:"render"`
	Strava   StravaConfig   `yaml:"strava" koanf:"strava"`
	Site     SiteConfig     `yaml:"site" koanf:"site"`
	Import   ImportConfig   `yaml:"import" koanf:"import"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port           int           `yaml:"port" koanf:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins" koanf:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path" koanf:"path"`
}

// AuthConfig holds admin login settings. The password is only ever stored
// as a bcrypt hash.
type AuthConfig struct {
	AdminPasswordBcrypt string        `yaml:"admin_password_bcrypt" koanf:"admin_password_bcrypt"`
	SessionTTL          time.Duration `yaml:"session_ttl" koanf:"session_ttl"`
}

// RenderConfig controls HTML rendering of post blocks.
type RenderConfig struct {
	Style string `yaml:"style" koanf:"style"` // chroma style name
}

// StravaConfig holds the Strava API application credentials.
type StravaConfig struct {
	ClientID     string `yaml:"client_id" koanf:"client_id"`
	ClientSecret string `yaml:"client_secret" koanf:"client_secret"`
	CallbackPort int    `yaml:"callback_port" koanf:"callback_port"`
}

// SiteConfig controls static site export.
type SiteConfig struct {
	Title     string `yaml:"title" koanf:"title"`
	OutputDir string `yaml:"output_dir" koanf:"output_dir"`
}

// ImportConfig holds the glob filters used by `blog import`.
type ImportConfig struct {
	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`
}
