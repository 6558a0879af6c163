package config

import (
	"time"

	"github.com/scottfrazer/blog/internal/cache"
	"github.com/scottfrazer/blog/internal/logging"
)

// DefaultAllowedOrigins are the front-end origins permitted by CORS.
var DefaultAllowedOrigins = []string{
	"http://127.0.0.1:3000",
	"http://localhost:3000",
	"https://scottfrazer.net",
}

// DefaultImportIncludes are the post file patterns picked up by `blog import`.
var DefaultImportIncludes = []string{
	"**/*.txt",
	"**/*.post",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: DefaultAllowedOrigins,
			RequestTimeout: 60 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "data/blog.db",
		},
		Auth: AuthConfig{
			SessionTTL: 7 * 24 * time.Hour,
		},
		Cache: cache.DefaultConfig(),
		Log: logging.Config{
			Level:  "info",
			Format: "text",
		},
		Render: RenderConfig{
			Style: "solarized-dark",
		},
		Strava: StravaConfig{
			CallbackPort: 9753,
		},
		Site: SiteConfig{
			Title:     "Blog",
			OutputDir: "site",
		},
		Import: ImportConfig{
			Include: DefaultImportIncludes,
		},
	}
}
