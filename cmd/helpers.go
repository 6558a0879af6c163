package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/scottfrazer/blog/internal/cache"
	"github.com/scottfrazer/blog/internal/config"
	"github.com/scottfrazer/blog/internal/db"
	"github.com/scottfrazer/blog/internal/logging"
	"github.com/scottfrazer/blog/internal/render"
)

// loadConfig loads and validates the config file and sets up logging.
// --verbose forces debug logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	if _, err := logging.Setup(cfg.Log); err != nil {
		return nil, err
	}
	logrus.WithField("config", cfgFile).Debug("config loaded")
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*db.DB, error) {
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.Database.Path, err)
	}
	return database, nil
}

func openCache(cfg *config.Config) (cache.Cache, error) {
	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("creating %s cache: %w", cfg.Cache.Type, err)
	}
	return c, nil
}

func newRenderer(cfg *config.Config, c cache.Cache) *render.Renderer {
	if c == nil {
		return render.New(cfg.Render.Style)
	}
	return render.New(cfg.Render.Style, render.WithCache(c, cfg.Cache.DefaultTTL))
}
