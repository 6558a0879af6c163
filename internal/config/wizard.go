package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"

	"github.com/scottfrazer/blog/internal/auth"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Let's configure your blog.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Server.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 65535 {
				return fmt.Errorf("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 2. Database location.
	dbPrompt := promptui.Prompt{
		Label:   "Database file",
		Default: cfg.Database.Path,
	}
	if cfg.Database.Path, err = dbPrompt.Run(); err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}

	// 3. Admin password.
	hash, err := PromptPasswordHash()
	if err != nil {
		return nil, err
	}
	cfg.Auth.AdminPasswordBcrypt = hash

	// 4. Session store.
	cachePrompt := promptui.Select{
		Label: "Session store",
		Items: []string{
			"memory: single instance, sessions lost on restart",
			"redis:  shared between instances",
		},
	}
	cacheIdx, _, err := cachePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	if cacheIdx == 1 {
		cfg.Cache.Type = "redis"
		redisPrompt := promptui.Prompt{
			Label:   "Redis address",
			Default: "localhost:6379",
		}
		if cfg.Cache.RedisAddr, err = redisPrompt.Run(); err != nil {
			return nil, fmt.Errorf("redis address: %w", err)
		}
	}

	// 5. Site title.
	titlePrompt := promptui.Prompt{
		Label:   "Site title",
		Default: cfg.Site.Title,
	}
	if cfg.Site.Title, err = titlePrompt.Run(); err != nil {
		return nil, fmt.Errorf("site title: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	if !cfg.StravaConfigured() {
		fmt.Println("Add strava.client_id and strava.client_secret to enable activity sync.")
	}
	return cfg, nil
}

// PromptPasswordHash asks for the admin password twice and returns its
// bcrypt hash.
func PromptPasswordHash() (string, error) {
	passPrompt := promptui.Prompt{
		Label: "Admin password",
		Mask:  '*',
		Validate: func(s string) error {
			if len(s) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}
			return nil
		},
	}
	password, err := passPrompt.Run()
	if err != nil {
		return "", fmt.Errorf("password: %w", err)
	}

	confirmPrompt := promptui.Prompt{
		Label: "Confirm password",
		Mask:  '*',
	}
	confirm, err := confirmPrompt.Run()
	if err != nil {
		return "", fmt.Errorf("password confirmation: %w", err)
	}
	if confirm != password {
		return "", fmt.Errorf("passwords do not match")
	}

	return auth.HashPassword(password)
}
