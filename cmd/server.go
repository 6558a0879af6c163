package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scottfrazer/blog/internal/audit"
	"github.com/scottfrazer/blog/internal/auth"
	"github.com/scottfrazer/blog/internal/posts"
	"github.com/scottfrazer/blog/internal/server"
	"github.com/scottfrazer/blog/internal/stats"
	"github.com/scottfrazer/blog/internal/strava"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the blog API server",
	Long:  `Starts the JSON API serving posts, login, the visit counter and Strava activities.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serverPort != 0 {
			cfg.Server.Port = serverPort
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		c, err := openCache(cfg)
		if err != nil {
			return err
		}

		if cfg.Auth.AdminPasswordBcrypt == "" {
			logrus.Warn("no admin password configured; run `blog passwd --save` to enable login")
		}
		sessions := auth.NewSessions(c, cfg.Auth.SessionTTL)
		trail := audit.NewStore(database)

		srv := server.New(server.Config{
			Port:           cfg.Server.Port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			RequestTimeout: cfg.Server.RequestTimeout,
		}, server.Deps{
			DB:       database,
			Audit:    trail,
			Sessions: sessions,
			Login:    auth.NewHandler(sessions, cfg.Auth.AdminPasswordBcrypt, auth.WithAudit(trail)),
			Posts:    posts.NewStore(database),
			Renderer: newRenderer(cfg, c),
			Stats:    stats.New(stats.Info{GitHash: GitHash, Version: Version}),
			Strava:   strava.NewStore(database),
		}, logrus.StandardLogger())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			logrus.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logrus.WithError(err).Error("server shutdown")
			}
		}()

		logrus.WithFields(logrus.Fields{
			"version":  Version,
			"git_hash": GitHash,
			"database": database.Path(),
			"cache":    cfg.Cache.Type,
		}).Info("blog server starting")

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "port to listen on (overrides server.port)")
	rootCmd.AddCommand(serverCmd)
}
