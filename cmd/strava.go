package cmd

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scottfrazer/blog/internal/audit"
	"github.com/scottfrazer/blog/internal/config"
	"github.com/scottfrazer/blog/internal/progress"
	"github.com/scottfrazer/blog/internal/strava"
)

var stravaCmd = &cobra.Command{
	Use:   "strava",
	Short: "Manage the Strava activity feed",
}

var stravaAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize blog to read your Strava activities",
	Long: `Opens the Strava consent page in a browser and stores the resulting
token in the database. Requires strava.client_id and strava.client_secret.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadStravaConfig()
		if err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		tok, err := strava.RunBrowserAuth(cmd.Context(), cfg.Strava.ClientID, cfg.Strava.ClientSecret, cfg.Strava.CallbackPort)
		if err != nil {
			return err
		}
		if err := strava.NewStore(database).SaveToken(cmd.Context(), tok); err != nil {
			return err
		}
		fmt.Println("Strava authorized.")
		return nil
	},
}

var stravaSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download new Strava activities",
	Long:  `Fetches every activity newer than the most recent stored one, with its laps.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadStravaConfig()
		if err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		ctx := cmd.Context()
		store := strava.NewStore(database)
		conf := strava.OAuthConfig(cfg.Strava.ClientID, cfg.Strava.ClientSecret, "")
		ts, err := strava.TokenSource(ctx, conf, store)
		if err != nil {
			return err
		}
		client := strava.NewClient(ctx, ts, strava.WithLogger(logrus.StandardLogger()))

		res, err := strava.Sync(ctx, client, store, progress.NewReporter("Syncing activities"))
		if err != nil {
			return err
		}
		total, err := store.Count(ctx)
		if err != nil {
			return err
		}
		_, err = audit.NewStore(database).Log(ctx, audit.Entry{
			Action:  audit.ActionStravaSynced,
			Summary: fmt.Sprintf("synced %d activities, %d laps", res.Activities, res.Laps),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Synced %d activities and %d laps over %d pages (%d stored)\n",
			res.Activities, res.Laps, res.Pages, total)
		return nil
	},
}

func loadStravaConfig() (*config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.StravaConfigured() {
		return nil, errors.New("strava.client_id and strava.client_secret must be set")
	}
	return cfg, nil
}

func init() {
	stravaCmd.AddCommand(stravaAuthCmd, stravaSyncCmd)
	rootCmd.AddCommand(stravaCmd)
}
