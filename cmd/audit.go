package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/scottfrazer/blog/internal/audit"
)

var (
	auditLimit  int
	auditAction string
	auditPrune  time.Duration
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show or prune the admin audit trail",
	Long: `Lists recent admin actions (logins, post edits, imports, Strava syncs),
newest first. With --prune, entries older than the given age are deleted instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		store := audit.NewStore(database)
		ctx := cmd.Context()

		if auditPrune > 0 {
			n, err := store.DeleteBefore(ctx, time.Now().Add(-auditPrune))
			if err != nil {
				return err
			}
			fmt.Printf("Deleted %d audit entries\n", n)
			return nil
		}

		entries, err := store.Query(ctx, audit.QueryFilter{Action: audit.Action(auditAction), Limit: auditLimit})
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No audit entries.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%-16s %-15s %s\n", humanize.Time(e.Timestamp), e.Action, e.Summary)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().IntVarP(&auditLimit, "limit", "n", 20, "number of entries to show")
	auditCmd.Flags().StringVar(&auditAction, "action", "", "only show this action")
	auditCmd.Flags().DurationVar(&auditPrune, "prune", 0, "delete entries older than this age (e.g. 2160h)")
	rootCmd.AddCommand(auditCmd)
}
