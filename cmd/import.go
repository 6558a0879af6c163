package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scottfrazer/blog/internal/audit"
	"github.com/scottfrazer/blog/internal/importer"
	"github.com/scottfrazer/blog/internal/posts"
	"github.com/scottfrazer/blog/internal/progress"
)

var (
	importInclude []string
	importExclude []string
	importDryRun  bool
	importDrafts  bool
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import a directory of post files",
	Long: `Walks dir and creates a post from every matching file. A file may start
with YAML front matter setting title and date; otherwise the title is the
file name and the date its modification time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		include := cfg.Import.Include
		if len(importInclude) > 0 {
			include = importInclude
		}
		exclude := append(append([]string{}, cfg.Import.Exclude...), importExclude...)

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		im := importer.New(posts.NewStore(database), progress.NewReporter("Importing posts"))
		res, err := im.Run(cmd.Context(), importer.Options{
			Dir:     args[0],
			Include: include,
			Exclude: exclude,
			Drafts:  importDrafts,
			DryRun:  importDryRun,
		})
		if err != nil {
			return err
		}

		if !importDryRun && len(res.Created) > 0 {
			_, err := audit.NewStore(database).Log(cmd.Context(), audit.Entry{
				Action:  audit.ActionPostsImported,
				Summary: fmt.Sprintf("imported %d posts from %s", len(res.Created), args[0]),
			})
			if err != nil {
				return err
			}
		}

		verb := "Imported"
		if importDryRun {
			verb = "Would import"
		}
		fmt.Printf("%s %d posts (%d skipped)\n", verb, len(res.Created), len(res.Skipped))
		for _, p := range res.Created {
			fmt.Printf("  %s  %s\n", p.Date.Format("2006-01-02"), p.Title)
		}
		if verbose {
			for _, s := range res.Skipped {
				fmt.Printf("  skipped %s\n", s)
			}
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringSliceVar(&importInclude, "include", nil, "include globs (default from config)")
	importCmd.Flags().StringSliceVar(&importExclude, "exclude", nil, "additional exclude globs")
	importCmd.Flags().BoolVar(&importDrafts, "drafts", false, "also import posts under drafts/ and _drafts/")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "parse files without creating posts")
	rootCmd.AddCommand(importCmd)
}
