package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scottfrazer/blog/internal/posts"
	"github.com/scottfrazer/blog/internal/site"
)

var (
	siteOutput string
	siteServe  bool
	sitePort   int
	siteOpen   bool
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Export the blog as a static site",
	Long:  `Renders every post to HTML with an index, archive and client-side search.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		output := cfg.Site.OutputDir
		if siteOutput != "" {
			output = siteOutput
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		// The export renders each post once; no cache needed.
		gen := site.NewSiteGenerator(posts.NewStore(database), newRenderer(cfg, nil), output, cfg.Site.Title)
		n, err := gen.Generate(cmd.Context())
		if err != nil {
			return fmt.Errorf("generating site: %w", err)
		}
		fmt.Printf("Wrote %d posts to %s\n", n, output)

		if !siteServe {
			return nil
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return site.Serve(ctx, output, sitePort, siteOpen)
	},
}

func init() {
	siteCmd.Flags().StringVarP(&siteOutput, "output", "o", "", "output directory (default from config)")
	siteCmd.Flags().BoolVar(&siteServe, "serve", false, "serve the site after generating it")
	siteCmd.Flags().IntVar(&sitePort, "port", 8000, "port for --serve")
	siteCmd.Flags().BoolVar(&siteOpen, "open", false, "open the site in a browser (with --serve)")
	rootCmd.AddCommand(siteCmd)
}
