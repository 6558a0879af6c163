package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	mcpserver "github.com/scottfrazer/blog/internal/mcp"
	"github.com/scottfrazer/blog/internal/posts"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio exposing read-only post tools.`,
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

		mcpserver.Version = Version

		logrus.WithField("database", database.Path()).Info("blog MCP server started on stdio")

		srv := mcpserver.NewServer(posts.NewStore(database))
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
