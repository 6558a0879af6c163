package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version and GitHash are set via ldflags at build time:
//
//	go build -ldflags "-X github.com/scottfrazer/blog/cmd.Version=1.0.0 -X github.com/scottfrazer/blog/cmd.GitHash=$(git rev-parse HEAD)"
var (
	Version = "dev"
	GitHash = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of blog",
	Run: func(cmd *cobra.Command, args []string) {
		if GitHash != "" {
			fmt.Printf("blog %s (%s)\n", Version, GitHash)
			return
		}
		fmt.Printf("blog %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
