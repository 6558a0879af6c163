package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/scottfrazer/blog/internal/content"
)

var renderFormat string

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Segment and render post text",
	Long: `Reads post text from file (or stdin) and prints its blocks as JSON, the
rendered HTML fragment, the intermediate markdown, or normalized post markup
(one blank line between blocks, fences on their own lines).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if len(args) == 1 && args[0] != "-" {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		blocks := content.Segment(string(data))

		switch renderFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(blocks)
		case "markup":
			out, err := content.Join(blocks)
			if err != nil {
				return fmt.Errorf("normalizing markup: %w", err)
			}
			fmt.Println(out)
			return nil
		case "html", "markdown":
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			r := newRenderer(cfg, nil)
			if renderFormat == "markdown" {
				fmt.Print(r.Markdown(blocks))
				return nil
			}
			out, err := r.HTML(blocks)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		default:
			return fmt.Errorf("unknown format %q (expected json, html, markdown or markup)", renderFormat)
		}
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "json", "output format: json, html, markdown, markup")
	rootCmd.AddCommand(renderCmd)
}
