package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scottfrazer/blog/internal/config"
)

var passwdSave bool

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Set the admin password",
	Long: `Prompts for the admin password and prints its bcrypt hash. With --save the
hash is written to the config file; otherwise export it as
BLOG_AUTH_ADMIN_PASSWORD_BCRYPT.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := config.PromptPasswordHash()
		if err != nil {
			return err
		}
		if !passwdSave {
			fmt.Println(hash)
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg.Auth.AdminPasswordBcrypt = hash
		if err := cfg.Save(cfgFile); err != nil {
			return err
		}
		fmt.Printf("Admin password saved to %s\n", cfgFile)
		return nil
	},
}

func init() {
	passwdCmd.Flags().BoolVar(&passwdSave, "save", false, "write the hash to the config file")
	rootCmd.AddCommand(passwdCmd)
}
