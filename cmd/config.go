package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vibelab/vibrascope/configs"
)

var configInitPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configInitPath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("finding home directory: %w", err)
			}
			path = filepath.Join(home, ".config", "vibrascope", "vibrascope.yaml")
		}

		if err := configs.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", "",
		"target path (default is $HOME/.config/vibrascope/vibrascope.yaml)")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
