// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "settingsforge",
	Short: "SettingsForge is a schema-driven application settings service",
	Long: `SettingsForge is a web service for managing application settings.
Pages of typed fields are defined in code, values are stored per key in the
database, and updates are validated, change-tracked and permission-gated.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
