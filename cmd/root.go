package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/insightequity/alpha-api/cmd/users"
	"github.com/insightequity/alpha-api/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "alpha-api",
	Short: "Insight Equity Alpha API server",
	Long: `Insight Equity Alpha is the backend for a VC research workspace.
It serves the browser pages, the JSON API, and session-based authentication
with role-based access control.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: SERVER_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: DEBUG)")

	// Add subcommands
	rootCmd.AddCommand(users.UsersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
