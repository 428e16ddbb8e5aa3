package commands

import (
	"fmt"
	"os"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/app"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dsn     string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "fisctl",
	Short: "Operations tool for the FIS inscriptions service",
	Long: `fisctl runs one-off maintenance tasks against the inscriptions database
with the same configuration as the HTTP server (config/config.yaml + .env).

Examples:
  fisctl migrate
  fisctl recap --date 2026-01-10 --dry-run
  fisctl token --user user_123 --role admin --ttl 2h`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "db", "", "Database URL, overrides database.dsn")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

// loadConfig reads the shared configuration and applies the global flags.
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if dsn != "" {
		cfg.Database.DSN = dsn
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, app.NewLogger(cfg.Log), nil
}
