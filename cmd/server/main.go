package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/invoicer/internal/config"
	"github.com/mmynk/invoicer/internal/storage/gormstore"
	"github.com/mmynk/invoicer/pkg/logging"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "1.0.0"

var envFile string

var rootCmd = &cobra.Command{
	Use:           "invoicer",
	Short:         "Multi-tenant invoice management API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file read before the environment")
	rootCmd.AddCommand(serveCmd, migrateCmd, adminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads settings and configures logging for any subcommand.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel)
	return cfg, nil
}

// openStore connects to the configured database.
func openStore(cfg *config.Config) (*gormstore.Store, error) {
	store, err := gormstore.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}
