// Package main provides the scholarbib CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/compscidr/scholarbib/internal/config"
	"github.com/compscidr/scholarbib/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger zerolog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "scholarbib",
	Short: "Keep a BibTeX bibliography in sync with a Google Scholar profile",
	Long: `scholarbib regenerates a bibliography file from a Google Scholar profile
and keeps its entries ordered by year and citation count.

Settings come from scholarbib.yml (in ., _scripts or _config), SCHOLARBIB_*
environment variables and a .env file, in increasing priority; flags win.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: scholarbib.yml if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")
	rootCmd.Version = Version
}

func setup(cmd *cobra.Command, args []string) error {
	// Load .env file if present
	_ = godotenv.Load()

	loaded, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}
	if logFormat != "" {
		loaded.Logging.Format = logFormat
	}
	cfg = loaded
	logger = logging.New(cfg.Logging)
	return nil
}
