package main

import (
	"os"

	"github.com/hostmaint/hostmaint/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// defaultConfigPath is where the backup workflow looks for its
// configuration unless -c/--config overrides it.
const defaultConfigPath = "/etc/backup_config.yaml"

var (
	// Version is set at build time.
	Version = "dev"

	// Configuration flags.
	configFile string
	verbose    bool
	quiet      bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "hostmaint",
	Short: "Host maintenance utilities for scheduled backup and update runs",
	Long: `hostmaint bundles two independent host administration tools:
  - backup: archive a directory into a timestamped tar.gz under a backup
    root and prune old archives and logs
  - update: detect the host's package family and run the appropriate
    update/upgrade/clean commands

Use as one-shot commands with an external scheduler (cron, systemd timer, etc.)`,
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfigPath, "backup config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode (errors only)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output logs in JSON format")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(validateCmd)
}

// flagLevel resolves the log level from the verbosity flags, falling back
// to the given configured level.
func flagLevel(configured string) string {
	switch {
	case quiet:
		return "error"
	case verbose:
		return "debug"
	default:
		return configured
	}
}

// bootstrapLogger is the console-only logger used before a config-validated
// file logger exists. It writes to stderr so early failures stay on the
// error stream.
func bootstrapLogger() zerolog.Logger {
	return logging.NewConsole(logging.Options{
		Level:       flagLevel("info"),
		JSONConsole: jsonOutput,
		ConsoleOut:  os.Stderr,
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
