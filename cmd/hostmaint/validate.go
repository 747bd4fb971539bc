package main

import (
	"fmt"
	"os"

	"github.com/hostmaint/hostmaint/internal/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the backup configuration file",
	Long:  `Validate the backup configuration file without executing any backup operations.`,
	RunE:  validateConfig,
}

func validateConfig(cmd *cobra.Command, args []string) error {
	boot := bootstrapLogger()

	// Check if file exists
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		boot.Error().Str("file", configFile).Msg("config file not found")
		return fmt.Errorf("config file not found: %s", configFile)
	}

	parser := config.NewParser()
	cfg, err := parser.LoadFile(configFile)
	if err != nil {
		boot.Error().Err(err).Str("file", configFile).Msg("failed to parse config")
		return err
	}

	if err := config.Validate(cfg); err != nil {
		boot.Error().Err(err).Msg("configuration validation failed")
		return err
	}

	// Print configuration summary
	fmt.Println("Configuration is valid!")
	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  Backup root: %s\n", cfg.BackupRoot)
	fmt.Printf("  Min free space: %.2f GiB\n", cfg.MinFreeSpaceGB)
	fmt.Printf("  Max backups: %d\n", cfg.MaxBackups)
	fmt.Printf("  Max logs: %d\n", cfg.MaxLogs)
	fmt.Printf("  Log level: %s\n", cfg.LogLevel)
	if cfg.SourceDir != "" {
		fmt.Printf("  Source: %s\n", cfg.SourceDir)
	} else {
		fmt.Println("  Source: (not set, must be passed with --source)")
	}

	return nil
}
