package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hostmaint/hostmaint/internal/config"
	"github.com/hostmaint/hostmaint/internal/logging"
	"github.com/hostmaint/hostmaint/internal/models"
	"github.com/hostmaint/hostmaint/internal/services/runner"
	"github.com/spf13/cobra"
)

var sourceDir string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Archive a directory and prune old backups",
	Long: `Execute one backup pass:
1. Check free space on the backup root
2. Archive the source directory into <backup_root>/backup_files as
   backup_<basename>_<YYYYMMDD_HHMMSS>.tar.gz
3. Delete archives beyond max_backups and log files beyond max_logs

The run is logged to <backup_root>/logs/backup.log and mirrored to the
console.`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVarP(&sourceDir, "source", "s", "", "override the configured source directory")
}

func runBackup(cmd *cobra.Command, args []string) error {
	boot := bootstrapLogger()

	// Config failures happen before the config-validated file logger
	// exists, so they go to the console only.
	parser := config.NewParser()
	cfg, err := parser.LoadFile(configFile)
	if err != nil {
		boot.Error().Err(err).Str("file", configFile).Msg("failed to load config")
		return err
	}

	if sourceDir != "" {
		cfg.SourceDir = sourceDir
	}
	if cfg.SourceDir == "" {
		err := fmt.Errorf("source directory not specified in config or via --source")
		boot.Error().Err(err).Msg("invalid configuration")
		return err
	}

	if err := config.Validate(cfg); err != nil {
		boot.Error().Err(err).Msg("invalid configuration")
		return err
	}

	logger, closer, err := logging.New(logging.Options{
		Dir:         filepath.Join(cfg.BackupRoot, models.LogDirName),
		Filename:    models.LogFileName,
		Level:       flagLevel(cfg.LogLevel),
		JSONConsole: jsonOutput,
	})
	if err != nil {
		boot.Error().Err(err).Msg("failed to set up logging")
		return err
	}
	defer closer.Close()

	logger.Info().
		Str("config", configFile).
		Str("backup_root", cfg.BackupRoot).
		Str("source", cfg.SourceDir).
		Msg("configuration loaded")

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	}()

	runnerSvc := runner.New(logger)
	if err := runnerSvc.Run(ctx, *cfg); err != nil {
		logger.Error().Err(err).Msg("backup failed")
		return err
	}

	return nil
}
