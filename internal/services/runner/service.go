// Package runner orchestrates the backup workflow.
package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/hostmaint/hostmaint/internal/models"
	"github.com/hostmaint/hostmaint/internal/services/archive"
	"github.com/hostmaint/hostmaint/internal/services/diskspace"
	"github.com/hostmaint/hostmaint/internal/services/retention"
	"github.com/rs/zerolog"
)

// Service defines the interface for the backup runner.
type Service interface {
	Run(ctx context.Context, cfg models.BackupConfig) error
}

// Impl implements the runner Service interface.
type Impl struct {
	diskSvc      diskspace.Service
	archiveSvc   archive.Service
	retentionSvc retention.Service
	logger       zerolog.Logger
}

// New creates a new runner service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		diskSvc:      diskspace.New(logger),
		archiveSvc:   archive.New(logger),
		retentionSvc: retention.New(logger),
		logger:       logger,
	}
}

// NewWithServices creates a new runner service with custom services (for testing).
func NewWithServices(
	logger zerolog.Logger,
	diskSvc diskspace.Service,
	archiveSvc archive.Service,
	retentionSvc retention.Service,
) *Impl {
	return &Impl{
		diskSvc:      diskSvc,
		archiveSvc:   archiveSvc,
		retentionSvc: retentionSvc,
		logger:       logger,
	}
}

// Run executes one backup pass:
//
//  1. Free-space guard on the backup root; a shortfall aborts the run
//     before anything is created.
//  2. Archive the source directory into <backup_root>/backup_files
//     (source existence and directory creation are handled there).
//  3. Prune old archives and old log files. Both prunes always run after
//     a successful archive; prune errors are logged and never abort the
//     run.
//
// The first fatal error is returned; the caller converts it to exit code 1.
func (s *Impl) Run(ctx context.Context, cfg models.BackupConfig) error {
	start := time.Now()
	s.logger.Info().Str("source", cfg.SourceDir).Msg("starting backup run")

	ok, err := s.diskSvc.Check(cfg.BackupRoot, cfg.MinFreeSpaceGB)
	if err != nil {
		return fmt.Errorf("disk space check: %w", err)
	}
	if !ok {
		return diskspace.ErrInsufficientSpace
	}

	backupDir := filepath.Join(cfg.BackupRoot, models.BackupDirName)
	result, err := s.archiveSvc.Create(ctx, cfg.SourceDir, backupDir)
	if err != nil {
		return err
	}

	s.pruneBestEffort(backupDir, ".tar.gz", cfg.MaxBackups)
	s.pruneBestEffort(filepath.Join(cfg.BackupRoot, models.LogDirName), ".log", cfg.MaxLogs)

	s.logger.Info().
		Str("archive", result.Path).
		Int64("size", result.SizeBytes).
		Dur("duration", time.Since(start)).
		Msg("backup run completed successfully")

	return nil
}

func (s *Impl) pruneBestEffort(dir, suffix string, keep int) {
	result, err := s.retentionSvc.Prune(dir, suffix, keep)
	if err != nil {
		s.logger.Warn().Err(err).Str("dir", dir).Str("suffix", suffix).Msg("cleanup failed")
		return
	}

	s.logger.Debug().
		Str("dir", dir).
		Str("suffix", suffix).
		Int("deleted", len(result.Deleted)).
		Int("kept", result.Kept).
		Msg("cleanup finished")
}
