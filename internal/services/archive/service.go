// Package archive creates timestamped tar.gz archives of a source directory.
package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hostmaint/hostmaint/internal/models"
	"github.com/klauspost/pgzip"
	"github.com/rs/zerolog"
)

// ErrSourceNotFound indicates the directory to archive does not exist.
var ErrSourceNotFound = errors.New("source directory does not exist")

// Service defines the interface for archive operations.
type Service interface {
	Create(ctx context.Context, sourceDir, destDir string) (*models.ArchiveResult, error)
}

// Impl implements the Service interface.
type Impl struct {
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a new archive service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		logger: logger,
		now:    time.Now,
	}
}

// NewWithClock creates a new archive service with a fixed clock (for testing).
func NewWithClock(logger zerolog.Logger, now func() time.Time) *Impl {
	return &Impl{
		logger: logger,
		now:    now,
	}
}

// ArchiveName returns the archive file name for a source directory at a
// given time: backup_<basename>_<YYYYMMDD_HHMMSS>.tar.gz. Resolution is
// one second; a second invocation within the same second overwrites the
// first. Runs are operator-triggered, never concurrent, so this is a
// documented limitation rather than a hazard.
func ArchiveName(sourceDir string, t time.Time) string {
	return fmt.Sprintf("backup_%s_%s.tar.gz", filepath.Base(sourceDir), t.Format("20060102_150405"))
}

// Create archives sourceDir into destDir, creating destDir if needed.
// Entries inside the archive are rooted at the basename of sourceDir.
// Any I/O error is fatal; a partially written archive is removed.
func (s *Impl) Create(ctx context.Context, sourceDir, destDir string) (*models.ArchiveResult, error) {
	start := s.now()

	if _, err := os.Stat(sourceDir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, sourceDir)
		}
		return nil, fmt.Errorf("stat source %s: %w", sourceDir, err)
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating backup directory %s: %w", destDir, err)
	}

	archivePath := filepath.Join(destDir, ArchiveName(sourceDir, start))
	s.logger.Info().Str("source", sourceDir).Str("archive", archivePath).Msg("creating archive")

	if err := s.writeArchive(ctx, sourceDir, archivePath); err != nil {
		_ = os.Remove(archivePath)
		return nil, err
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, fmt.Errorf("stat archive %s: %w", archivePath, err)
	}

	result := &models.ArchiveResult{
		Path:      archivePath,
		SizeBytes: info.Size(),
		Duration:  time.Since(start),
	}

	s.logger.Info().
		Str("archive", result.Path).
		Int64("size", result.SizeBytes).
		Dur("duration", result.Duration).
		Msg("archive created")

	return result, nil
}

func (s *Impl) writeArchive(ctx context.Context, sourceDir, archivePath string) (retErr error) {
	file, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("creating archive file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil && retErr == nil {
			retErr = fmt.Errorf("closing archive file: %w", err)
		}
	}()

	gzWriter := pgzip.NewWriter(file)
	tarWriter := tar.NewWriter(gzWriter)

	root := filepath.Base(sourceDir)

	walkErr := filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return fmt.Errorf("reading symlink %s: %w", path, err)
			}
		}

		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(filepath.Join(root, rel))
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(tarWriter, f)
		return err
	})
	if walkErr != nil {
		return fmt.Errorf("archiving %s: %w", sourceDir, walkErr)
	}

	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("finalizing tar stream: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("finalizing gzip stream: %w", err)
	}

	return nil
}
