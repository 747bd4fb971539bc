// Package retention deletes the oldest matching files in a directory
// beyond a configured count.
package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hostmaint/hostmaint/internal/models"
	"github.com/rs/zerolog"
)

// Service defines the interface for retention pruning.
type Service interface {
	Prune(dir, suffix string, keep int) (*models.PruneResult, error)
}

// Impl implements the Service interface.
type Impl struct {
	logger zerolog.Logger
}

// New creates a new retention service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{logger: logger}
}

type fileAge struct {
	name    string
	modTime time.Time
}

// Prune lists the files in dir whose names end with suffix, sorts them
// ascending by modification time, and deletes all but the newest keep
// files. Equal modification times keep directory listing order, which is
// not guaranteed deterministic across filesystems.
//
// The suffix filter makes the pruner generic: the same code serves the
// archive directory (.tar.gz) and the log directory (.log). When the
// active log file is the oldest over the limit it is deleted too; see
// DESIGN.md for why that behavior is kept.
//
// Pruning is best effort. Individual deletion failures are logged and
// skipped; only a listing failure is returned, and callers treat even
// that as non-fatal.
func (s *Impl) Prune(dir, suffix string, keep int) (*models.PruneResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var files []fileAge
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping file, cannot stat")
			continue
		}
		files = append(files, fileAge{name: entry.Name(), modTime: info.ModTime()})
	}

	result := &models.PruneResult{Kept: len(files)}
	if len(files) <= keep {
		s.logger.Debug().
			Str("dir", dir).
			Str("suffix", suffix).
			Int("count", len(files)).
			Int("keep", keep).
			Msg("nothing to prune")
		return result, nil
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	for _, old := range files[:len(files)-keep] {
		path := filepath.Join(dir, old.name)
		if err := os.Remove(path); err != nil {
			s.logger.Error().Err(err).Str("file", old.name).Msg("failed to delete old file")
			continue
		}
		s.logger.Info().Str("file", old.name).Msg("deleted old file")
		result.Deleted = append(result.Deleted, old.name)
		result.Kept--
	}

	return result, nil
}
