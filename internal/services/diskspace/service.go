// Package diskspace guards backup runs against filling the destination volume.
package diskspace

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// ErrInsufficientSpace is returned by the caller when a check fails; the
// guard itself only reports, it never aborts.
var ErrInsufficientSpace = errors.New("insufficient free space on backup volume")

const bytesPerGiB = 1 << 30

// Service defines the interface for free-space checks.
type Service interface {
	Check(path string, minFreeGB float64) (bool, error)
}

// StatfsFunc reports filesystem statistics for a path. It matches
// unix.Statfs and exists so tests can substitute fixed values.
type StatfsFunc func(path string, buf *unix.Statfs_t) error

// Impl implements the Service interface.
type Impl struct {
	statfs StatfsFunc
	logger zerolog.Logger
}

// New creates a new disk space service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		statfs: unix.Statfs,
		logger: logger,
	}
}

// NewWithStatfs creates a new disk space service with a custom statfs
// implementation (for testing).
func NewWithStatfs(logger zerolog.Logger, statfs StatfsFunc) *Impl {
	return &Impl{
		statfs: statfs,
		logger: logger,
	}
}

// Check reports whether the volume holding path has at least minFreeGB GiB
// available to unprivileged writers. A shortfall is logged with both the
// actual and required values; the caller decides whether to abort.
func (s *Impl) Check(path string, minFreeGB float64) (bool, error) {
	var stat unix.Statfs_t
	if err := s.statfs(path, &stat); err != nil {
		return false, fmt.Errorf("statfs %s: %w", path, err)
	}

	freeGB := float64(stat.Bavail) * float64(stat.Bsize) / bytesPerGiB

	if freeGB < minFreeGB {
		s.logger.Error().
			Str("path", path).
			Float64("free_gb", freeGB).
			Float64("required_gb", minFreeGB).
			Msg("insufficient free space")
		return false, nil
	}

	s.logger.Debug().
		Str("path", path).
		Float64("free_gb", freeGB).
		Float64("required_gb", minFreeGB).
		Msg("free space check passed")

	return true, nil
}
