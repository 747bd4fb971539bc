// Package pkgmgr drives the host package manager for update runs.
package pkgmgr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/hostmaint/hostmaint/internal/models"
	"github.com/rs/zerolog"
)

// ErrUnsupportedDistribution indicates the detected distribution has no
// known package-manager command set.
var ErrUnsupportedDistribution = errors.New("unsupported distribution")

const defaultAptListsDir = "/var/lib/apt/lists"

// Service defines the interface for update runs.
type Service interface {
	Run(ctx context.Context, session models.UpdateSession) (*models.UpdateResult, error)
}

// CommandExecutor allows mocking exec.Command in tests.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultExecutor is the default command executor using os/exec.
type DefaultExecutor struct{}

// Execute runs a command and returns its merged stdout and stderr.
func (e *DefaultExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Impl implements the Service interface.
type Impl struct {
	executor    CommandExecutor
	logger      zerolog.Logger
	aptListsDir string
}

// New creates a new package manager service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		executor:    &DefaultExecutor{},
		logger:      logger,
		aptListsDir: defaultAptListsDir,
	}
}

// NewWithExecutor creates a new package manager service with a custom
// executor and apt lists directory (for testing).
func NewWithExecutor(logger zerolog.Logger, executor CommandExecutor, aptListsDir string) *Impl {
	return &Impl{
		executor:    executor,
		logger:      logger,
		aptListsDir: aptListsDir,
	}
}

// Run executes the update sequence for the session's distribution family.
// The first failing step halts the sequence and is returned as the error;
// an unsupported distribution fails before any command runs.
func (s *Impl) Run(ctx context.Context, session models.UpdateSession) (*models.UpdateResult, error) {
	start := time.Now()
	result := &models.UpdateResult{}

	var err error
	switch session.DistributionID {
	case "debian", "ubuntu", "linuxmint":
		err = s.runApt(ctx, session, result)
	case "fedora":
		err = s.runDnf(ctx, session, result)
	case "centos", "rhel":
		err = s.runYum(ctx, session, result)
	default:
		s.logger.Error().Str("distribution", session.DistributionID).Msg("unsupported distribution")
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDistribution, session.DistributionID)
	}

	result.Duration = time.Since(start)
	if err != nil {
		return result, err
	}

	s.logger.Info().
		Str("distribution", session.DistributionID).
		Int("steps", result.StepsRun).
		Dur("duration", result.Duration).
		Msg("system updated successfully")

	return result, nil
}

func (s *Impl) runApt(ctx context.Context, session models.UpdateSession, result *models.UpdateResult) error {
	if err := s.step(ctx, session, result, "apt", "update"); err != nil {
		return err
	}

	upgrade := "upgrade"
	if session.FullUpgrade {
		upgrade = "full-upgrade"
	}
	if err := s.step(ctx, session, result, "apt", upgrade, "-y"); err != nil {
		return err
	}

	if !session.Clean {
		return nil
	}

	if err := s.step(ctx, session, result, "apt", "autoremove", "-y"); err != nil {
		return err
	}
	if err := s.step(ctx, session, result, "apt", "clean"); err != nil {
		return err
	}
	return s.purgeAptLists(result)
}

func (s *Impl) runDnf(ctx context.Context, session models.UpdateSession, result *models.UpdateResult) error {
	if err := s.step(ctx, session, result, "dnf", "upgrade", "-y"); err != nil {
		return err
	}

	if !session.Clean {
		return nil
	}

	if err := s.step(ctx, session, result, "dnf", "autoremove", "-y"); err != nil {
		return err
	}
	return s.step(ctx, session, result, "dnf", "clean", "all")
}

func (s *Impl) runYum(ctx context.Context, session models.UpdateSession, result *models.UpdateResult) error {
	if err := s.step(ctx, session, result, "yum", "update", "-y"); err != nil {
		return err
	}

	if !session.Clean {
		return nil
	}

	return s.step(ctx, session, result, "yum", "clean", "all")
}

// step runs one package-manager command, capturing merged output. A
// non-zero exit logs the captured output verbatim and fails the step.
func (s *Impl) step(ctx context.Context, session models.UpdateSession, result *models.UpdateResult, name string, args ...string) error {
	cmdline := name + " " + strings.Join(args, " ")
	s.logger.Info().Str("command", cmdline).Msg("running")

	if session.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, session.Timeout)
		defer cancel()
	}

	output, err := s.executor.Execute(ctx, name, args...)
	cmdResult := models.CommandResult{Success: err == nil, Output: string(output)}
	result.StepsRun++

	if !cmdResult.Success {
		s.logger.Error().
			Str("command", cmdline).
			Str("output", cmdResult.Output).
			Msg("command failed")
		return fmt.Errorf("%s: %w", cmdline, err)
	}

	s.logger.Debug().Str("command", cmdline).Msg("command completed")
	return nil
}

// purgeAptLists removes the contents of the apt package-list cache
// directory, the equivalent of the classic rm -rf /var/lib/apt/lists/*.
// A missing directory counts as already purged.
func (s *Impl) purgeAptLists(result *models.UpdateResult) error {
	entries, err := os.ReadDir(s.aptListsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("purging apt lists: %w", err)
	}

	result.StepsRun++
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(s.aptListsDir, entry.Name())); err != nil {
			s.logger.Error().Err(err).Str("entry", entry.Name()).Msg("failed to purge apt list entry")
			return fmt.Errorf("purging apt lists: %w", err)
		}
	}

	s.logger.Info().Str("dir", s.aptListsDir).Msg("apt package lists purged")
	return nil
}
