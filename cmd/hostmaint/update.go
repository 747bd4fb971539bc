package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hostmaint/hostmaint/internal/logging"
	"github.com/hostmaint/hostmaint/internal/models"
	"github.com/hostmaint/hostmaint/internal/services/distro"
	"github.com/hostmaint/hostmaint/internal/services/pkgmgr"
	"github.com/spf13/cobra"
)

var (
	fullUpgrade    bool
	cleanAfter     bool
	commandTimeout time.Duration
	updateLogFile  string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the host's packages via its native package manager",
	Long: `Detect the host's distribution from /etc/os-release and run the
matching update sequence:
  - debian, ubuntu, linuxmint: apt update + apt upgrade (or full-upgrade)
  - fedora:                    dnf upgrade
  - centos, rhel:              yum update

--clean additionally removes unused packages and package caches.
Any other distribution fails without running a single command.`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&fullUpgrade, "full", false, "use full-upgrade semantics where supported")
	updateCmd.Flags().BoolVar(&cleanAfter, "clean", false, "clean package caches after upgrading")
	updateCmd.Flags().DurationVar(&commandTimeout, "timeout", 0, "per-command timeout (0 = no timeout)")
	updateCmd.Flags().StringVar(&updateLogFile, "log-file", "/var/log/hostmaint-update.log", "update log file")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	logger, closer, err := logging.New(logging.Options{
		Dir:         filepath.Dir(updateLogFile),
		Filename:    filepath.Base(updateLogFile),
		Level:       flagLevel("info"),
		JSONConsole: jsonOutput,
	})
	if err != nil {
		// Typically a permissions problem when not running as root.
		// The run itself would fail the same way, but keep going so the
		// operator sees the package manager's own error on the console.
		logger = bootstrapLogger()
		logger.Warn().Err(err).Str("file", updateLogFile).Msg("log file not writable, console only")
	} else {
		defer closer.Close()
	}

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

	session := models.UpdateSession{
		DistributionID: distro.New(logger).Detect(),
		FullUpgrade:    fullUpgrade,
		Clean:          cleanAfter,
		Timeout:        commandTimeout,
	}

	logger.Info().
		Str("distribution", session.DistributionID).
		Bool("full_upgrade", session.FullUpgrade).
		Bool("clean", session.Clean).
		Msg("starting update run")

	pkgSvc := pkgmgr.New(logger)
	if _, err := pkgSvc.Run(ctx, session); err != nil {
		logger.Error().Err(err).Msg("update failed")
		return err
	}

	return nil
}
