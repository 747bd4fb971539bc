package runner

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/hostmaint/hostmaint/internal/models"
	"github.com/hostmaint/hostmaint/internal/services/archive"
	"github.com/hostmaint/hostmaint/internal/services/diskspace"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDisk is a mock implementation of diskspace.Service.
type mockDisk struct {
	ok    bool
	err   error
	calls int
}

func (m *mockDisk) Check(path string, minFreeGB float64) (bool, error) {
	m.calls++
	return m.ok, m.err
}

// mockArchive is a mock implementation of archive.Service.
type mockArchive struct {
	result *models.ArchiveResult
	err    error
	calls  int
}

func (m *mockArchive) Create(ctx context.Context, sourceDir, destDir string) (*models.ArchiveResult, error) {
	m.calls++
	return m.result, m.err
}

// mockRetention is a mock implementation of retention.Service.
type mockRetention struct {
	err   error
	dirs  []string
	calls int
}

func (m *mockRetention) Prune(dir, suffix string, keep int) (*models.PruneResult, error) {
	m.calls++
	m.dirs = append(m.dirs, dir)
	if m.err != nil {
		return nil, m.err
	}
	return &models.PruneResult{}, nil
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testConfig() models.BackupConfig {
	return models.BackupConfig{
		BackupRoot:     "/backups",
		MinFreeSpaceGB: 5,
		MaxBackups:     10,
		SourceDir:      "/data",
		LogLevel:       "INFO",
		MaxLogs:        5,
	}
}

func TestRun_Success(t *testing.T) {
	disk := &mockDisk{ok: true}
	arch := &mockArchive{result: &models.ArchiveResult{Path: "/backups/backup_files/backup_data_20250314_150926.tar.gz"}}
	ret := &mockRetention{}

	svc := NewWithServices(testLogger(), disk, arch, ret)
	err := svc.Run(context.Background(), testConfig())

	require.NoError(t, err)
	assert.Equal(t, 1, disk.calls)
	assert.Equal(t, 1, arch.calls)
	// Archives and logs are both pruned.
	assert.Equal(t, 2, ret.calls)
	assert.Equal(t, []string{
		filepath.Join("/backups", models.BackupDirName),
		filepath.Join("/backups", models.LogDirName),
	}, ret.dirs)
}

func TestRun_InsufficientSpaceAbortsBeforeArchive(t *testing.T) {
	disk := &mockDisk{ok: false}
	arch := &mockArchive{}
	ret := &mockRetention{}

	svc := NewWithServices(testLogger(), disk, arch, ret)
	err := svc.Run(context.Background(), testConfig())

	require.ErrorIs(t, err, diskspace.ErrInsufficientSpace)
	assert.Zero(t, arch.calls, "no archive may be created")
	assert.Zero(t, ret.calls, "no pruning after an aborted run")
}

func TestRun_DiskCheckError(t *testing.T) {
	disk := &mockDisk{err: errors.New("statfs failed")}
	arch := &mockArchive{}

	svc := NewWithServices(testLogger(), disk, arch, &mockRetention{})
	err := svc.Run(context.Background(), testConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk space check")
	assert.Zero(t, arch.calls)
}

func TestRun_SourceNotFound(t *testing.T) {
	disk := &mockDisk{ok: true}
	arch := &mockArchive{err: archive.ErrSourceNotFound}
	ret := &mockRetention{}

	svc := NewWithServices(testLogger(), disk, arch, ret)
	err := svc.Run(context.Background(), testConfig())

	require.ErrorIs(t, err, archive.ErrSourceNotFound)
	assert.Zero(t, ret.calls, "no pruning after a failed archive")
}

func TestRun_PruneFailureIsNonFatal(t *testing.T) {
	disk := &mockDisk{ok: true}
	arch := &mockArchive{result: &models.ArchiveResult{Path: "/tmp/a.tar.gz"}}
	ret := &mockRetention{err: errors.New("permission denied")}

	svc := NewWithServices(testLogger(), disk, arch, ret)
	err := svc.Run(context.Background(), testConfig())

	require.NoError(t, err)
	// Both prunes are attempted even when the first fails.
	assert.Equal(t, 2, ret.calls)
}
