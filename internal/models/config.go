// Package models contains the data structures used throughout hostmaint.
package models

// BackupConfig holds the complete configuration for a backup run.
// It is constructed once at startup and treated as read-only afterwards.
type BackupConfig struct {
	// BackupRoot is the base directory under which the backup_files and
	// logs subdirectories are maintained.
	BackupRoot string

	// MinFreeSpaceGB is the minimum free space, in GiB, that must be
	// available on the backup root's volume before an archive is created.
	MinFreeSpaceGB float64

	// MaxBackups is the number of archive files retained under
	// backup_files; older archives beyond this count are deleted.
	MaxBackups int

	// SourceDir is the directory to archive. Optional in the config file;
	// the -s/--source CLI flag overrides it.
	SourceDir string

	// LogLevel is the minimum level written to the log file and console.
	LogLevel string

	// MaxLogs is the number of .log files retained under logs.
	MaxLogs int
}

// BackupDirName is the subdirectory of the backup root that holds archives.
const BackupDirName = "backup_files"

// LogDirName is the subdirectory of the backup root that holds log files.
const LogDirName = "logs"

// LogFileName is the name of the backup run log inside LogDirName.
const LogFileName = "backup.log"
