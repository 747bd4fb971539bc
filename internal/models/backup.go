package models

import "time"

// ArchiveResult holds the result of an archive operation.
type ArchiveResult struct {
	Path      string
	SizeBytes int64
	Duration  time.Duration
}

// PruneResult holds the result of a retention prune over one directory.
type PruneResult struct {
	Deleted []string // base names of the files removed, oldest first
	Kept    int
}
