package models

import "time"

// UpdateSession holds the parameters of one update run. It is transient
// and never persisted.
type UpdateSession struct {
	// DistributionID is the lowercased ID value from os-release, or
	// "unknown" when detection failed.
	DistributionID string

	// FullUpgrade selects full-upgrade semantics where the package
	// family supports it (apt full-upgrade vs apt upgrade).
	FullUpgrade bool

	// Clean runs the family's cache/package cleanup after upgrading.
	Clean bool

	// Timeout bounds each package-manager invocation. Zero means no
	// deadline, matching the historical behavior.
	Timeout time.Duration
}

// CommandResult holds the outcome of a single external command invocation.
type CommandResult struct {
	Success bool
	Output  string // merged stdout and stderr
}

// UpdateResult holds the result of a complete update run.
type UpdateResult struct {
	StepsRun int
	Duration time.Duration
}
