// Package distro classifies the host OS from its release metadata.
package distro

import (
	"bufio"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Unknown is returned when the distribution cannot be determined.
const Unknown = "unknown"

const defaultReleaseFile = "/etc/os-release"

// Service defines the interface for distribution detection.
type Service interface {
	Detect() string
}

// Impl implements the Service interface.
type Impl struct {
	releaseFile string
	logger      zerolog.Logger
}

// New creates a new distro service reading /etc/os-release.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		releaseFile: defaultReleaseFile,
		logger:      logger,
	}
}

// NewWithReleaseFile creates a new distro service reading an alternate
// release file (for testing).
func NewWithReleaseFile(logger zerolog.Logger, path string) *Impl {
	return &Impl{
		releaseFile: path,
		logger:      logger,
	}
}

// Detect returns the lowercased, unquoted ID value from the release file,
// or Unknown when the file or the field is absent. Detection never fails;
// unreadable metadata degrades to Unknown.
func (s *Impl) Detect() string {
	file, err := os.Open(s.releaseFile)
	if err != nil {
		s.logger.Debug().Err(err).Str("file", s.releaseFile).Msg("release file not readable")
		return Unknown
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "ID=") {
			continue
		}

		id := strings.TrimPrefix(line, "ID=")
		id = strings.Trim(id, `"'`)
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			break
		}

		s.logger.Debug().Str("distribution", id).Msg("distribution detected")
		return id
	}

	if err := scanner.Err(); err != nil {
		s.logger.Debug().Err(err).Str("file", s.releaseFile).Msg("error scanning release file")
	}

	return Unknown
}
