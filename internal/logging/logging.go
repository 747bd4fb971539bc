// Package logging constructs the logger instances used by hostmaint.
//
// Loggers are built explicitly and passed to each service; there is no
// process-global logger state, so tests can run with isolated loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Options controls how a logger is constructed.
type Options struct {
	// Dir is the directory holding the log file; created if missing.
	Dir string

	// Filename is the log file name inside Dir.
	Filename string

	// Level is the minimum level, parsed case-insensitively
	// ("debug", "info", "warn", "error"). Unknown values fall back to info.
	Level string

	// JSONConsole switches the console mirror to structured JSON output.
	JSONConsole bool

	// ConsoleOut overrides the console destination (default os.Stdout).
	ConsoleOut io.Writer
}

// New builds a logger that writes human-readable lines to a file and
// mirrors every record to the console. The returned closer owns the log
// file and must be closed when the run finishes.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("creating log directory: %w", err)
	}

	path := filepath.Join(opts.Dir, opts.Filename)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
	}

	fileWriter := zerolog.ConsoleWriter{
		Out:        file,
		NoColor:    true,
		TimeFormat: "2006-01-02 15:04:05",
	}
	// Log file lines read "<timestamp> - <LEVEL> - <message>".
	fileWriter.FormatLevel = func(i interface{}) string {
		if s, ok := i.(string); ok {
			return "- " + strings.ToUpper(s) + " -"
		}
		return "- ??? -"
	}

	multi := zerolog.MultiLevelWriter(consoleWriter(opts), fileWriter)
	logger := zerolog.New(multi).With().Timestamp().Logger().Level(ParseLevel(opts.Level))

	return logger, file, nil
}

// NewConsole builds a console-only logger, used before a config-validated
// file logger exists and by the update workflow when the log file cannot
// be opened.
func NewConsole(opts Options) zerolog.Logger {
	return zerolog.New(consoleWriter(opts)).With().Timestamp().Logger().Level(ParseLevel(opts.Level))
}

func consoleWriter(opts Options) io.Writer {
	out := opts.ConsoleOut
	if out == nil {
		out = os.Stdout
	}

	if opts.JSONConsole {
		return out
	}

	cw := zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	cw.FormatLevel = func(i interface{}) string {
		if s, ok := i.(string); ok {
			return strings.ToUpper(s)
		}
		return ""
	}
	return cw
}

// ParseLevel maps a configured level string to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
