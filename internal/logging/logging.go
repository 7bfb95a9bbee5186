// Package logging builds the file-backed logger for kitbag.
//
// The terminal belongs to the TUI, so all structured logging goes to a log
// file instead of stdout. The logger records client retries, request
// outcomes, and artifact lifecycle events; debug mode lowers the level and
// adds caller information.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Logger aliases zerolog.Logger so callers outside this package can depend
// on the logging contract without importing the third-party module
// directly.
type Logger = zerolog.Logger

// New opens (or creates) the log file and returns a logger writing to it,
// plus a close function for shutdown. An empty path disables logging
// entirely.
func New(path string, debug bool) (Logger, func(), error) {
	if path == "" {
		return zerolog.Nop(), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(file).
		Level(level).
		With().
		Timestamp().
		Logger()
	if debug {
		logger = logger.With().Caller().Logger()
	}

	return logger, func() { _ = file.Close() }, nil
}
