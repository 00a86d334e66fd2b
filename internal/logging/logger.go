// Package logging configures the zerolog logger shared by chatwidget.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultLevel is used when no level is configured
const DefaultLevel = zerolog.WarnLevel

// ParseLevel maps a configured level name to a zerolog level.
// An empty name selects DefaultLevel.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return DefaultLevel, nil
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return DefaultLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return lvl, nil
}

// Setup builds the process logger and installs it as log.Logger.
//
// With file set, JSON lines are appended to that file; the TUI owns the
// terminal so this is the only sink it can use. Otherwise records go to
// console through a ConsoleWriter, or nowhere when console is nil.
// The returned closer releases the log file.
func Setup(level, file string, console io.Writer) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }

	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), noop, err
	}

	var (
		out    io.Writer = io.Discard
		closer           = noop
	)

	switch {
	case file != "":
		if dir := filepath.Dir(file); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return zerolog.Nop(), noop, fmt.Errorf("failed to create log directory: %w", err)
			}
		}
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return zerolog.Nop(), noop, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closer = f.Close
	case console != nil:
		out = zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05", NoColor: !isTerminal(console)}
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()

	// Also replace global log, so log.Info().Msg() works everywhere
	log.Logger = logger

	return logger, closer, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
