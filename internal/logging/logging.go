// Package logging builds the program's structured logger.
//
// Diagnostics go to a writer separate from the operator's menu output
// (normally stderr), through a charmbracelet/log handler behind log/slog.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New returns a slog.Logger writing to w at the named level, one of debug,
// info, warn or error.
func New(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	handler := log.NewWithOptions(w, log.Options{
		Level:           log.Level(lvl),
		Prefix:          "roster",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	return slog.New(handler), nil
}

// ParseLevel converts a level name to its slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.Level(lvl), nil
}
