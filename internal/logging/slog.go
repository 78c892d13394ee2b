// Package logging configures the process logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Config controls where log records go and at which level.
type Config struct {
	// Level is the console level; the zero value is info.
	Level slog.Level
	// Verbose lowers the console level to debug.
	Verbose bool
	// LogFile, when set, receives every record as JSON at debug level.
	LogFile string
	// Stderr is the console destination; nil means os.Stderr.
	Stderr io.Writer
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New builds a logger fanning out to the console and, optionally, a JSON log
// file. The returned close function releases the log file.
func New(c Config) (*slog.Logger, func() error, error) {
	stderr := c.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	level := c.Level
	if c.Verbose {
		level = slog.LevelDebug
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	}

	closeFn := func() error { return nil }
	if path := strings.TrimSpace(c.LogFile); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		}))
		closeFn = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closeFn, nil
}
