// Package logging builds the process slog handler: a console handler on
// stderr, optionally fanned out to a JSON file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phsym/console-slog"
	"github.com/samber/oops"
	slogmulti "github.com/samber/slog-multi"
)

// ParseLevel maps a config level name to a slog level. Unknown names
// return info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Preinit installs a debug console logger used until config is loaded.
func Preinit() {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: slog.LevelDebug,
	})))
}

// New returns a logger writing to w and, when file is non-empty, to
// file as JSON lines. The returned closer releases the file.
func New(w io.Writer, level, file string) (*slog.Logger, io.Closer, error) {
	lvl := ParseLevel(level)
	handlers := []slog.Handler{newConsole(w, lvl)}

	closer := io.Closer(nopCloser{})
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, oops.Errorf("failed to open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: lvl}))
		closer = f
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0]), closer, nil
	}
	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// Init builds a logger with New and installs it as the slog default.
func Init(level, file string) (io.Closer, error) {
	logger, closer, err := New(os.Stderr, level, file)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return closer, nil
}

func newConsole(w io.Writer, lvl slog.Level) slog.Handler {
	return console.NewHandler(w, &console.HandlerOptions{
		AddSource: lvl == slog.LevelDebug,
		Level:     lvl,
		NoColor:   w != os.Stderr,
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
