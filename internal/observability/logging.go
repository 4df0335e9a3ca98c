package observability

import (
	"io"
	"log/slog"
)

// NewLogger builds the process logger. Verbose lowers the level to debug,
// quiet raises it to error; quiet wins when both are set. Output goes to the
// given writer (stderr in the CLI, so stdout stays parseable).
func NewLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo

	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
