package telemetry

import (
	"io"
	"log/slog"
	"os"
)

// InitSlog replaces the default slog logger with a text logger on stderr,
// debug records are only emitted when verbose is set.
func InitSlog(verbose bool) {
	slog.SetDefault(NewLogger(os.Stderr, verbose))
}

func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}
