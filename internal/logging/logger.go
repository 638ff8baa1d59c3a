// Package logging configures the process-wide slog logger and the handlers
// that persist error records to the database.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs a JSON logger on stdout as the slog default. Debug records
// are kept outside production. Extra handlers, such as a DBHandler, receive
// every record they are enabled for.
func Setup(appEnv string, extra ...slog.Handler) *slog.Logger {
	return setup(os.Stdout, appEnv, extra...)
}

func setup(w io.Writer, appEnv string, extra ...slog.Handler) *slog.Logger {
	level := slog.LevelInfo
	if appEnv == "development" {
		level = slog.LevelDebug
	}

	var handler slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	if len(extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{handler}, extra...)...)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
