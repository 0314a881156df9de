package logging

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger: JSON at info level in prod, text at
// debug level everywhere else.
func NewLogger(env string) *slog.Logger {
	var handler slog.Handler

	if env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return slog.New(handler)
}
