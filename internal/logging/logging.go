package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init installs a JSON (default) or text slog handler tagged with the
// service name and makes it the process default.
// Supported formats: "json", "text".
func Init(service, format string) *slog.Logger {
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, nil)
	default:
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}

	logger := slog.New(handler).With("service", service)
	slog.SetDefault(logger)
	return logger
}
