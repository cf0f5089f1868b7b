package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

func Setup(logLevelStr, format string) {
	slog.SetDefault(New(os.Stdout, logLevelStr, format))
}

// New builds a logger writing to w. Unknown levels fall back to INFO,
// unknown formats fall back to text.
func New(w io.Writer, logLevelStr, format string) *slog.Logger {
	// Parse the log level
	logLevel, err := parseLogLevel(logLevelStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
	}

	lvl := new(slog.LevelVar)
	lvl.Set(logLevel)

	opts := &slog.HandlerOptions{
		Level: lvl,
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// parseLogLevel converts a string log level to slog.Level
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}
