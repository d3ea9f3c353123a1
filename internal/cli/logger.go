package cli

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// setupLogger configures the default slog logger from SHORTIE_LOG_LEVEL and
// SHORTIE_LOG_FORMAT (text or json, text by default).
func setupLogger() {
	options := &slog.HandlerOptions{
		Level: parseLogLevel(os.Getenv("SHORTIE_LOG_LEVEL")),
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.TimeKey {
				if ts, ok := attr.Value.Any().(time.Time); ok {
					attr.Value = slog.StringValue(ts.UTC().Format(time.RFC3339))
				}
			}
			return attr
		},
	}

	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(os.Getenv("SHORTIE_LOG_FORMAT")), "json") {
		handler = slog.NewJSONHandler(os.Stderr, options)
	} else {
		handler = slog.NewTextHandler(os.Stderr, options)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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
