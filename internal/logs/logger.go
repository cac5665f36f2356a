package logs

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

const levelFatal = slog.Level(12)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout)
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.LevelKey:
				a.Key = "severity"
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == levelFatal {
					a.Value = slog.StringValue("FATAL")
				}
			case slog.MessageKey:
				a.Key = "message"
			case slog.TimeKey:
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}))
}

// SetOutput redirige les logs (utilisé par les tests).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	case "FATAL":
		return levelFatal
	default:
		return slog.LevelInfo
	}
}

// LogJSON écrit une ligne JSON : severity ("DEBUG", "INFO", "WARN", "ERROR" & "FATAL"), message, time + fields.
func LogJSON(level, message string, fields map[string]interface{}) {
	attrs := make([]slog.Attr, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		attrs = append(attrs, slog.Any(k, v))
	}

	mu.RLock()
	l := logger
	mu.RUnlock()
	l.LogAttrs(context.Background(), parseLevel(level), message, attrs...)
}
