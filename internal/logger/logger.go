// Package logger sets up the daemon's global structured logger: one
// slog.TextHandler writing to stdout and, optionally, a log file, shared
// across every monitor's capture loop, the archive dispatcher, and the
// HTTP surface.
package logger

import (
	"io"
	"log/slog"
	"os"
)

var Log *slog.Logger

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// Init builds the global logger at the given level, tees output to
// logFile in addition to stdout when logFile is non-empty, and installs
// it as slog's default so library code that logs via the package-level
// slog functions lands in the same stream.
func Init(level string, logFile string) error {
	writers := []io.Writer{os.Stdout}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: parseLevel(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("time", a.Value.Time().Format("15:04:05"))
			}
			return a
		},
	})

	Log = slog.New(handler)
	slog.SetDefault(Log)

	return nil
}

// Component returns a child logger tagging every record with
// component=name, e.g. one per monitor ID's capture loop or the archive
// dispatcher, so interleaved output from concurrent loops stays
// attributable. Init must run first.
func Component(name string) *slog.Logger {
	return Log.With("component", name)
}

// Debug logs at debug level on the global logger.
func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

// Info logs at info level on the global logger.
func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

// Warn logs at warn level on the global logger.
func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}

// Error logs at error level on the global logger.
func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}
