package base

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel converts a level name like "DEBUG" or "warning" to a slog.Level.
// Unknown names yield info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "critical", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogging installs the default slog logger for the process.
// The returned closer releases the log file, if one was opened.
func SetupLogging(cfg LogConfig) (*slog.Logger, io.Closer) {
	writer, closer := buildLogWriter(cfg)
	level := ParseLevel(cfg.Level)
	logger := slog.New(buildLogHandler(writer, level, cfg.Format))
	slog.SetDefault(logger)
	if level <= slog.LevelDebug {
		logger.Warn("debug logging is enabled, queries and request headers will be written to the log")
	}
	return logger, closer
}

// buildLogWriter writes to stdout, and additionally to a rotating file when a path is set.
func buildLogWriter(cfg LogConfig) (io.Writer, io.Closer) {
	if cfg.FilePath == "" {
		return os.Stdout, nil
	}
	maxSize := cfg.FileMaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	maxFiles := cfg.FileMaxFiles
	if maxFiles <= 0 {
		maxFiles = 5
	}
	maxAge := cfg.FileMaxAgeDays
	if maxAge <= 0 {
		maxAge = 30
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    maxSize,
		MaxBackups: maxFiles,
		MaxAge:     maxAge,
	}
	return io.MultiWriter(os.Stdout, lj), lj
}

func buildLogHandler(w io.Writer, level slog.Leveler, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
