// Package logging configures the application's structured loggers.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

const LevelFatal = slog.Level(12)

// defaultLevelVar drives the level of the default logger and of any file
// logger created with DefaultLevel(). SetLevel adjusts it once command line
// flags have been parsed.
var defaultLevelVar = new(slog.LevelVar)

// Add the fatal level name.
var levelNames = map[slog.Leveler]string{
	LevelFatal: "FATAL",
}

// replaceLevelNames customizes level labels for the extra levels.
func replaceLevelNames(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		levelLabel, exists := levelNames[level]
		if !exists {
			levelLabel = level.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

// Init installs the default human-readable logger writing to stderr. File
// loggers created through NewFileLogger carry the structured JSON output.
func Init() {
	defaultLevelVar.Set(slog.LevelInfo)

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:       defaultLevelVar,
		ReplaceAttr: replaceLevelNames,
	})
	slog.SetDefault(slog.New(handler))
}

// SetLevel sets the minimum logging level of the default logger and of every
// file logger sharing DefaultLevel.
func SetLevel(level slog.Level) {
	defaultLevelVar.Set(level)
}

// DefaultLevel returns the level var behind the default logger, for callers
// that want their file loggers to follow it.
func DefaultLevel() *slog.LevelVar {
	return defaultLevelVar
}

// --- Convenience functions using the default logger ---

// Debug logs a debug message using the default slog logger.
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// Info logs an info message using the default slog logger.
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn logs a warning message using the default slog logger.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Error logs an error message using the default slog logger.
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

// Fatal logs a fatal message using the custom Fatal level and then exits.
func Fatal(msg string, args ...any) {
	slog.Log(context.TODO(), LevelFatal, msg, args...)
	os.Exit(1)
}

// NewFileLogger creates a new slog.Logger instance configured to write JSON logs
// to the specified file path using lumberjack for rotation. All records carry a
// 'service' attribute. It returns the logger, a function to close the underlying
// log writer, and an error if setup fails.
func NewFileLogger(filePath, serviceName string, level slog.Leveler) (*slog.Logger, func() error, error) {
	// lumberjack doesn't create directories
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	logWriter := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   false,
	}

	fileHandler := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelNames,
	})

	logger := slog.New(fileHandler).With("service", serviceName)

	closeFunc := func() error {
		return logWriter.Close()
	}

	return logger, closeFunc, nil
}
