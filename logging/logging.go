// Package logging configures the application-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logWriter   io.WriteCloser
	logWriterMu sync.Mutex
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string
	// File is an optional log file path; logs then go to both stderr
	// and the rotated file
	File string
	// MaxSizeMB is the rotation threshold. Default: 10
	MaxSizeMB int
	// MaxBackups is the number of rotated files to keep. Default: 3
	MaxBackups int
}

// Init sets up the default slog logger. With a file configured, output
// is duplicated to stderr and a size-rotated log file.
func Init(cfg Config) error {
	level := parseLevel(cfg.Level)

	var w io.Writer = os.Stderr
	if cfg.File != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		maxBackups := cfg.MaxBackups
		if maxBackups <= 0 {
			maxBackups = 3
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		}

		logWriterMu.Lock()
		logWriter = lj
		logWriterMu.Unlock()

		w = io.MultiWriter(os.Stderr, lj)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

// Close releases the log file writer if one was opened.
func Close() error {
	logWriterMu.Lock()
	defer logWriterMu.Unlock()

	if logWriter != nil {
		err := logWriter.Close()
		logWriter = nil
		return err
	}
	return nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
