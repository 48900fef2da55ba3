package logi

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	logger *slog.Logger
	once   sync.Once
)

// Config holds the logging configuration
type Config struct {
	// LogDir is the directory where log files will be stored
	// Default: /var/log/telemetry-dashboard (or ./logs if not writable)
	LogDir string
	// LogFileName is the name of the log file
	// Default: app.log
	LogFileName string
	// Level is the minimum log level to write
	// Default: slog.LevelInfo
	Level slog.Level
	// Stdout mirrors every record to standard output
	Stdout bool
}

// NewLog creates or returns the singleton logger instance.
// It's safe for concurrent use across multiple goroutines.
// The logger writes JSON records to a file, optionally mirrored to stdout.
func NewLog(cfg *Config) (*slog.Logger, error) {
	var initErr error

	once.Do(func() {
		if cfg == nil {
			cfg = &Config{}
		}

		if cfg.LogDir == "" {
			cfg.LogDir = "/var/log/telemetry-dashboard"
			if !isDirWritable(cfg.LogDir) {
				cfg.LogDir = "./logs"
			}
		}

		if cfg.LogFileName == "" {
			cfg.LogFileName = "app.log"
		}

		if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create log directory %s: %w", cfg.LogDir, err)
			return
		}

		logPath := filepath.Join(cfg.LogDir, cfg.LogFileName)

		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			initErr = fmt.Errorf("failed to open log file %s: %w", logPath, err)
			return
		}

		var out io.Writer = file
		if cfg.Stdout {
			out = io.MultiWriter(file, os.Stdout)
		}

		level := cfg.Level
		if level == 0 {
			level = slog.LevelInfo
		}

		handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
		logger = slog.New(handler)

		logger.Info("logger initialized",
			"log_path", logPath,
			"level", level.String(),
		)
	})

	if initErr != nil {
		return nil, initErr
	}

	return logger, nil
}

// GetLogger returns the logger built by NewLog, or slog.Default() when
// NewLog has not run yet (tests, library use).
func GetLogger() *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// isDirWritable checks if a directory is writable
func isDirWritable(path string) bool {
	if err := os.MkdirAll(path, 0755); err != nil {
		return false
	}

	testFile := filepath.Join(path, ".write_test")
	file, err := os.OpenFile(testFile, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false
	}
	file.Close()
	os.Remove(testFile)
	return true
}
