// internal/utils/logger.go

// Package utils provides shared helpers used across MediaScrapexter,
// including structured logging backed by zerolog and URL manipulation
// routines shared by the scraper and output layers.
package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide structured logger. It writes to the console
// until InitLogger installs the configured sinks.
var Logger = zerolog.New(consoleWriter()).With().Timestamp().Logger()

// LogConfig controls logger initialization: the minimum level, the log
// directory, and the rotation policy applied to the file sink.
type LogConfig struct {
	// Level is the minimum severity that is emitted (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`

	// Directory is where rotated log files are written; empty disables the file sink
	Directory string `yaml:"directory,omitempty" json:"directory,omitempty"`

	// MaxSizeMB is the size in megabytes at which the current file is rotated
	MaxSizeMB int `yaml:"max_size_mb,omitempty" json:"max_size_mb,omitempty"`

	// MaxBackups is the number of rotated files to retain
	MaxBackups int `yaml:"max_backups,omitempty" json:"max_backups,omitempty"`

	// MaxAgeDays is the number of days to retain rotated files
	MaxAgeDays int `yaml:"max_age_days,omitempty" json:"max_age_days,omitempty"`

	// Compress enables gzip compression of rotated files
	Compress bool `yaml:"compress,omitempty" json:"compress,omitempty"`
}

// InitLogger configures the global Logger from cfg. When a directory is
// configured, log entries are duplicated to a size-rotated file alongside
// the console output.
func InitLogger(cfg LogConfig) error {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	writers := []io.Writer{consoleWriter()}
	if cfg.Directory != "" {
		if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
			return err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Directory, "mediascrapexter.log"),
			MaxSize:    orDefault(cfg.MaxSizeMB, 50),
			MaxBackups: orDefault(cfg.MaxBackups, 5),
			MaxAge:     orDefault(cfg.MaxAgeDays, 14),
			Compress:   cfg.Compress,
		})
	}

	Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return nil
}

func consoleWriter() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...interface{}) {
	Logger.Debug().Msgf(format, args...)
}

// Infof logs a formatted message at info level.
func Infof(format string, args ...interface{}) {
	Logger.Info().Msgf(format, args...)
}

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...interface{}) {
	Logger.Warn().Msgf(format, args...)
}

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...interface{}) {
	Logger.Error().Msgf(format, args...)
}
