package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level         string `json:"level" toml:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	Format        string `json:"format" toml:"format" validate:"omitempty,oneof=json pretty"`
	FileEnabled   bool   `json:"file_enabled" toml:"file_enabled"`
	FilePath      string `json:"file_path" toml:"file_path"`
	RotationSize  int    `json:"rotation_size_mb" toml:"rotation_size_mb"`
	RetentionDays int    `json:"retention_days" toml:"retention_days"`
	ServiceName   string `json:"-" toml:"-"`
}

// New builds a logger writing to stderr and, when enabled, to rotated files
// under FilePath. error.log only receives error level and above.
func New(cfg Config) (zerolog.Logger, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg Config, console io.Writer) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if cfg.Level != "" {
		l, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level: %w", err)
		}
		lvl = l
	}

	var writers []io.Writer
	if cfg.Format == "pretty" {
		writers = append(writers, zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"})
	} else {
		writers = append(writers, console)
	}

	if cfg.FileEnabled {
		if err := os.MkdirAll(cfg.FilePath, 0o755); err != nil {
			return zerolog.Nop(), fmt.Errorf("failed to create log directory: %w", err)
		}
		writers = append(writers,
			rotated(cfg, "app.log"),
			&levelFilter{w: rotated(cfg, "error.log"), min: zerolog.ErrorLevel},
		)
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Logger(), nil
}

// Init builds the logger with New and installs it as the global logger.
func Init(cfg Config) (zerolog.Logger, error) {
	zerolog.TimeFieldFormat = time.RFC3339
	l, err := New(cfg)
	if err != nil {
		return l, err
	}
	log.Logger = l
	l.Info().
		Str("level", cfg.Level).
		Str("format", cfg.Format).
		Bool("file_enabled", cfg.FileEnabled).
		Msg("Logger initialized")
	return l, nil
}

// NewAccessLogger creates a logger for HTTP access logs. An empty path falls
// back to the global logger.
func NewAccessLogger(cfg Config) zerolog.Logger {
	if !cfg.FileEnabled || cfg.FilePath == "" {
		return log.Logger.With().Str("type", "access").Logger()
	}
	if err := os.MkdirAll(cfg.FilePath, 0o755); err != nil {
		log.Warn().Err(err).Msg("Failed to create access log directory, using default logger")
		return log.Logger
	}
	return zerolog.New(rotated(cfg, "access.log")).With().
		Timestamp().
		Str("type", "access").
		Logger()
}

func rotated(cfg Config, name string) *lumberjack.Logger {
	size := cfg.RotationSize
	if size <= 0 {
		size = 100
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.FilePath, name),
		MaxSize:    size,
		MaxAge:     cfg.RetentionDays,
		MaxBackups: 10,
		Compress:   true,
	}
}

type levelFilter struct {
	w   io.Writer
	min zerolog.Level
}

func (f *levelFilter) Write(p []byte) (int, error) { return f.w.Write(p) }

func (f *levelFilter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < f.min {
		return len(p), nil
	}
	return f.w.Write(p)
}
