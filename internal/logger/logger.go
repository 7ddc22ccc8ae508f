// Package logger configures the global zerolog logger.
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

// Config holds logger configuration.
type Config struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format     string `yaml:"format" validate:"omitempty,oneof=json pretty"`
	Dir        string `yaml:"dir"` // empty disables file output
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
}

var DefaultConfig = Config{
	Level:      "info",
	Format:     "pretty",
	MaxSizeMB:  50,
	MaxAgeDays: 14,
	MaxBackups: 5,
}

// Init installs the global logger. Console output goes to stderr so command
// output on stdout stays clean.
func Init(cfg Config) error {
	if cfg.Level == "" {
		cfg.Level = DefaultConfig.Level
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	writers, err := build(cfg, os.Stderr)
	if err != nil {
		return err
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()

	log.Debug().
		Str("level", cfg.Level).
		Str("format", cfg.Format).
		Str("dir", cfg.Dir).
		Msg("logger initialized")
	return nil
}

func build(cfg Config, console io.Writer) ([]io.Writer, error) {
	var writers []io.Writer
	if cfg.Format == "json" {
		writers = append(writers, console)
	} else {
		writers = append(writers, zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"})
	}
	if cfg.Dir == "" {
		return writers, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	writers = append(writers, rotating(cfg, "app.log"))
	writers = append(writers, errorOnly{zerolog.LevelWriterAdapter{Writer: rotating(cfg, "error.log")}})
	return writers, nil
}

func rotating(cfg Config, name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, name),
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
}

// errorOnly drops events below error level.
type errorOnly struct {
	zerolog.LevelWriterAdapter
}

func (w errorOnly) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < zerolog.ErrorLevel {
		return len(p), nil
	}
	return w.LevelWriterAdapter.WriteLevel(l, p)
}
