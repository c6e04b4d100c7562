// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Format constants
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options defines logger initialization parameters.
type Options struct {
	Level  string
	Format string    // json or console
	Output io.Writer // defaults to os.Stderr

	// Optional rotating log file, written in JSON regardless of Format.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	global  = zerolog.Nop()
	rotator *lumberjack.Logger
)

// Init sets up the global logger.
func Init(opts Options) error {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	writers := []io.Writer{out}
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
			return fmt.Errorf("create logs dir: %w", err)
		}
		rotator = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
		writers = append(writers, rotator)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		lvl = zerolog.InfoLevel
	}

	global = zerolog.New(io.MultiWriter(writers...)).Level(lvl).With().Timestamp().Logger()
	log.Logger = global
	return nil
}

// Close flushes and closes the rotating log file, if any.
func Close() {
	if rotator != nil {
		_ = rotator.Close()
		rotator = nil
	}
}

// Get returns the global logger.
func Get() zerolog.Logger { return global }
