// Package logger builds the zap logger shared by the meshbake commands:
// colored console output on stderr, plus an optional rotating log file.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Faultbox/meshbake/internal/config"
)

// Log is the process-wide logger. It discards everything until
// InitFromConfig succeeds.
var Log = zap.NewNop()

// Rotation holds the lumberjack settings for the log file.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotation keeps three compressed 50 MB files for a week.
func DefaultRotation() Rotation {
	return Rotation{
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Options selects the level and the sinks of a logger.
type Options struct {
	Level    string
	File     string
	Rotation Rotation
	// Console receives colored, human-oriented output. Nil disables it.
	Console io.Writer
}

// New builds a logger from opts. With no sinks it returns a no-op logger.
func New(opts Options) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	var cores []zapcore.Core
	if opts.Console != nil {
		enc := zapcore.NewConsoleEncoder(encoderConfig(
			zapcore.TimeEncoderOfLayout("15:04:05"),
			zapcore.CapitalColorLevelEncoder,
		))
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(opts.Console), lvl))
	}
	if opts.File != "" {
		w := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.Rotation.MaxSizeMB,
			MaxBackups: opts.Rotation.MaxBackups,
			MaxAge:     opts.Rotation.MaxAgeDays,
			Compress:   opts.Rotation.Compress,
			LocalTime:  true,
		}
		enc := zapcore.NewConsoleEncoder(encoderConfig(
			zapcore.ISO8601TimeEncoder,
			zapcore.CapitalLevelEncoder,
		))
		cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(w), lvl))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func encoderConfig(timeEnc zapcore.TimeEncoder, levelEnc zapcore.LevelEncoder) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		CallerKey:        "caller",
		EncodeTime:       timeEnc,
		EncodeLevel:      levelEnc,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// InitFromConfig replaces Log with a logger writing to stderr and, when
// cfg.LogFile is set, to a rotating file.
func InitFromConfig(cfg config.LoggingConfig) error {
	l, err := New(Options{
		Level:    cfg.Level,
		File:     cfg.LogFile,
		Rotation: DefaultRotation(),
		Console:  os.Stderr,
	})
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Named returns a child of Log for one component.
func Named(name string) *zap.Logger {
	return Log.Named(name)
}

// Sync flushes buffered entries.
func Sync() {
	_ = Log.Sync()
}
