package logging

import (
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Setup installs a zap-backed slog default logger and returns its flush
// function. Production uses zap's JSON encoder; dev gets the colored console
// encoder.
func Setup(level slog.Level, dev bool) func() error {
	logger := New(level, dev)

	slog.SetDefault(slog.New(zapslog.NewHandler(logger.Core())))

	return logger.Sync
}

// New builds the zap logger used behind slog.
func New(level slog.Level, dev bool) *zap.Logger {
	var cfg zap.Config

	if dev {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	cfg.Level = zap.NewAtomicLevelAt(zapLevel(level))

	return zap.Must(cfg.Build())
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
