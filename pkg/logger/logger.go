package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "15:04:05 02-01-2006"

var logLvlMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// Options selects the level and encoding of the global zap logger.
// Service is attached to every entry.
type Options struct {
	Service string
	Level   string
	Format  string
}

func build(opts Options) (*zap.Logger, error) {
	lvl, ok := logLvlMap[opts.Level]
	if !ok {
		return nil, fmt.Errorf("unsupported log lvl: %s", opts.Level)
	}

	encodeConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
	}

	switch opts.Format {
	case "", "console":
		opts.Format = "console"
	case "json":
		encodeConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encodeConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	default:
		return nil, fmt.Errorf("unsupported log format: %s", opts.Format)
	}

	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Encoding:         opts.Format,
		EncoderConfig:    encodeConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	var fields []zap.Option
	if opts.Service != "" {
		fields = append(fields, zap.Fields(zap.String("service", opts.Service)))
	}
	return c.Build(fields...)
}

func InitLogger(opts Options) error {
	logger, err := build(opts)
	if err != nil {
		return fmt.Errorf("unable to create zap logger, error: %w", err)
	}

	zap.ReplaceGlobals(logger)
	return nil
}
