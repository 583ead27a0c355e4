// Package logging builds the zap logger used by the CLI and the API server.
package logging

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ssargent/mcapidx/pkg/config"
)

func iso8601MicroTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02T15:04:05.000000Z0700"))
}

// DefaultEncoderConfig is the encoder configuration shared by both formats
var DefaultEncoderConfig = func() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = iso8601MicroTimeEncoder
	return ec
}()

// New creates a top-level logger writing to stderr.
func New(cfg config.Logging) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var encoding string
	development := true
	encoderConfig := DefaultEncoderConfig
	switch cfg.Format {
	case "json":
		encoding = "json"
		development = false
	case "text", "":
		encoding = "console"
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, fmt.Errorf("unexpected log format: %s", cfg.Format)
	}

	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      development,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Named("mcapidx"), nil
}
