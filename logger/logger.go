// Package logger configures the process-wide zap logger.
//
// Development gets a human-readable console encoder at debug level; setting
// APP_ENV=production switches to JSON at info level for log aggregation.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a sugared logger tagged with the component name.
func New(component string) *zap.SugaredLogger {
	production := os.Getenv("APP_ENV") == "production"

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	level := zap.DebugLevel
	if production {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
		level = zap.InfoLevel
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level)
	return zap.New(core).Sugar().With("component", component)
}

// Nop returns a logger that discards everything. For tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
