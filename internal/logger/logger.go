package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It is a no-op logger until Initialize runs,
// which keeps packages usable from tests without any setup.
var Log = zap.NewNop()

// Initialize builds the logger for the given environment: JSON output in
// production, human readable colored output everywhere else.
func Initialize(env string) *zap.Logger {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := config.Build()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	Log = l
	return l
}

// Sync flushes buffered log entries. Errors from syncing stdout/stderr are
// ignored because most platforms report them spuriously.
func Sync() {
	_ = Log.Sync()
}
