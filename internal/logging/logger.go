package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the root logger for the given level name (DEBUG, INFO,
// WARNING, ERROR, CRITICAL). Records go to stderr and, in parallel, into the
// returned Buffer so the web API can expose recent logs.
//
// Subsystem loggers are derived with Named, e.g. logger.Named("http").
func NewLogger(level string) (*zap.Logger, *Buffer, error) {
	zapLevel, err := parseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	buffer := NewBuffer()
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		zapLevel,
	)
	core := zapcore.NewTee(consoleCore, newRingCore(zapLevel, buffer))

	logger := zap.New(core).Named("parser")
	return logger, buffer, nil
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "INFO", "":
		return zapcore.InfoLevel, nil
	case "WARNING", "WARN":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	case "CRITICAL", "FATAL":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

func levelName(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.InfoLevel:
		return "INFO"
	case zapcore.WarnLevel:
		return "WARNING"
	case zapcore.ErrorLevel:
		return "ERROR"
	case zapcore.FatalLevel, zapcore.PanicLevel, zapcore.DPanicLevel:
		return "CRITICAL"
	default:
		return strings.ToUpper(level.String())
	}
}
