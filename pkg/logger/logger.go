// Package logger implements context-aware logging.
//
// Check output goes to stdout and is parsed by the monitoring system, so all
// log records are written to stderr.
package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type (
	CtxLoggerKey string

	Logger struct {
		*zap.Logger
	}
)

const LoggerKey CtxLoggerKey = "logger"

var fallbackLogger = zap.NewNop().Sugar()

// Logging function (a Zap wrapper) which considers context.
// Usage example: `Log(ctx).Errorw("...")` etc. See the Zap docs.
func Log(ctx context.Context) *zap.SugaredLogger {
	if ctx == nil {
		return fallbackLogger
	}
	zap, ok := ctx.Value(LoggerKey).(*zap.SugaredLogger)
	if !ok || zap == nil {
		return fallbackLogger
	}
	return zap
}

// WithContext stores the logger in ctx so that `Log` can find it.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, LoggerKey, l.Sugar())
}

func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	case "dpanic":
		return zap.DPanicLevel
	case "panic":
		return zap.PanicLevel
	case "fatal":
		return zap.FatalLevel
	default:
		return zap.ErrorLevel
	}
}

func Run(level string) (*Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	zapLogger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	fallbackLogger = zapLogger.With(
		zap.String("logger", "fallbackLogger"),
	).WithOptions(
		zap.AddCallerSkip(1),
	).Sugar()

	return &Logger{zapLogger}, nil
}
