package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// Init builds the process logger. Production uses the JSON encoder at info
// level, everything else the console encoder at debug level.
func Init(env string) error {
	var (
		l   *zap.Logger
		err error
	)

	if env == "production" {
		l, err = zap.NewProduction(zap.AddCallerSkip(1))
	} else {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l, err = cfg.Build(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	Set(l)
	return nil
}

// Set replaces the process logger; tests use it with zaptest or zap.NewNop.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
}

func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func Sync() {
	_ = L().Sync()
}

func Debug(msg string, args ...any) {
	L().Debug(msg, fields(args)...)
}

func Info(msg string, args ...any) {
	L().Info(msg, fields(args)...)
}

func Warn(msg string, args ...any) {
	L().Warn(msg, fields(args)...)
}

func Error(msg string, args ...any) {
	L().Error(msg, fields(args)...)
}

func Fatal(msg string, args ...any) {
	L().Fatal(msg, fields(args)...)
}

// fields accepts a mix of bare errors and key/value pairs:
// logger.Error("failed to create order", err, "user_id", id).
func fields(args []any) []zap.Field {
	out := make([]zap.Field, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch v := args[i].(type) {
		case nil:
		case error:
			out = append(out, zap.Error(v))
		case zap.Field:
			out = append(out, v)
		case string:
			if i+1 < len(args) {
				out = append(out, zap.Any(v, args[i+1]))
				i++
				continue
			}
			out = append(out, zap.String("detail", v))
		default:
			out = append(out, zap.Any(fmt.Sprintf("arg%d", i), v))
		}
	}
	return out
}
