package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// ServiceName is attached to every entry as the "service" field.
const ServiceName = "signalcraft-be"

// configFor returns the zap config for an app environment. "production" and
// "staging" log JSON at info, "test" keeps only warnings, anything else uses
// the colored console encoder at debug.
func configFor(env string) zap.Config {
	switch env {
	case "production", "staging":
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "json"
		cfg.Sampling = nil
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.LevelKey = "level"
		cfg.EncoderConfig.CallerKey = "caller"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
		cfg.InitialFields = map[string]any{"service": ServiceName, "env": env}
		return cfg
	case "test":
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		return cfg
	default:
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.InitialFields = map[string]any{"service": ServiceName}
		return cfg
	}
}

// Init builds the global logger for env.
func Init(env string) {
	l, err := configFor(env).Build(zap.AddCaller())
	if err != nil {
		panic(err)
	}
	log = l
}

// Set replaces the global logger. Used by tests and by callers that build
// their own zap core.
func Set(l *zap.Logger) {
	log = l
}

// L returns the global logger, falling back to a development logger when
// Init was never called.
func L() *zap.Logger {
	if log == nil {
		Init("development")
	}
	return log
}

func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}
