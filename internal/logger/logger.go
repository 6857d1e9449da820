package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging capability injected into every component. Keeping it
// an interface lets tests capture output without touching stdout or files.
type Logger interface {
	InfoObj(msg, key string, obj any)
	DebugObj(msg, key string, obj any)
	WarnObj(msg, key string, obj any)
	ErrorObj(msg, key string, obj any)
}

// zapLogger implements Logger on a zap core.
type zapLogger struct {
	log *zap.Logger
}

// New initializes a zap-backed Logger at the given level ("debug", "info",
// "warn", "error"; anything else falls back to info).
func New(logLevel string) Logger {
	var level zapcore.Level
	switch logLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stdout)),
		level,
	)

	return &zapLogger{log: zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))}
}

func (z *zapLogger) InfoObj(msg, key string, obj any) {
	z.log.Info(msg, zap.Any(key, obj))
}

func (z *zapLogger) DebugObj(msg, key string, obj any) {
	z.log.Debug(msg, zap.Any(key, obj))
}

func (z *zapLogger) WarnObj(msg, key string, obj any) {
	z.log.Warn(msg, zap.Any(key, obj))
}

func (z *zapLogger) ErrorObj(msg, key string, obj any) {
	z.log.Error(msg, zap.Any(key, obj))
}

// Sync flushes buffered entries if the logger is zap-backed.
func Sync(l Logger) error {
	if z, ok := l.(*zapLogger); ok {
		return z.log.Sync()
	}
	return nil
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) InfoObj(string, string, any)  {}
func (NopLogger) DebugObj(string, string, any) {}
func (NopLogger) WarnObj(string, string, any)  {}
func (NopLogger) ErrorObj(string, string, any) {}
