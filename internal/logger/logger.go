package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Init builds the process logger and installs it as the zap global.
// level is one of debug, info, warn, error; format is json or console.
func Init(level, format string) {
	core := zapcore.NewCore(
		newEncoder(format),
		zapcore.AddSync(os.Stdout),
		parseLevel(level),
	)

	zap.ReplaceGlobals(zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	))

	Info("logger initialized", map[string]any{
		"level":  level,
		"format": format,
	})
}

// L returns the underlying zap logger.
func L() *zap.Logger {
	return zap.L()
}

func Debug(msg string, fields map[string]any) {
	zap.L().Debug(msg, toZap(fields)...)
}

func Info(msg string, fields map[string]any) {
	zap.L().Info(msg, toZap(fields)...)
}

func Warn(msg string, fields map[string]any) {
	zap.L().Warn(msg, toZap(fields)...)
}

func Error(msg string, fields map[string]any) {
	zap.L().Error(msg, toZap(fields)...)
}

// Fatal logs and exits the process.
func Fatal(msg string, fields map[string]any) {
	zap.L().Fatal(msg, toZap(fields)...)
}

// Sync flushes buffered entries.
func Sync() {
	_ = zap.L().Sync()
}

func toZap(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder(format string) zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(timeFormat),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if strings.ToLower(format) == "console" {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewJSONEncoder(cfg)
}
