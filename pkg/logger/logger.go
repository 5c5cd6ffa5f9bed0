package logger

import (
	"os"
	"path/filepath"

	"github.com/Payphone-Digital/storefront/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Logger = zap.NewNop()
	Sugar  = Logger.Sugar()
)

// InitLogger initializes Zap logger with configuration. File output is only
// enabled when LogsPath is set.
func InitLogger(cfg *config.Config) error {
	var zapLevel zapcore.Level
	switch cfg.App.Environment {
	case "production":
		zapLevel = zapcore.InfoLevel
	default:
		zapLevel = zapcore.DebugLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	infoSinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	errorSinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stderr)}

	if cfg.App.LogsPath != "" {
		if err := os.MkdirAll(cfg.App.LogsPath, 0755); err != nil {
			return err
		}

		infoFile, err := os.OpenFile(filepath.Join(cfg.App.LogsPath, "info.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		errorFile, err := os.OpenFile(filepath.Join(cfg.App.LogsPath, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			infoFile.Close()
			return err
		}

		infoSinks = append(infoSinks, zapcore.AddSync(infoFile))
		errorSinks = append(errorSinks, zapcore.AddSync(errorFile))
	}

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(infoSinks...), zapLevel),
		zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(errorSinks...), zapcore.ErrorLevel),
	)

	SetLogger(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("app", cfg.App.Name)))

	return nil
}

// SetLogger replaces the global logger. Tests use it with zaptest or
// zap.NewNop.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	Logger = l
	Sugar = l.Sugar()
}

// GetLogger returns the structured logger
func GetLogger() *zap.Logger {
	return Logger
}

// Sync syncs all logs (call this before application exits)
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// WithFields returns the global logger with fields attached, for components
// that keep their own logger.
func WithFields(fields ...zap.Field) *zap.Logger {
	return Logger.With(fields...)
}

// LogPanic logs panic and recovers
func LogPanic(recovered interface{}) {
	Logger.Error("Panic recovered",
		zap.Any("panic", recovered),
		zap.Stack("stack"),
	)
}

// LogAuth logs authentication events
func LogAuth(sessionID, action string, success bool, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("session_id", sessionID),
		zap.String("action", action),
		zap.Bool("success", success),
	}, fields...)

	if success {
		Logger.Info("Authentication success", allFields...)
	} else {
		Logger.Warn("Authentication failure", allFields...)
	}
}
