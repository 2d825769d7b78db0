package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/promptroom/api/infrastructure/config"
)

// Logger wraps zap so call sites stay decoupled from the concrete logging
// backend.
type Logger struct {
	Log *zap.Logger
}

func NewLogger(cfg *config.Config) (*Logger, error) {
	if cfg == nil || cfg.IsDevelopment() {
		return NewDevelopmentLogger()
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Logger.Encoding != "" {
		zapCfg.Encoding = cfg.Logger.Encoding
	}
	if level, err := zapcore.ParseLevel(cfg.Logger.Level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	if cfg.Logger.FilePath != "" {
		zapCfg.OutputPaths = append(zapCfg.OutputPaths, cfg.Logger.FilePath)
	}

	log, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &Logger{Log: log}, nil
}

func NewDevelopmentLogger() (*Logger, error) {
	log, err := zap.NewDevelopment(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{Log: log}, nil
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.Log.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.Log.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.Log.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.Log.Error(msg, fields...) }
func (l *Logger) Panic(msg string, fields ...zap.Field) { l.Log.Panic(msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...zap.Field) { l.Log.Fatal(msg, fields...) }
