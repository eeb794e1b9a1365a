// Package logger is a thin zap wrapper with component-tagged helpers.
// Every log line carries a component field so pipeline stages can be
// filtered apart.
package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop()
)

// Init configures the global logger. Level is one of debug, info, warn,
// error; format is "json" or "console". It is safe to call more than
// once; the last call wins.
func Init(level, format string) error {
	var cfg zap.Config
	if strings.EqualFold(format, "json") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	parsed, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		parsed = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(parsed)

	built, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return err
	}

	SetZap(built)
	return nil
}

// SetZap swaps the underlying zap logger, mostly for tests.
func SetZap(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	log = l
	mu.Unlock()
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	l := log
	mu.RUnlock()
	_ = l.Sync()
}

func DebugCF(component, msg string, fields map[string]interface{}) {
	emit(zapcore.DebugLevel, component, msg, fields)
}

func InfoCF(component, msg string, fields map[string]interface{}) {
	emit(zapcore.InfoLevel, component, msg, fields)
}

func WarnCF(component, msg string, fields map[string]interface{}) {
	emit(zapcore.WarnLevel, component, msg, fields)
}

func ErrorCF(component, msg string, fields map[string]interface{}) {
	emit(zapcore.ErrorLevel, component, msg, fields)
}

func emit(level zapcore.Level, component, msg string, fields map[string]interface{}) {
	mu.RLock()
	l := log
	mu.RUnlock()

	zfields := make([]zap.Field, 0, len(fields)+1)
	zfields = append(zfields, zap.String("component", component))
	for key, value := range fields {
		zfields = append(zfields, zap.Any(key, value))
	}

	switch level {
	case zapcore.DebugLevel:
		l.Debug(msg, zfields...)
	case zapcore.InfoLevel:
		l.Info(msg, zfields...)
	case zapcore.WarnLevel:
		l.Warn(msg, zfields...)
	default:
		l.Error(msg, zfields...)
	}
}
