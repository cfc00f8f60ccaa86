package util

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.SugaredLogger]

func init() {
	logger.Store(zap.NewNop().Sugar())
}

// InitLogger builds the process wide logger. Mode "prod" selects the JSON
// production encoder, anything else the development console encoder.
func InitLogger(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	SetLogger(l)
	return l, nil
}

// SetLogger replaces the process wide logger.
func SetLogger(l *zap.Logger) {
	logger.Store(l.Sugar())
}

// Logger returns the process wide logger.
func Logger() *zap.SugaredLogger {
	return logger.Load()
}

// LogError logs an error with context
func LogError(message string, err error, keysAndValues ...any) {
	if err != nil {
		Logger().Errorw(message, append(keysAndValues, "error", err)...)
	}
}

// LogInfo logs an informational message
func LogInfo(message string, keysAndValues ...any) {
	Logger().Infow(message, keysAndValues...)
}

// LogWarning logs a warning message
func LogWarning(message string, keysAndValues ...any) {
	Logger().Warnw(message, keysAndValues...)
}
