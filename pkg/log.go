package pkg

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Component identifies a subsystem for log filtering.
type Component string

// Flash driver component identifiers.
const (
	ComponentNAND   Component = "nand"
	ComponentXfer   Component = "xfer"
	ComponentECC    Component = "ecc"
	ComponentHAL    Component = "hal"
	ComponentSim    Component = "sim"
	ComponentBridge Component = "bridge"
)

var (
	logger   *zap.SugaredLogger
	logLevel zap.AtomicLevel
	logMutex sync.RWMutex
)

func init() {
	logLevel = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	logger = newLogger(nil).Sugar()
}

// newLogger builds a console logger at the shared level. A nil syncer
// selects stderr.
func newLogger(w zapcore.WriteSyncer) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if w == nil {
		w = zapcore.Lock(os.Stderr)
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), w, logLevel)
	return zap.New(core)
}

// SetLogLevel sets the minimum log level for all driver logging.
func SetLogLevel(level zapcore.Level) {
	logLevel.SetLevel(level)
}

// GetLogLevel returns the current minimum log level.
func GetLogLevel() zapcore.Level {
	return logLevel.Level()
}

// SetLogger replaces the default logger with a custom zap logger.
func SetLogger(l *zap.Logger) {
	logMutex.Lock()
	defer logMutex.Unlock()
	logger = l.Sugar()
}

// NewLogger creates a console logger writing to the given syncer at the
// shared driver log level.
func NewLogger(w zapcore.WriteSyncer) *zap.Logger {
	return newLogger(w)
}

// LogDebug logs a debug message with the given component.
func LogDebug(component Component, msg string, args ...any) {
	logMutex.RLock()
	l := logger
	logMutex.RUnlock()
	l.Debugw(msg, append([]any{"component", string(component)}, args...)...)
}

// LogInfo logs an info message with the given component.
func LogInfo(component Component, msg string, args ...any) {
	logMutex.RLock()
	l := logger
	logMutex.RUnlock()
	l.Infow(msg, append([]any{"component", string(component)}, args...)...)
}

// LogWarn logs a warning message with the given component.
func LogWarn(component Component, msg string, args ...any) {
	logMutex.RLock()
	l := logger
	logMutex.RUnlock()
	l.Warnw(msg, append([]any{"component", string(component)}, args...)...)
}

// LogError logs an error message with the given component.
func LogError(component Component, msg string, args ...any) {
	logMutex.RLock()
	l := logger
	logMutex.RUnlock()
	l.Errorw(msg, append([]any{"component", string(component)}, args...)...)
}
