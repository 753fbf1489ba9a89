// ABOUTME: zap logger construction for the CLI with a process-wide atomic level
// ABOUTME: Console output goes to stderr so it never mixes with rendered model output

package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level constants matching zap levels.
const (
	LevelDebug = zapcore.DebugLevel
	LevelInfo  = zapcore.InfoLevel
	LevelWarn  = zapcore.WarnLevel
	LevelError = zapcore.ErrorLevel
)

var (
	level  = zap.NewAtomicLevelAt(LevelWarn)
	global atomic.Pointer[zap.Logger]
)

func init() {
	global.Store(New(os.Stderr))
}

// SetLevel sets the global log level. Loggers built by New follow it.
func SetLevel(l zapcore.Level) {
	level.SetLevel(l)
}

// GetLevel returns the current log level.
func GetLevel() zapcore.Level {
	return level.Level()
}

// ParseLevel accepts debug, info, warn/warning and error, case-insensitively.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// New builds a console logger writing to w at the global level.
func New(w io.Writer) *zap.Logger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

// L returns the process logger.
func L() *zap.Logger {
	return global.Load()
}

// SetOutput replaces the process logger with one writing to w.
func SetOutput(w io.Writer) {
	global.Store(New(w))
}

// Debug logs a formatted debug message on the process logger.
func Debug(format string, args ...any) {
	L().Sugar().Debugf(format, args...)
}

// Info logs a formatted info message.
func Info(format string, args ...any) {
	L().Sugar().Infof(format, args...)
}

// Warn logs a formatted warning.
func Warn(format string, args ...any) {
	L().Sugar().Warnf(format, args...)
}

// Error logs a formatted error.
func Error(format string, args ...any) {
	L().Sugar().Errorf(format, args...)
}
