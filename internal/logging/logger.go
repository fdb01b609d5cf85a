package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where log output goes
type Options struct {
	// FilePath is the rotated JSON log file. Empty disables file output.
	FilePath string

	// Console mirrors log lines to stdout. Must stay off while the TUI owns the terminal.
	Console bool

	// Debug lowers the level of every core to debug.
	Debug bool
}

var (
	mu      sync.RWMutex
	sugar   *zap.SugaredLogger
	rotator *lumberjack.Logger
)

// Init builds the process logger. Calls made before Init are dropped.
func Init(opts Options) error {
	level := zap.InfoLevel
	if opts.Debug {
		level = zap.DebugLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var cores []zapcore.Core
	var rot *lumberjack.Logger

	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		rot = &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rot), level))
	}

	if opts.Console {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
			zapcore.Lock(os.Stdout),
			level,
		))
	}

	if len(cores) == 0 {
		return nil
	}

	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))

	mu.Lock()
	sugar = l.Sugar()
	rotator = rot
	mu.Unlock()

	sugar.Infof("=== agentic-rag log started ===")
	return nil
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Debug logs a debug message
func Debug(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Debugf(format, v...)
	}
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Infof(format, v...)
	}
}

// Warn logs a warning message
func Warn(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Warnf(format, v...)
	}
}

// Error logs an error message
func Error(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Errorf(format, v...)
	}
}

// Close flushes buffered entries and closes the log file
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if sugar != nil {
		sugar.Infof("=== agentic-rag log ended ===")
		_ = sugar.Sync()
		sugar = nil
	}
	if rotator != nil {
		_ = rotator.Close()
		rotator = nil
	}
}
