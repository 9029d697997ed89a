// Package log holds the process-wide zap logger.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var defaultLogger = zap.NewNop()

// Options controls where Set sends log output.
type Options struct {
	// Dir receives a timestamped debug log file. Empty disables the file.
	Dir string
	// Debug lowers the console level from info to debug.
	Debug bool
	// Now names the log file. Defaults to time.Now.
	Now func() time.Time
}

func Get() *zap.Logger {
	return defaultLogger
}

// Set replaces the default logger with one that writes short messages to
// stderr and full debug records to a file under opts.Dir. It returns the
// path of the log file, if any.
func Set(opts Options) (string, error) {
	consoleLevel := zap.InfoLevel
	if opts.Debug {
		consoleLevel = zap.DebugLevel
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.TimeKey = ""
	consoleCfg.CallerKey = ""
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), consoleLevel),
	}

	var path string
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return "", fmt.Errorf("create log dir: %w", err)
		}
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		path = filepath.Join(opts.Dir, fmt.Sprintf("law_notes_%s.log", now().Format("20060102_150405")))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return "", fmt.Errorf("open log file: %w", err)
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(fileCfg), zapcore.AddSync(f), zap.DebugLevel))
	}

	defaultLogger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return path, nil
}

// Reset restores the no-op logger.
func Reset() {
	defaultLogger = zap.NewNop()
}

func Flush() {
	_ = defaultLogger.Sync()
}
