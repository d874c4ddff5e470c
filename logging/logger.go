// Package logging wraps zap with the output setup shared by every binary in
// this module: colored console output in development, JSON otherwise, and a
// rotating JSON log file. Inline image payloads are truncated before they
// reach any output.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a zap.Logger with payload filtering.
//
// Example:
//
//	logger, err := NewLogger(true, "panelcfg.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("config resolved", zap.Int("width", 1024))
type Logger struct {
	zap           *zap.Logger
	sugar         *zap.SugaredLogger
	isDevelopment bool
	logFilePath   string
}

// Options configure NewLoggerWithOptions.
type Options struct {
	Development bool
	Level       zapcore.Level
	// FilePath is the rotating log file; empty disables file output.
	FilePath string
	File     FileWriterConfig
	// Console defaults to stdout.
	Console zapcore.WriteSyncer
}

// NewLogger builds a logger at debug level in development and info level
// otherwise, writing to stdout and to logFilePath.
func NewLogger(isDevelopment bool, logFilePath string) (*Logger, error) {
	level := InfoLevel
	if isDevelopment {
		level = DebugLevel
	}
	return NewLoggerWithOptions(Options{
		Development: isDevelopment,
		Level:       level,
		FilePath:    logFilePath,
		File:        DefaultFileWriterConfig(),
	})
}

// NewLoggerWithOptions builds a logger from explicit options. The log file's
// directory is created if missing.
func NewLoggerWithOptions(opts Options) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = zapcore.Lock(os.Stdout)
	}

	var file zapcore.WriteSyncer
	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file = NewFileWriter(opts.FilePath, opts.File)
	}

	core := NewMultiCore(opts.Level, console, file, opts.Development)
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &Logger{
		zap:           z,
		sugar:         z.Sugar(),
		isDevelopment: opts.Development,
		logFilePath:   opts.FilePath,
	}, nil
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *Logger {
	z := zap.NewNop()
	return &Logger{zap: z, sugar: z.Sugar()}
}

// Wrap adapts an existing zap.Logger, typically one built by zaptest or the
// observer package in tests.
func Wrap(z *zap.Logger) *Logger {
	z = z.WithOptions(zap.AddCallerSkip(1))
	return &Logger{zap: z, sugar: z.Sugar()}
}

// Sync flushes buffered entries. It is safe on a nil Logger.
func (l *Logger) Sync() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

func (l *Logger) Debug(msg string, fields ...zap.Field) {
	l.zap.Debug(msg, filterFields(fields)...)
}

func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, filterFields(fields)...)
}

func (l *Logger) Warn(msg string, fields ...zap.Field) {
	l.zap.Warn(msg, filterFields(fields)...)
}

func (l *Logger) Error(msg string, fields ...zap.Field) {
	l.zap.Error(msg, filterFields(fields)...)
}

// Fatal logs then exits the process with status 1.
func (l *Logger) Fatal(msg string, fields ...zap.Field) {
	l.zap.Fatal(msg, filterFields(fields)...)
}

func (l *Logger) Debugw(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, filterKeysAndValues(keysAndValues)...)
}

func (l *Logger) Infow(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, filterKeysAndValues(keysAndValues)...)
}

func (l *Logger) Warnw(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, filterKeysAndValues(keysAndValues)...)
}

func (l *Logger) Errorw(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, filterKeysAndValues(keysAndValues)...)
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields ...zap.Field) *Logger {
	z := l.zap.With(filterFields(fields)...)
	return &Logger{zap: z, sugar: z.Sugar(), isDevelopment: l.isDevelopment, logFilePath: l.logFilePath}
}

// Named returns a child logger with name appended to the logger name.
func (l *Logger) Named(name string) *Logger {
	z := l.zap.Named(name)
	return &Logger{zap: z, sugar: z.Sugar(), isDevelopment: l.isDevelopment, logFilePath: l.logFilePath}
}

// Zap exposes the underlying zap.Logger.
func (l *Logger) Zap() *zap.Logger { return l.zap }

// IsDevelopment reports whether console output is human-readable.
func (l *Logger) IsDevelopment() bool { return l.isDevelopment }

// LogFilePath returns the rotating log file path, empty if none.
func (l *Logger) LogFilePath() string { return l.logFilePath }

func filterFields(fields []zap.Field) []zap.Field {
	if len(fields) == 0 {
		return fields
	}
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		if f.Type == zapcore.StringType {
			if v := filterValue(f.Key, f.String); v != f.String {
				f = zap.String(f.Key, v)
			}
		}
		out[i] = f
	}
	return out
}

func filterKeysAndValues(kv []any) []any {
	if len(kv) == 0 {
		return kv
	}
	out := make([]any, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if s, ok := out[i+1].(string); ok {
			out[i+1] = filterValue(key, s)
		}
	}
	return out
}
