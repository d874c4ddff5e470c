package logging

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Level aliases so callers do not need to import zapcore.
const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

// LevelFromEnv reads a level name from the named environment variable,
// returning def when it is unset or unrecognised.
func LevelFromEnv(name string, def zapcore.Level) zapcore.Level {
	return ParseLevel(os.Getenv(name), def)
}

// ParseLevel maps debug, info, warn (or warning) and error to zap levels,
// case-insensitively. Anything else yields def.
func ParseLevel(s string, def zapcore.Level) zapcore.Level {
	if l, ok := LookupLevel(s); ok {
		return l
	}
	return def
}

// LookupLevel is ParseLevel reporting whether s named a level.
func LookupLevel(s string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "info":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}
