package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// syncLogger ignores the "invalid argument" error Linux returns when
// syncing stdout.
func syncLogger(t testing.TB, logger *Logger) {
	t.Helper()
	if err := logger.Sync(); err != nil && !strings.Contains(err.Error(), "invalid argument") {
		t.Logf("Sync() warning: %v", err)
	}
}

type bufferSyncer struct{ bytes.Buffer }

func (*bufferSyncer) Sync() error { return nil }

func TestNewLogger_WritesFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "panelcfg.log")

	logger, err := NewLogger(false, logPath)
	if err != nil {
		t.Fatalf("NewLogger() error: %v", err)
	}
	if logger.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if logger.LogFilePath() != logPath {
		t.Errorf("LogFilePath() = %q", logger.LogFilePath())
	}

	logger.Info("resolved", zap.Int("width", 1024))
	syncLogger(t, logger)

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, data)
	}
	if entry[FieldMessage] != "resolved" || entry[FieldLevel] != "info" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["width"] != float64(1024) {
		t.Errorf("width = %v", entry["width"])
	}
}

func TestNewLoggerWithOptions_ConsoleOnly(t *testing.T) {
	var buf bufferSyncer
	logger, err := NewLoggerWithOptions(Options{Level: WarnLevel, Console: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("dropped")
	logger.Warn("kept")
	syncLogger(t, logger)

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info entry written at warn level")
	}
	if !strings.Contains(out, "kept") {
		t.Error("warn entry missing")
	}
	if logger.LogFilePath() != "" {
		t.Error("expected no log file")
	}
}

func TestLogger_TruncatesPayloads(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := Wrap(zap.New(core))

	image := "data:image/png;base64," + strings.Repeat("A", 4000)
	logger.Info("composed", zap.String("source_image", image), zap.String("model", "sdxl"))
	logger.Infow("composed", "mask", strings.Repeat("x", 1000), "preset", "pose-depth")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}

	fields := entries[0].ContextMap()
	if got := fields["source_image"].(string); len(got) > 100 || !strings.Contains(got, "(4000 bytes)") {
		t.Errorf("image not truncated: %q", got)
	}
	if fields["model"] != "sdxl" {
		t.Errorf("model = %v", fields["model"])
	}

	sugared := entries[1].ContextMap()
	if got := sugared["mask"].(string); !strings.Contains(got, "(1000 bytes)") {
		t.Errorf("mask not truncated: %q", got)
	}
	if sugared["preset"] != "pose-depth" {
		t.Errorf("preset = %v", sugared["preset"])
	}
}

func TestLogger_WithAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := Wrap(zap.New(core)).Named("genconfig").With(zap.String("request_id", "r1"))
	logger.Debug("fallback")

	e := logs.All()[0]
	if e.LoggerName != "genconfig" {
		t.Errorf("logger name = %q", e.LoggerName)
	}
	if e.ContextMap()["request_id"] != "r1" {
		t.Errorf("missing context field: %v", e.ContextMap())
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("nothing")
	l.Errorw("nothing", "k", "v")
	if err := l.Sync(); err != nil {
		t.Errorf("Sync() = %v", err)
	}

	var nilLogger *Logger
	if err := nilLogger.Sync(); err != nil {
		t.Errorf("nil Sync() = %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{" Warning ", WarnLevel},
		{"error", ErrorLevel},
		{"verbose", InfoLevel},
		{"", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in, InfoLevel); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, ok := LookupLevel("verbose"); ok {
		t.Error("LookupLevel(verbose) reported a level")
	}
	if l, ok := LookupLevel("WARN"); !ok || l != WarnLevel {
		t.Errorf("LookupLevel(WARN) = %s, %v", l, ok)
	}

	t.Setenv("PANELCFG_TEST_LEVEL", "error")
	if got := LevelFromEnv("PANELCFG_TEST_LEVEL", InfoLevel); got != ErrorLevel {
		t.Errorf("LevelFromEnv = %s", got)
	}
}

func TestTruncatePayload(t *testing.T) {
	long := strings.Repeat("QUJD", 100)
	tests := []struct {
		name    string
		in      string
		changed bool
	}{
		{"plain text", "a quiet street at dusk", false},
		{"short data uri", "data:image/png;base64,AAAA", false},
		{"long data uri", "data:image/jpeg;base64," + long, true},
		{"long bare base64", long, true},
		{"long prose", strings.Repeat("word ", 100), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncatePayload(tt.in)
			if (got != tt.in) != tt.changed {
				t.Errorf("TruncatePayload changed=%v, want %v (%q)", got != tt.in, tt.changed, got)
			}
		})
	}
}

func TestFileWriterDefaults(t *testing.T) {
	cfg := withFileDefaults(FileWriterConfig{MaxSizeMB: 5})
	if cfg.MaxSizeMB != 5 || cfg.MaxBackups != DefaultMaxBackups || cfg.MaxAgeDays != DefaultMaxAgeDays {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
