package core

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"

	"comic_backend/logging"
	"comic_backend/modelcatalog"
)

// clearConfigEnv blanks every variable LoadConfig reads.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvDefaultModel, EnvSizingStrategy, EnvLayoutTemplatesPath, EnvCatalogDBPath,
		EnvLogLevel, EnvLogFile, EnvLogMaxSizeMB, EnvLogMaxBackups, EnvLogMaxAgeDays,
		EnvLogCompress, EnvDevMode,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := &Config{
		DefaultModel:   modelcatalog.DefaultCheckpoint,
		SizingStrategy: "slot-aware",
		LogLevel:       zapcore.InfoLevel,
		LogRotation:    logging.DefaultFileWriterConfig(),
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(EnvDefaultModel, "illustriousXL_v01.safetensors")
	t.Setenv(EnvSizingStrategy, " Context-Free ")
	t.Setenv(EnvLayoutTemplatesPath, "layouts.yaml")
	t.Setenv(EnvCatalogDBPath, "data/catalog.db")
	t.Setenv(EnvLogFile, "logs/panelcfg.log")
	t.Setenv(EnvLogMaxSizeMB, "50")
	t.Setenv(EnvLogMaxBackups, "not-a-number")
	t.Setenv(EnvLogCompress, "off")
	t.Setenv(EnvDevMode, "yes")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	want := &Config{
		DefaultModel:        "illustriousXL_v01.safetensors",
		SizingStrategy:      "context-free",
		LayoutTemplatesPath: "layouts.yaml",
		CatalogDBPath:       "data/catalog.db",
		LogLevel:            zapcore.DebugLevel,
		LogFile:             "logs/panelcfg.log",
		LogRotation: logging.FileWriterConfig{
			MaxSizeMB:  50,
			MaxBackups: logging.DefaultMaxBackups,
			MaxAgeDays: logging.DefaultMaxAgeDays,
			Compress:   false,
		},
		DevMode: true,
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
	if got := config.CatalogPathOrDefault(); got != "data/catalog.db" {
		t.Errorf("CatalogPathOrDefault() = %q", got)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		code string
	}{
		{"unknown strategy", map[string]string{EnvSizingStrategy: "fancy"}, ErrCodeInvalidStrategy},
		{"unknown log level", map[string]string{EnvLogLevel: "verbose"}, ErrCodeInvalidLogLevel},
		{"blank default model", map[string]string{EnvDefaultModel: "   "}, ErrCodeMissingConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			if code := GetErrorCode(err); code != tt.code {
				t.Errorf("LoadConfig() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoadConfig_ExplicitLevelBeatsDevMode(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv(EnvDevMode, "true")
	t.Setenv(EnvLogLevel, "warn")

	config, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if config.LogLevel != zapcore.WarnLevel {
		t.Errorf("LogLevel = %s, want warn", config.LogLevel)
	}
}

func TestConfig_LoggerOptions(t *testing.T) {
	var buf bytes.Buffer
	config := &Config{
		LogLevel:    zapcore.ErrorLevel,
		LogFile:     "x.log",
		LogRotation: logging.DefaultFileWriterConfig(),
		DevMode:     true,
	}
	opts := config.LoggerOptions(zapcore.AddSync(&buf))
	if !opts.Development || opts.Level != zapcore.ErrorLevel || opts.FilePath != "x.log" || opts.Console == nil {
		t.Errorf("LoggerOptions() = %+v", opts)
	}
}

func TestCatalogPathOrDefault(t *testing.T) {
	config := &Config{}
	if got := config.CatalogPathOrDefault(); got != GetDataFilePath("catalog.db") {
		t.Errorf("CatalogPathOrDefault() = %q", got)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	const key = "PANELCFG_TEST_ENV_FILE"
	t.Setenv(key, "")
	os.Unsetenv(key)

	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte(key+"=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnvFile(path, true); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv(key); got != "from-file" {
		t.Errorf("%s = %q, want from-file", key, got)
	}

	missing := filepath.Join(dir, "missing.env")
	if err := LoadEnvFile(missing, false); err != nil {
		t.Errorf("optional missing file: %v", err)
	}
	err := LoadEnvFile(missing, true)
	if GetErrorCode(err) != ErrCodeEnvFileMissing {
		t.Errorf("required missing file: %v", err)
	}
}
