package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"go.uber.org/zap/zapcore"

	"comic_backend/logging"
	"comic_backend/modelcatalog"
	"comic_backend/sizing"
)

// Environment variables read by LoadConfig.
const (
	EnvDefaultModel        = "DEFAULT_MODEL"
	EnvSizingStrategy      = "SIZING_STRATEGY"
	EnvLayoutTemplatesPath = "LAYOUT_TEMPLATES_PATH"
	EnvCatalogDBPath       = "CATALOG_DB_PATH"
	EnvLogLevel            = "LOG_LEVEL"
	EnvLogFile             = "LOG_FILE"
	EnvLogMaxSizeMB        = "LOG_MAX_SIZE_MB"
	EnvLogMaxBackups       = "LOG_MAX_BACKUPS"
	EnvLogMaxAgeDays       = "LOG_MAX_AGE_DAYS"
	EnvLogCompress         = "LOG_COMPRESS"
	EnvDevMode             = "DEV_MODE"
)

// DefaultEnvFile is the dotenv file main loads when --env is not given.
const DefaultEnvFile = ".env"

// ValidStrategies lists the accepted SIZING_STRATEGY values.
var ValidStrategies = []string{sizing.NameSlotAware, sizing.NameContextFree}

// Config holds all configuration values
type Config struct {
	// Engine
	DefaultModel        string // Checkpoint used when no model preset or override selects one
	SizingStrategy      string // slot-aware or context-free
	LayoutTemplatesPath string // Optional YAML file extending the built-in templates
	CatalogDBPath       string // Optional SQLite catalog; empty uses the built-in tables

	// Logging
	LogLevel    zapcore.Level
	LogFile     string // Empty disables file output
	LogRotation logging.FileWriterConfig
	DevMode     bool
}

// LoadEnvFile loads a dotenv file into the process environment. Variables
// already set win over the file. A missing file is only an error when
// required is true.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if required {
				return ErrEnvFileMissing(path)
			}
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadConfig reads the configuration from the environment. Malformed
// values are reported as *ConfigError; numeric rotation settings fall back
// to their defaults instead.
func LoadConfig() (*Config, error) {
	devMode := ParseBoolEnv(EnvDevMode, false)

	config := &Config{
		DefaultModel:        strings.TrimSpace(GetEnvOrDefault(EnvDefaultModel, modelcatalog.DefaultCheckpoint)),
		SizingStrategy:      strings.ToLower(strings.TrimSpace(GetEnvOrDefault(EnvSizingStrategy, sizing.NameSlotAware))),
		LayoutTemplatesPath: strings.TrimSpace(os.Getenv(EnvLayoutTemplatesPath)),
		CatalogDBPath:       strings.TrimSpace(os.Getenv(EnvCatalogDBPath)),
		LogFile:             strings.TrimSpace(os.Getenv(EnvLogFile)),
		LogRotation: logging.FileWriterConfig{
			MaxSizeMB:  ParseIntEnv(EnvLogMaxSizeMB, logging.DefaultMaxSizeMB),
			MaxBackups: ParseIntEnv(EnvLogMaxBackups, logging.DefaultMaxBackups),
			MaxAgeDays: ParseIntEnv(EnvLogMaxAgeDays, logging.DefaultMaxAgeDays),
			Compress:   ParseBoolEnv(EnvLogCompress, true),
		},
		DevMode: devMode,
	}

	if config.DefaultModel == "" {
		return nil, ErrMissingConfig(EnvDefaultModel)
	}

	if !lo.Contains(ValidStrategies, config.SizingStrategy) {
		return nil, ErrInvalidStrategy(config.SizingStrategy, ValidStrategies)
	}

	defaultLevel := logging.InfoLevel
	if devMode {
		defaultLevel = logging.DebugLevel
	}
	config.LogLevel = defaultLevel
	if raw := strings.TrimSpace(os.Getenv(EnvLogLevel)); raw != "" {
		level, ok := logging.LookupLevel(raw)
		if !ok {
			return nil, ErrInvalidLogLevel(raw)
		}
		config.LogLevel = level
	}

	return config, nil
}

// LoggerOptions converts the logging settings into logging.Options writing
// console output to console.
func (c *Config) LoggerOptions(console zapcore.WriteSyncer) logging.Options {
	return logging.Options{
		Development: c.DevMode,
		Level:       c.LogLevel,
		FilePath:    c.LogFile,
		File:        c.LogRotation,
		Console:     console,
	}
}

// CatalogPathOrDefault returns CatalogDBPath, or catalog.db in the data
// directory when it is unset.
func (c *Config) CatalogPathOrDefault() string {
	if c.CatalogDBPath != "" {
		return c.CatalogDBPath
	}
	return GetDataFilePath("catalog.db")
}
