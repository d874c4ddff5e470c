package core

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeEnvFileMissing     = "ENV_FILE_MISSING"
	ErrCodeMissingConfig      = "MISSING_CONFIG"
	ErrCodeInvalidStrategy    = "INVALID_STRATEGY"
	ErrCodeInvalidLogLevel    = "INVALID_LOG_LEVEL"
	ErrCodeTemplatesNotFound  = "TEMPLATES_NOT_FOUND"
	ErrCodeInvalidTemplates   = "INVALID_TEMPLATES"
	ErrCodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
)

// ErrEnvFileMissing returns an error for missing .env file
func ErrEnvFileMissing(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeEnvFileMissing,
		Message: fmt.Sprintf("Configuration file not found: %s", path),
		Action:  "Copy example.env to .env or export the variables directly",
	}
}

// ErrMissingConfig returns an error for missing required configuration
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Set %s in your .env file", varName),
	}
}

// ErrInvalidStrategy returns an error for an unknown SIZING_STRATEGY value.
func ErrInvalidStrategy(value string, valid []string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidStrategy,
		Message: fmt.Sprintf("Invalid %s '%s'", EnvSizingStrategy, value),
		Action:  fmt.Sprintf("Set %s to one of: %s", EnvSizingStrategy, strings.Join(valid, ", ")),
	}
}

// ErrInvalidLogLevel returns an error for an unknown LOG_LEVEL value.
func ErrInvalidLogLevel(value string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidLogLevel,
		Message: fmt.Sprintf("Invalid %s '%s'", EnvLogLevel, value),
		Action:  fmt.Sprintf("Set %s to debug, info, warn or error", EnvLogLevel),
	}
}

// ErrTemplatesNotFound returns an error when LAYOUT_TEMPLATES_PATH points
// at a missing file.
func ErrTemplatesNotFound(path string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeTemplatesNotFound,
		Message: fmt.Sprintf("Layout template file not found: %s", path),
		Action:  fmt.Sprintf("Fix %s or unset it to use the built-in templates", EnvLayoutTemplatesPath),
	}
}

// ErrInvalidTemplates returns an error when the template file cannot be loaded.
func ErrInvalidTemplates(path string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidTemplates,
		Message: fmt.Sprintf("Layout template file %s is invalid: %s", path, reason),
		Action:  "Check the YAML against the built-in template shapes",
	}
}

// ErrCatalogUnavailable returns an error when the catalog database cannot
// be opened or read.
func ErrCatalogUnavailable(path string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeCatalogUnavailable,
		Message: fmt.Sprintf("Cannot load model catalog from %s: %s", path, reason),
		Action:  fmt.Sprintf("Check %s, or unset it to use the built-in catalog", EnvCatalogDBPath),
	}
}

// IsConfigError reports whether err wraps a ConfigError and returns it if so.
func IsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
