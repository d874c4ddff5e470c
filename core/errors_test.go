package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestConfigError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ConfigError
		contains []string
	}{
		{
			name: "error with action",
			err: &ConfigError{
				Code:    "TEST_CODE",
				Message: "Test message",
				Action:  "Take this action",
			},
			contains: []string{"Test message", "Take this action"},
		},
		{
			name: "error without action",
			err: &ConfigError{
				Code:    "TEST_CODE",
				Message: "Test message only",
				Action:  "",
			},
			contains: []string{"Test message only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(errStr, s) {
					t.Errorf("ConfigError.Error() = %q, expected to contain %q", errStr, s)
				}
			}
		})
	}
}

func TestConfigErrorConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *ConfigError
		code      string
		inMessage []string
		inAction  []string
	}{
		{
			name:      "env file missing",
			err:       ErrEnvFileMissing(".env"),
			code:      ErrCodeEnvFileMissing,
			inMessage: []string{".env"},
			inAction:  []string{"example.env"},
		},
		{
			name:      "missing config",
			err:       ErrMissingConfig("DEFAULT_MODEL"),
			code:      ErrCodeMissingConfig,
			inMessage: []string{"DEFAULT_MODEL"},
			inAction:  []string{"DEFAULT_MODEL"},
		},
		{
			name:      "invalid strategy",
			err:       ErrInvalidStrategy("fancy", []string{"slot-aware", "context-free"}),
			code:      ErrCodeInvalidStrategy,
			inMessage: []string{EnvSizingStrategy, "fancy"},
			inAction:  []string{"slot-aware, context-free"},
		},
		{
			name:      "invalid log level",
			err:       ErrInvalidLogLevel("loud"),
			code:      ErrCodeInvalidLogLevel,
			inMessage: []string{EnvLogLevel, "loud"},
			inAction:  []string{"debug"},
		},
		{
			name:      "templates not found",
			err:       ErrTemplatesNotFound("/tmp/x.yaml"),
			code:      ErrCodeTemplatesNotFound,
			inMessage: []string{"/tmp/x.yaml"},
			inAction:  []string{EnvLayoutTemplatesPath},
		},
		{
			name:      "invalid templates",
			err:       ErrInvalidTemplates("t.yaml", "duplicate slot"),
			code:      ErrCodeInvalidTemplates,
			inMessage: []string{"t.yaml", "duplicate slot"},
		},
		{
			name:      "catalog unavailable",
			err:       ErrCatalogUnavailable("c.db", "locked"),
			code:      ErrCodeCatalogUnavailable,
			inMessage: []string{"c.db", "locked"},
			inAction:  []string{EnvCatalogDBPath},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, tt.err.Code)
			}
			for _, s := range tt.inMessage {
				if !strings.Contains(tt.err.Message, s) {
					t.Errorf("Expected message to contain %q, got %s", s, tt.err.Message)
				}
			}
			for _, s := range tt.inAction {
				if !strings.Contains(tt.err.Action, s) {
					t.Errorf("Expected action to contain %q, got %s", s, tt.err.Action)
				}
			}
		})
	}
}

func TestIsConfigError(t *testing.T) {
	t.Run("returns ConfigError when it is one", func(t *testing.T) {
		configErr := ErrEnvFileMissing(".env")
		result, ok := IsConfigError(configErr)
		if !ok {
			t.Error("Expected IsConfigError to return true for ConfigError")
		}
		if result != configErr {
			t.Error("Expected IsConfigError to return the same ConfigError")
		}
	})

	t.Run("unwraps wrapped ConfigError", func(t *testing.T) {
		configErr := ErrInvalidLogLevel("loud")
		result, ok := IsConfigError(fmt.Errorf("load config: %w", configErr))
		if !ok || result != configErr {
			t.Errorf("IsConfigError() = %v, %v", result, ok)
		}
	})

	t.Run("returns false for regular error", func(t *testing.T) {
		regularErr := errors.New("regular error")
		result, ok := IsConfigError(regularErr)
		if ok {
			t.Error("Expected IsConfigError to return false for regular error")
		}
		if result != nil {
			t.Error("Expected nil result for non-ConfigError")
		}
	})

	t.Run("returns false for nil", func(t *testing.T) {
		result, ok := IsConfigError(nil)
		if ok {
			t.Error("Expected IsConfigError to return false for nil")
		}
		if result != nil {
			t.Error("Expected nil result for nil input")
		}
	})
}

func TestGetErrorCode(t *testing.T) {
	t.Run("returns code for ConfigError", func(t *testing.T) {
		err := ErrEnvFileMissing(".env")
		code := GetErrorCode(err)
		if code != ErrCodeEnvFileMissing {
			t.Errorf("Expected code %s, got %s", ErrCodeEnvFileMissing, code)
		}
	})

	t.Run("returns empty for regular error", func(t *testing.T) {
		err := errors.New("regular error")
		code := GetErrorCode(err)
		if code != "" {
			t.Errorf("Expected empty code, got %s", code)
		}
	})

	t.Run("returns empty for nil", func(t *testing.T) {
		code := GetErrorCode(nil)
		if code != "" {
			t.Errorf("Expected empty code, got %s", code)
		}
	})
}
