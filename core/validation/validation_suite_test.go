package validation

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"

	"comic_backend/core"
	"comic_backend/modelcatalog"
)

func testConfig() *core.Config {
	return &core.Config{
		DefaultModel:   modelcatalog.DefaultCheckpoint,
		SizingStrategy: "slot-aware",
	}
}

func stepNames(r SuiteResult) []string {
	return lo.Map(r.Steps, func(s ValidationStep, _ int) string { return s.Name })
}

func stepStatuses(r SuiteResult) map[string]StepStatus {
	return lo.SliceToMap(r.Steps, func(s ValidationStep) (string, StepStatus) { return s.Name, s.Status })
}

func TestValidationSuite_BuilderPattern(t *testing.T) {
	var buf bytes.Buffer

	suite := NewValidationSuite(testConfig()).
		WithOutput(&buf).
		WithShowProgress(false).
		WithFailFast(true).
		WithEnvPath("/custom/path/.env", true)

	if suite.output != &buf {
		t.Error("WithOutput did not set output correctly")
	}
	if suite.showProgress {
		t.Error("WithShowProgress did not set value correctly")
	}
	if !suite.failFast {
		t.Error("WithFailFast did not set value correctly")
	}
	if suite.envPath != "/custom/path/.env" || !suite.envRequired {
		t.Error("WithEnvPath did not set values correctly")
	}
	if suite.sizes == nil || suite.qualities == nil || suite.models == nil {
		t.Error("preset catalogs should default to the built-ins")
	}
}

func TestStepStatus_String(t *testing.T) {
	tests := []struct {
		status   StepStatus
		expected string
	}{
		{StepPending, "pending"},
		{StepRunning, "running"},
		{StepPassed, "passed"},
		{StepFailed, "failed"},
		{StepWarning, "warning"},
		{StepSkipped, "skipped"},
		{StepStatus(99), "unknown"},
		{StepStatus(-1), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.status.String(); got != tt.expected {
				t.Errorf("StepStatus(%d).String() = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestValidationSuite_Validate_BuiltinCatalog(t *testing.T) {
	var buf bytes.Buffer
	suite := NewValidationSuite(testConfig()).
		WithOutput(&buf).
		WithShowProgress(false).
		WithEnvPath(writeFile(t, ".env", ""), false)

	result := suite.Validate(context.Background())

	if !result.Success {
		t.Fatalf("Validate() failed: %v", result.GetErrors())
	}
	want := []string{
		"Environment File", "Sizing Strategy", "Size Presets", "Quality Presets",
		"Layout Templates", "Catalog Database", "Model Catalog", "Composition Presets",
	}
	if diff := cmp.Diff(want, stepNames(result)); diff != "" {
		t.Errorf("steps (-want +got):\n%s", diff)
	}
	if result.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2 (templates and database unset)", result.Skipped)
	}
	if buf.Len() != 0 {
		t.Errorf("no output expected without progress, got %q", buf.String())
	}
}

func TestValidationSuite_Validate_StoredCatalog(t *testing.T) {
	config := testConfig()
	config.CatalogDBPath = filepath.Join(t.TempDir(), "catalog.db")
	config.LayoutTemplatesPath = writeFile(t, "layouts.yaml", threeTierYAML)

	result := NewValidationSuite(config).
		WithShowProgress(false).
		WithEnvPath(filepath.Join(t.TempDir(), ".env"), false).
		Validate(context.Background())

	if !result.Success {
		t.Fatalf("Validate() failed: %v", result.GetErrors())
	}
	statuses := stepStatuses(result)
	want := map[string]StepStatus{
		"Environment File":    StepWarning,
		"Sizing Strategy":     StepPassed,
		"Size Presets":        StepPassed,
		"Quality Presets":     StepPassed,
		"Layout Templates":    StepPassed,
		"Catalog Database":    StepWarning,
		"Model Catalog":       StepPassed,
		"Composition Presets": StepPassed,
	}
	if diff := cmp.Diff(want, statuses); diff != "" {
		t.Errorf("statuses (-want +got):\n%s", diff)
	}
}

func TestValidationSuite_Validate_DatabaseFailureSkipsCatalogChecks(t *testing.T) {
	config := testConfig()
	config.CatalogDBPath = t.TempDir()

	result := NewValidationSuite(config).
		WithShowProgress(false).
		WithEnvPath(writeFile(t, ".env", ""), false).
		Validate(context.Background())

	if result.Success {
		t.Fatal("Validate() should fail for an unopenable database")
	}
	statuses := stepStatuses(result)
	if statuses["Catalog Database"] != StepFailed {
		t.Errorf("Catalog Database = %s", statuses["Catalog Database"])
	}
	for _, name := range []string{"Model Catalog", "Composition Presets"} {
		if statuses[name] != StepSkipped {
			t.Errorf("%s = %s, want skipped", name, statuses[name])
		}
	}
	if core.GetErrorCode(result.GetFirstError()) != core.ErrCodeCatalogUnavailable {
		t.Errorf("first error = %v", result.GetFirstError())
	}
}

func TestValidationSuite_ValidateQuick(t *testing.T) {
	config := testConfig()
	config.SizingStrategy = "fancy"

	t.Run("collects every failure", func(t *testing.T) {
		result := NewValidationSuite(config).
			WithShowProgress(false).
			WithEnvPath(filepath.Join(t.TempDir(), ".env"), true).
			ValidateQuick()

		if result.Success {
			t.Error("ValidateQuick should fail")
		}
		if result.TotalSteps != 5 || result.FailedSteps != 2 {
			t.Errorf("TotalSteps = %d, FailedSteps = %d", result.TotalSteps, result.FailedSteps)
		}
		if len(result.GetErrors()) != 2 {
			t.Errorf("GetErrors() = %v", result.GetErrors())
		}
	})

	t.Run("fail fast stops at the first failure", func(t *testing.T) {
		result := NewValidationSuite(config).
			WithShowProgress(false).
			WithFailFast(true).
			WithEnvPath(filepath.Join(t.TempDir(), ".env"), true).
			ValidateQuick()

		if result.TotalSteps != 1 {
			t.Errorf("FailFast should stop after first failure, got %d steps", result.TotalSteps)
		}
	})
}

func TestValidationSuite_ProgressOutput(t *testing.T) {
	var buf bytes.Buffer
	config := testConfig()
	config.SizingStrategy = "fancy"

	NewValidationSuite(config).
		WithOutput(&buf).
		WithEnvPath(writeFile(t, ".env", ""), false).
		ValidateQuick()

	output := buf.String()
	for _, want := range []string{
		"Quick Configuration Check",
		"✓ Environment File",
		"✗ Sizing Strategy",
		"└─ Invalid SIZING_STRATEGY 'fancy'",
		"○ Layout Templates",
		"Validation Failed",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("progress output missing %q:\n%s", want, output)
		}
	}
}

func TestValidationSuite_buildResult(t *testing.T) {
	suite := NewValidationSuite(testConfig())
	startTime := time.Now().Add(-100 * time.Millisecond)

	steps := []ValidationStep{
		{Name: "Step1", Status: StepPassed},
		{Name: "Step2", Status: StepFailed},
		{Name: "Step3", Status: StepWarning},
		{Name: "Step4", Status: StepSkipped},
	}

	result := suite.buildResult(steps, startTime)

	if result.TotalSteps != 4 {
		t.Errorf("TotalSteps = %d, want 4", result.TotalSteps)
	}
	if result.PassedSteps != 1 || result.FailedSteps != 1 || result.Warnings != 1 || result.Skipped != 1 {
		t.Errorf("counts = %+v", result)
	}
	if result.Success {
		t.Error("Success should be false when there are failures")
	}
	if result.Duration < 100*time.Millisecond {
		t.Errorf("Duration should be at least 100ms, got %v", result.Duration)
	}
}

func TestSuiteResult_Summary(t *testing.T) {
	passed := SuiteResult{
		Success:     true,
		TotalSteps:  8,
		PassedSteps: 6,
		Skipped:     2,
		Duration:    1500 * time.Millisecond,
	}
	summary := passed.Summary()
	for _, want := range []string{"Passed", "6/8", "2 skipped"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() = %q, missing %q", summary, want)
		}
	}

	failed := SuiteResult{
		TotalSteps:  6,
		PassedSteps: 4,
		FailedSteps: 2,
		Warnings:    1,
		Duration:    2000 * time.Millisecond,
	}
	summary = failed.Summary()
	for _, want := range []string{"Failed", "4/6", "2 failed", "1 warning"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() = %q, missing %q", summary, want)
		}
	}
}
