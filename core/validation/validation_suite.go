// Package validation runs the startup checks behind `panelcfg validate`:
// environment, preset invariants, layout templates and the model catalog.
package validation

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"comic_backend/core"
	"comic_backend/modelcatalog"
	"comic_backend/presets"
)

// ValidationStep represents a single validation step with its status.
type ValidationStep struct {
	Name    string
	Status  StepStatus
	Message string
	Error   error
	Latency time.Duration
}

// StepStatus represents the status of a validation step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepPassed
	StepFailed
	StepWarning
	StepSkipped
)

var stepStatusNames = []string{"pending", "running", "passed", "failed", "warning", "skipped"}

// String returns the string representation of a step status.
func (s StepStatus) String() string {
	if s < 0 || int(s) >= len(stepStatusNames) {
		return "unknown"
	}
	return stepStatusNames[s]
}

// SuiteResult represents the complete result of validation suite execution.
type SuiteResult struct {
	Steps       []ValidationStep
	TotalSteps  int
	PassedSteps int
	FailedSteps int
	Warnings    int
	Skipped     int
	Duration    time.Duration
	Success     bool
}

// ValidationSuite runs the configuration and catalog checks in order with
// progress output.
type ValidationSuite struct {
	output       io.Writer
	config       *core.Config
	envPath      string
	envRequired  bool
	sizes        *presets.SizeCatalog
	qualities    *presets.QualityCatalog
	models       *presets.ModelPresetCatalog
	showProgress bool
	failFast     bool
}

// NewValidationSuite creates a suite for config with the built-in preset
// catalogs.
func NewValidationSuite(config *core.Config) *ValidationSuite {
	return &ValidationSuite{
		output:       os.Stdout,
		config:       config,
		envPath:      core.DefaultEnvFile,
		sizes:        presets.Sizes(),
		qualities:    presets.Qualities(),
		models:       presets.Models(),
		showProgress: true,
	}
}

// WithOutput sets the output writer for progress messages.
func (s *ValidationSuite) WithOutput(w io.Writer) *ValidationSuite {
	s.output = w
	return s
}

// WithShowProgress enables or disables progress output.
func (s *ValidationSuite) WithShowProgress(show bool) *ValidationSuite {
	s.showProgress = show
	return s
}

// WithFailFast stops validation on first failure if enabled.
func (s *ValidationSuite) WithFailFast(failFast bool) *ValidationSuite {
	s.failFast = failFast
	return s
}

// WithEnvPath sets a custom path for the .env file. When required is true a
// missing file fails the suite instead of warning.
func (s *ValidationSuite) WithEnvPath(path string, required bool) *ValidationSuite {
	s.envPath = path
	s.envRequired = required
	return s
}

// WithPresets replaces the preset catalogs under test. Nil arguments keep
// the current catalog.
func (s *ValidationSuite) WithPresets(sizes *presets.SizeCatalog, qualities *presets.QualityCatalog, models *presets.ModelPresetCatalog) *ValidationSuite {
	if sizes != nil {
		s.sizes = sizes
	}
	if qualities != nil {
		s.qualities = qualities
	}
	if models != nil {
		s.models = models
	}
	return s
}

type check struct {
	name string
	fn   func() CheckResult
}

// quickChecks need no database and no catalog.
func (s *ValidationSuite) quickChecks() []check {
	return []check{
		{"Environment File", func() CheckResult { return CheckEnvFile(s.envPath, s.envRequired) }},
		{"Sizing Strategy", func() CheckResult { return CheckSizingStrategy(s.config.SizingStrategy) }},
		{"Size Presets", func() CheckResult { return CheckSizePresets(s.sizes) }},
		{"Quality Presets", func() CheckResult { return CheckQualityPresets(s.qualities) }},
		{"Layout Templates", func() CheckResult { return CheckLayoutTemplates(s.config.LayoutTemplatesPath) }},
	}
}

// Validate runs every check in sequence with progress output. The catalog
// checks run against the stored catalog when CATALOG_DB_PATH holds one and
// against the built-in catalog otherwise; they are skipped when the
// database check fails.
func (s *ValidationSuite) Validate(ctx context.Context) SuiteResult {
	startTime := time.Now()

	if s.showProgress {
		s.printHeader("Panel Config Validation")
	}

	steps, stopped := s.runChecks(s.quickChecks())
	if stopped {
		return s.finish(steps, startTime)
	}

	var catalog *modelcatalog.Catalog
	step := s.runStep("Catalog Database", func() CheckResult {
		result, stored := CheckCatalogDatabase(ctx, s.config.CatalogDBPath)
		catalog = stored
		return result
	})
	steps = append(steps, step)
	if s.failFast && step.Status == StepFailed {
		return s.finish(steps, startTime)
	}

	if step.Status == StepFailed {
		for _, name := range []string{"Model Catalog", "Composition Presets"} {
			steps = append(steps, s.skipStep(name, "Skipped due to catalog database errors"))
		}
		return s.finish(steps, startTime)
	}
	if catalog == nil {
		catalog = modelcatalog.Builtin()
	}

	more, _ := s.runChecks([]check{
		{"Model Catalog", func() CheckResult { return CheckModelCatalog(catalog, s.models, s.config.DefaultModel) }},
		{"Composition Presets", func() CheckResult { return CheckCompositionPresets(catalog, s.config.DefaultModel) }},
	})
	return s.finish(append(steps, more...), startTime)
}

// ValidateQuick runs only the checks that touch neither the catalog
// database nor the composer.
func (s *ValidationSuite) ValidateQuick() SuiteResult {
	startTime := time.Now()

	if s.showProgress {
		s.printHeader("Quick Configuration Check")
	}

	steps, _ := s.runChecks(s.quickChecks())
	return s.finish(steps, startTime)
}

// runChecks runs checks in order. stopped reports a fail-fast stop.
func (s *ValidationSuite) runChecks(checks []check) (steps []ValidationStep, stopped bool) {
	for _, c := range checks {
		step := s.runStep(c.name, c.fn)
		steps = append(steps, step)
		if s.failFast && step.Status == StepFailed {
			return steps, true
		}
	}
	return steps, false
}

func (s *ValidationSuite) finish(steps []ValidationStep, startTime time.Time) SuiteResult {
	result := s.buildResult(steps, startTime)
	if s.showProgress {
		s.printSummary(result)
	}
	return result
}

// runStep executes a validation step with timing and progress output.
func (s *ValidationSuite) runStep(name string, fn func() CheckResult) ValidationStep {
	step := ValidationStep{Name: name, Status: StepRunning}

	if s.showProgress {
		s.printStepStart(name)
	}

	startTime := time.Now()
	result := fn()
	step.Latency = time.Since(startTime)
	step.Status = result.Status
	step.Message = result.Message
	step.Error = result.Error

	if s.showProgress {
		s.printStep(step)
	}

	return step
}

func (s *ValidationSuite) skipStep(name, message string) ValidationStep {
	step := ValidationStep{Name: name, Status: StepSkipped, Message: message}
	if s.showProgress {
		s.printStep(step)
	}
	return step
}

// buildResult creates a SuiteResult from completed steps.
func (s *ValidationSuite) buildResult(steps []ValidationStep, startTime time.Time) SuiteResult {
	result := SuiteResult{
		Steps:      steps,
		TotalSteps: len(steps),
		Duration:   time.Since(startTime),
		Success:    true,
	}

	for _, step := range steps {
		switch step.Status {
		case StepPassed:
			result.PassedSteps++
		case StepFailed:
			result.FailedSteps++
			result.Success = false
		case StepWarning:
			result.Warnings++
		case StepSkipped:
			result.Skipped++
		}
	}

	return result
}

// printHeader prints a validation header.
func (s *ValidationSuite) printHeader(title string) {
	fmt.Fprintln(s.output)
	headerColor := color.New(color.FgCyan, color.Bold)
	headerColor.Fprintf(s.output, "━━━ %s ━━━\n", title)
	fmt.Fprintln(s.output)
}

// printStepStart prints the step name before execution (for real-time feedback).
func (s *ValidationSuite) printStepStart(name string) {
	fmt.Fprintf(s.output, "  ◌ %s...", name)
}

// printStep prints a completed validation step with status indicator.
func (s *ValidationSuite) printStep(step ValidationStep) {
	var icon string
	var clr *color.Color

	switch step.Status {
	case StepPassed:
		icon = "✓"
		clr = color.New(color.FgGreen)
	case StepFailed:
		icon = "✗"
		clr = color.New(color.FgRed)
	case StepWarning:
		icon = "!"
		clr = color.New(color.FgYellow)
	case StepSkipped:
		icon = "○"
		clr = color.New(color.FgHiBlack)
	default:
		icon = "?"
		clr = color.New(color.FgWhite)
	}

	// Clear the "running" line and print result
	fmt.Fprintf(s.output, "\r")
	clr.Fprintf(s.output, "  %s %s", icon, step.Name)

	// Add message if present
	if step.Message != "" {
		dim := color.New(color.FgHiBlack)
		dim.Fprintf(s.output, " - %s", step.Message)
	}

	fmt.Fprintln(s.output)

	// Print error details for failed steps
	if step.Status == StepFailed && step.Error != nil {
		errColor := color.New(color.FgRed)
		errColor.Fprintf(s.output, "    └─ %s\n", step.Error.Error())
	}
}

// printSummary prints the validation summary.
func (s *ValidationSuite) printSummary(result SuiteResult) {
	fmt.Fprintln(s.output)

	if result.Success {
		successColor := color.New(color.FgGreen, color.Bold)
		successColor.Fprintf(s.output, "━━━ Validation Passed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d/%d checks passed, %d warnings in %v)",
			result.PassedSteps, result.TotalSteps, result.Warnings, result.Duration.Round(time.Millisecond))
		successColor.Fprintln(s.output, " ━━━")
	} else {
		failColor := color.New(color.FgRed, color.Bold)
		failColor.Fprintf(s.output, "━━━ Validation Failed ")
		color.New(color.FgHiBlack).Fprintf(s.output, "(%d passed, %d failed)",
			result.PassedSteps, result.FailedSteps)
		failColor.Fprintln(s.output, " ━━━")
	}

	fmt.Fprintln(s.output)
}

// GetErrors returns all errors from failed steps.
func (r SuiteResult) GetErrors() []error {
	errors := make([]error, 0)
	for _, step := range r.Steps {
		if step.Error != nil {
			errors = append(errors, step.Error)
		}
	}
	return errors
}

// GetFirstError returns the first error from failed steps, or nil if all passed.
func (r SuiteResult) GetFirstError() error {
	for _, step := range r.Steps {
		if step.Error != nil {
			return step.Error
		}
	}
	return nil
}

// Summary returns a human-readable summary string.
func (r SuiteResult) Summary() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Validation %s: ", map[bool]string{true: "Passed", false: "Failed"}[r.Success]))
	sb.WriteString(fmt.Sprintf("%d/%d checks passed", r.PassedSteps, r.TotalSteps))
	if r.FailedSteps > 0 {
		sb.WriteString(fmt.Sprintf(", %d failed", r.FailedSteps))
	}
	if r.Warnings > 0 {
		sb.WriteString(fmt.Sprintf(", %d warnings", r.Warnings))
	}
	if r.Skipped > 0 {
		sb.WriteString(fmt.Sprintf(", %d skipped", r.Skipped))
	}
	sb.WriteString(fmt.Sprintf(" (took %v)", r.Duration.Round(time.Millisecond)))
	return sb.String()
}
