package genconfig

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap/zapcore"

	"comic_backend/modelcatalog"
	"comic_backend/presets"
	"comic_backend/sizing"
)

// Override limits.
const (
	MaxDimension = 8192
	MaxSteps     = 150
	MaxCFG       = 30.0
)

// ErrInvalidOverride is returned when an explicit override is structurally
// invalid. It is the only error Resolve produces.
var ErrInvalidOverride = errors.New("genconfig: invalid override")

// Field names a resolved parameter.
type Field string

const (
	FieldWidth       Field = "width"
	FieldHeight      Field = "height"
	FieldSteps       Field = "steps"
	FieldCFG         Field = "cfg"
	FieldSampler     Field = "sampler"
	FieldScheduler   Field = "scheduler"
	FieldModel       Field = "model"
	FieldModelFamily Field = "model_family"
)

// AllFields lists every field that carries a source, in output order.
var AllFields = []Field{
	FieldWidth, FieldHeight, FieldSteps, FieldCFG,
	FieldSampler, FieldScheduler, FieldModel, FieldModelFamily,
}

// Source names the layer a field's value came from.
type Source string

const (
	SourceModelDefault  Source = "model-default"
	SourceModelPreset   Source = "model-preset"
	SourceSizePreset    Source = "size-preset"
	SourceQualityPreset Source = "quality-preset"
	SourceSlot          Source = "slot"
	SourceOverride      Source = "override"
)

// SlotRef points at a slot of a page layout template.
type SlotRef struct {
	TemplateID string `json:"template_id" yaml:"template_id"`
	SlotID     string `json:"slot_id" yaml:"slot_id"`
	// PageSize optionally re-projects the slot onto another page format.
	PageSize string `json:"page_size,omitempty" yaml:"page_size,omitempty"`
}

func (s SlotRef) String() string { return s.TemplateID + "/" + s.SlotID }

// Overrides are explicit per-field values that always win. Nil fields are
// not overridden.
type Overrides struct {
	Width     *int                      `json:"width,omitempty"`
	Height    *int                      `json:"height,omitempty"`
	Steps     *int                      `json:"steps,omitempty"`
	CFG       *float64                  `json:"cfg,omitempty"`
	Sampler   *string                   `json:"sampler,omitempty"`
	Scheduler *string                   `json:"scheduler,omitempty"`
	Model     *string                   `json:"model,omitempty"`
	Family    *modelcatalog.ModelFamily `json:"family,omitempty"`
}

// validated holds overrides after parsing.
type validated struct {
	Overrides
	sampler   presets.Sampler
	scheduler presets.Scheduler
}

// validate checks every set field and reports all violations at once.
func (o *Overrides) validate() (validated, error) {
	v := validated{}
	if o == nil {
		return v, nil
	}
	v.Overrides = *o

	var errs []error
	checkInt := func(name string, p *int, max int) {
		if p != nil && (*p <= 0 || *p > max) {
			errs = append(errs, fmt.Errorf("%w: %s must be in 1..%d, got %d", ErrInvalidOverride, name, max, *p))
		}
	}
	checkInt("width", o.Width, MaxDimension)
	checkInt("height", o.Height, MaxDimension)
	checkInt("steps", o.Steps, MaxSteps)

	if o.CFG != nil && (math.IsNaN(*o.CFG) || *o.CFG <= 0 || *o.CFG > MaxCFG) {
		errs = append(errs, fmt.Errorf("%w: cfg must be in (0, %g], got %g", ErrInvalidOverride, MaxCFG, *o.CFG))
	}
	if o.Sampler != nil {
		s, err := presets.ParseSampler(*o.Sampler)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidOverride, err))
		}
		v.sampler = s
	}
	if o.Scheduler != nil {
		s, err := presets.ParseScheduler(*o.Scheduler)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidOverride, err))
		}
		v.scheduler = s
	}
	if o.Model != nil && *o.Model == "" {
		errs = append(errs, fmt.Errorf("%w: model must not be empty", ErrInvalidOverride))
	}
	if o.Family != nil && o.Family.String() == "unknown" {
		errs = append(errs, fmt.Errorf("%w: unknown model family %d", ErrInvalidOverride, int(*o.Family)))
	}
	return v, errors.Join(errs...)
}

// ResolveOptions is the input of Engine.Resolve. Every field is optional.
type ResolveOptions struct {
	SizePreset    string
	QualityPreset string
	ModelPreset   string
	Slot          *SlotRef
	Overrides     *Overrides
	// Strategy, when set, is used for this call instead of the engine's
	// active strategy.
	Strategy sizing.Strategy
}

// ResolvedConfig is the fully determined parameter set for one generation
// request, with the source of every field.
type ResolvedConfig struct {
	Width       int                      `json:"width"`
	Height      int                      `json:"height"`
	Steps       int                      `json:"steps"`
	CFG         float64                  `json:"cfg"`
	Sampler     presets.Sampler          `json:"sampler"`
	Scheduler   presets.Scheduler        `json:"scheduler"`
	Model       string                   `json:"model"`
	ModelFamily modelcatalog.ModelFamily `json:"model_family"`

	// Ids of the presets that were applied; empty when none was.
	SizePreset    string `json:"size_preset,omitempty"`
	QualityPreset string `json:"quality_preset"`
	ModelPreset   string `json:"model_preset,omitempty"`
	Strategy      string `json:"strategy"`

	Sources map[Field]Source `json:"sources"`
}

// Source returns the layer that set f.
func (c ResolvedConfig) Source(f Field) Source { return c.Sources[f] }

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (c ResolvedConfig) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("width", c.Width)
	enc.AddInt("height", c.Height)
	enc.AddInt("steps", c.Steps)
	enc.AddFloat64("cfg", c.CFG)
	enc.AddString("sampler", c.Sampler.String())
	enc.AddString("scheduler", c.Scheduler.String())
	enc.AddString("model", c.Model)
	enc.AddString("model_family", c.ModelFamily.String())
	enc.AddString("strategy", c.Strategy)
	return enc.AddObject("sources", zapcore.ObjectMarshalerFunc(func(e zapcore.ObjectEncoder) error {
		for _, f := range AllFields {
			e.AddString(string(f), string(c.Sources[f]))
		}
		return nil
	}))
}
