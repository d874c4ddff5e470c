package composer

import (
	"context"

	"go.uber.org/zap/zapcore"

	"comic_backend/genconfig"
	"comic_backend/logging"
	"comic_backend/modelcatalog"
)

// Condition is one auxiliary conditioning input.
type Condition struct {
	Type        modelcatalog.ConditionType `json:"type"`
	SourceImage string                     `json:"image"`
	// Strength defaults to DefaultStrength when nil.
	Strength *float64 `json:"strength,omitempty"`
}

// EffectiveStrength returns the strength the condition is applied with.
func (c Condition) EffectiveStrength() float64 {
	if c.Strength == nil {
		return DefaultStrength
	}
	return *c.Strength
}

// Request is the input of Compose: the resolved generation parameters, the
// adapter stack and the conditions to apply. Config must come from a resolve
// call: a zero Config names no model and its ModelFamily reads as sd15, so
// Compose rejects it.
type Request struct {
	Prompt         string
	NegativePrompt string
	Conditions     []Condition
	Config         genconfig.ResolvedConfig
	Adapters       modelcatalog.ResolvedAdapterStack
}

// AdapterRef is one adapter of the outgoing request.
type AdapterRef struct {
	Name     string  `json:"name"`
	Strength float64 `json:"strength"`
}

// ComposedCondition is a validated condition as forwarded to the backend.
type ComposedCondition struct {
	Type     modelcatalog.ConditionType `json:"type"`
	Image    string                     `json:"image"`
	Strength float64                    `json:"strength"`
	// Conditioner is the model file chosen for Type; empty when the catalog
	// has none for the model family.
	Conditioner string `json:"conditioner,omitempty"`
	// Requested is set when Type is a substitute for an unsupported type.
	Requested *modelcatalog.ConditionType `json:"requested_type,omitempty"`
}

// Influence is the combined strength of a condition set.
type Influence struct {
	Total float64 `json:"total"`
	// Warning is empty when the total is in the safe range.
	Warning string `json:"warning,omitempty"`
}

// ComposedRequest is the generation-ready bundle. Conditions[0] is the
// primary condition; the others only contribute prompt hints on backends
// that accept a single condition.
type ComposedRequest struct {
	ID             string              `json:"id"`
	Prompt         string              `json:"prompt"`
	NegativePrompt string              `json:"negative_prompt,omitempty"`
	Width          int                 `json:"width"`
	Height         int                 `json:"height"`
	Steps          int                 `json:"steps"`
	CFG            float64             `json:"cfg"`
	Sampler        string              `json:"sampler"`
	Scheduler      string              `json:"scheduler"`
	Model          string              `json:"model"`
	Adapters       []AdapterRef        `json:"adapters"`
	Conditions     []ComposedCondition `json:"conditions"`
	Influence      Influence           `json:"influence"`
	Warnings       []string            `json:"warnings,omitempty"`
}

// Primary returns the condition the backend enforces.
func (r ComposedRequest) Primary() ComposedCondition { return r.Conditions[0] }

// MarshalLogObject implements zapcore.ObjectMarshaler. Image payloads are
// truncated.
func (r ComposedRequest) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("id", r.ID)
	enc.AddString("model", r.Model)
	enc.AddInt("width", r.Width)
	enc.AddInt("height", r.Height)
	enc.AddInt("steps", r.Steps)
	enc.AddFloat64("influence", r.Influence.Total)
	if err := enc.AddArray("adapters", zapcore.ArrayMarshalerFunc(func(arr zapcore.ArrayEncoder) error {
		for _, a := range r.Adapters {
			arr.AppendString(a.Name)
		}
		return nil
	})); err != nil {
		return err
	}
	return enc.AddArray("conditions", zapcore.ArrayMarshalerFunc(func(arr zapcore.ArrayEncoder) error {
		for _, c := range r.Conditions {
			if err := arr.AppendObject(zapcore.ObjectMarshalerFunc(func(e zapcore.ObjectEncoder) error {
				e.AddString("type", c.Type.String())
				e.AddString("image", logging.TruncatePayload(c.Image))
				e.AddFloat64("strength", c.Strength)
				e.AddString("conditioner", c.Conditioner)
				return nil
			})); err != nil {
				return err
			}
		}
		return nil
	}))
}

// Result is what the generation backend returns for a composed request.
type Result struct {
	RequestID string   `json:"request_id"`
	Images    []string `json:"images"`
}

// Generator is the boundary to the external generation client.
type Generator interface {
	Generate(ctx context.Context, req ComposedRequest) (Result, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req ComposedRequest) (Result, error)

func (f GeneratorFunc) Generate(ctx context.Context, req ComposedRequest) (Result, error) {
	return f(ctx, req)
}
