// Package composer validates a set of conditioning inputs and assembles them
// with a resolved configuration and adapter stack into one request for the
// generation backend.
//
// The backend enforces a single condition per request. The first condition
// is primary; the others add accuracy hints to the prompt. Between one and
// MaxConditions conditions are accepted.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"comic_backend/genconfig"
	"comic_backend/logging"
	"comic_backend/modelcatalog"
)

// MaxConditions is the most conditions the backend accepts at once.
const MaxConditions = 5

var (
	ErrNoConditions      = errors.New("composer: at least one condition required")
	ErrTooManyConditions = errors.New("composer: maximum 5 conditions")
	ErrUnknownPreset     = errors.New("composer: unknown preset")
	ErrInvalidStrength   = errors.New("composer: invalid condition strength")
	ErrMissingImage      = errors.New("composer: condition image required")
	ErrMissingModel      = errors.New("composer: resolved config has no model")

	ErrImageCountMismatch    = errors.New("composer: image count does not match preset")
	ErrAutoDetectUnsupported = errors.New("composer: automatic detection not supported for this category")
	ErrNoGenerator           = errors.New("composer: no generator configured")
)

// Composer builds ComposedRequests. It holds no mutable state and is safe
// for concurrent use.
type Composer struct {
	catalog   *modelcatalog.Catalog
	supported []modelcatalog.ConditionType
	generator Generator
	newID     func() string
	logger    *logging.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithCatalog sets the catalog conditioners and trigger words come from.
func WithCatalog(c *modelcatalog.Catalog) Option {
	return func(cp *Composer) { cp.catalog = c }
}

// WithSupportedTypes sets the condition types the backend accepts.
func WithSupportedTypes(types ...modelcatalog.ConditionType) Option {
	return func(cp *Composer) {
		if len(types) > 0 {
			cp.supported = types
		}
	}
}

// WithGenerator sets the backend client used by Generate.
func WithGenerator(g Generator) Option {
	return func(cp *Composer) { cp.generator = g }
}

// WithIDFunc replaces the request id source.
func WithIDFunc(f func() string) Option {
	return func(cp *Composer) {
		if f != nil {
			cp.newID = f
		}
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(cp *Composer) {
		if l != nil {
			cp.logger = l
		}
	}
}

// New returns a composer backed by the built-in catalog unless configured
// otherwise.
func New(opts ...Option) *Composer {
	c := &Composer{
		supported: DefaultSupportedTypes,
		newID:     uuid.NewString,
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.catalog == nil {
		c.catalog = modelcatalog.Builtin()
	}
	return c
}

// ValidateConditions checks the condition count, every strength and every
// image. It returns the warnings for strengths outside their recommended
// range.
func ValidateConditions(conditions []Condition) ([]string, error) {
	switch n := len(conditions); {
	case n == 0:
		return nil, ErrNoConditions
	case n > MaxConditions:
		return nil, fmt.Errorf("%w, got %d", ErrTooManyConditions, n)
	}

	var warnings []string
	for i, c := range conditions {
		if strings.TrimSpace(c.SourceImage) == "" {
			return nil, fmt.Errorf("condition %d: %w", i, ErrMissingImage)
		}
		w, err := ValidateStrength(c.Type, c.EffectiveStrength())
		if err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		if w != "" {
			warnings = append(warnings, w)
		}
	}
	return warnings, nil
}

// Compose validates req and assembles the backend request.
func (c *Composer) Compose(req Request) (ComposedRequest, error) {
	warnings, err := ValidateConditions(req.Conditions)
	if err != nil {
		return ComposedRequest{}, err
	}

	cfg := req.Config
	if strings.TrimSpace(cfg.Model) == "" {
		return ComposedRequest{}, ErrMissingModel
	}
	warnings = append(warnings, c.adapterWarnings(cfg, req.Adapters)...)

	out := ComposedRequest{
		ID:             c.newID(),
		NegativePrompt: strings.TrimSpace(req.NegativePrompt),
		Width:          cfg.Width,
		Height:         cfg.Height,
		Steps:          cfg.Steps,
		CFG:            cfg.CFG,
		Sampler:        cfg.Sampler.String(),
		Scheduler:      cfg.Scheduler.String(),
		Model:          cfg.Model,
		Adapters: lo.Map(req.Adapters, func(e modelcatalog.StackEntry, _ int) AdapterRef {
			return AdapterRef{Name: e.Adapter.Filename, Strength: e.Strength}
		}),
		Conditions: make([]ComposedCondition, 0, len(req.Conditions)),
	}

	for _, cond := range req.Conditions {
		cc := ComposedCondition{Image: cond.SourceImage, Strength: cond.EffectiveStrength()}
		t, substituted := supportedType(cond.Type, c.supported)
		cc.Type = t
		if substituted {
			cc.Requested = lo.ToPtr(cond.Type)
			warnings = append(warnings, fmt.Sprintf("%s conditions are not supported by the backend, using %s", cond.Type, t))
		}
		if e, ok := c.catalog.ConditionerFor(cfg.ModelFamily, t); ok {
			cc.Conditioner = e.Filename
		} else {
			warnings = append(warnings, fmt.Sprintf("no %s conditioner for %s models", t, cfg.ModelFamily))
		}
		out.Conditions = append(out.Conditions, cc)
	}

	out.Influence = CalculateTotalInfluence(req.Conditions)
	if out.Influence.Warning != "" {
		warnings = append(warnings, out.Influence.Warning)
	}
	out.Warnings = warnings
	out.Prompt = c.buildPrompt(req)

	c.logger.Debug("request composed", zap.Object("request", out), zap.Strings("warnings", warnings))
	return out, nil
}

// adapterWarnings names every adapter the catalog does not list as usable
// with the config's model family.
func (c *Composer) adapterWarnings(cfg genconfig.ResolvedConfig, stack modelcatalog.ResolvedAdapterStack) []string {
	if len(stack) == 0 {
		return nil
	}
	compatible := lo.SliceToMap(c.catalog.CompatibleAdapters(cfg.Model, &cfg.ModelFamily), func(a modelcatalog.AdapterEntry) (string, struct{}) {
		return a.Filename, struct{}{}
	})
	var out []string
	for _, e := range stack {
		if _, ok := compatible[e.Adapter.Filename]; !ok {
			out = append(out, fmt.Sprintf("adapter %s is not compatible with %s models", e.Adapter.Filename, cfg.ModelFamily))
		}
	}
	return out
}

// buildPrompt appends adapter trigger words and the accuracy hints of the
// secondary conditions to the caller's prompt.
func (c *Composer) buildPrompt(req Request) string {
	parts := []string{strings.TrimSpace(req.Prompt)}
	parts = append(parts, c.catalog.ExtractTriggerWords(req.Adapters.Names())...)
	for _, cond := range req.Conditions[1:] {
		parts = append(parts, AccuracyHint(cond.Type))
	}
	parts = lo.Uniq(lo.Compact(parts))
	return strings.Join(parts, ", ")
}

// ComposePreset expands a composition preset with images and composes it.
// Conditions already on req are replaced.
func (c *Composer) ComposePreset(presetID string, images []string, req Request) (ComposedRequest, error) {
	p, ok := GetPreset(presetID)
	if !ok {
		return ComposedRequest{}, fmt.Errorf("%w: %s", ErrUnknownPreset, presetID)
	}
	conds, err := p.Conditions(images...)
	if err != nil {
		return ComposedRequest{}, err
	}
	req.Conditions = conds
	return c.Compose(req)
}

// Generate composes req and hands it to the generator.
func (c *Composer) Generate(ctx context.Context, req Request) (Result, error) {
	composed, err := c.Compose(req)
	if err != nil {
		return Result{}, err
	}
	return c.dispatch(ctx, composed)
}

// GenerateWithPreset composes a preset and hands it to the generator.
func (c *Composer) GenerateWithPreset(ctx context.Context, presetID string, images []string, req Request) (Result, error) {
	composed, err := c.ComposePreset(presetID, images, req)
	if err != nil {
		return Result{}, err
	}
	return c.dispatch(ctx, composed)
}

func (c *Composer) dispatch(ctx context.Context, req ComposedRequest) (Result, error) {
	if c.generator == nil {
		return Result{}, ErrNoGenerator
	}
	log := c.logger.With(zap.String("request_id", req.ID))
	log.Info("dispatching generation request",
		zap.String("model", req.Model),
		zap.Int("conditions", len(req.Conditions)),
		zap.Float64("influence", req.Influence.Total))

	res, err := c.generator.Generate(ctx, req)
	if err != nil {
		log.Warn("generation failed", zap.Error(err))
		return Result{}, fmt.Errorf("generate %s: %w", req.ID, err)
	}
	if res.RequestID == "" {
		res.RequestID = req.ID
	}
	log.Info("generation finished", zap.Int("images", len(res.Images)))
	return res, nil
}
