// Package genconfig resolves generation parameters from presets, page-layout
// slots and explicit overrides into a single configuration that records
// where every field came from.
//
// Layers apply from lowest to highest precedence, each replacing whole
// fields:
//
//	model default  ->  model preset  ->  size preset  ->  quality preset
//	               ->  slot (slot-aware strategy only)  ->  overrides
//
// Unknown preset and slot ids are skipped (debug-logged). Structurally
// invalid overrides fail with ErrInvalidOverride.
package genconfig

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"comic_backend/layout"
	"comic_backend/logging"
	"comic_backend/modelcatalog"
	"comic_backend/presets"
	"comic_backend/sizing"
)

// Engine resolves configurations. It is safe for concurrent use; the only
// mutable state is the active strategy.
type Engine struct {
	mu       sync.RWMutex
	strategy sizing.Strategy

	slotAware   sizing.Strategy
	contextFree sizing.Strategy

	sizes     *presets.SizeCatalog
	qualities *presets.QualityCatalog
	models    *presets.ModelPresetCatalog
	catalog   *modelcatalog.Catalog
	layout    layout.GeometryProvider
	panels    PanelLocator

	defaultModel string
	logger       *logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithCatalog sets the compatibility catalog used for family detection.
func WithCatalog(c *modelcatalog.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

// WithSizePresets replaces the built-in size presets.
func WithSizePresets(c *presets.SizeCatalog) Option {
	return func(e *Engine) { e.sizes = c }
}

// WithQualityPresets replaces the built-in quality presets.
func WithQualityPresets(c *presets.QualityCatalog) Option {
	return func(e *Engine) { e.qualities = c }
}

// WithModelPresets replaces the built-in model presets.
func WithModelPresets(c *presets.ModelPresetCatalog) Option {
	return func(e *Engine) { e.models = c }
}

// WithLayout sets the page geometry provider.
func WithLayout(p layout.GeometryProvider) Option {
	return func(e *Engine) { e.layout = p }
}

// WithDefaultModel sets the checkpoint used when nothing selects one.
func WithDefaultModel(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.defaultModel = name
		}
	}
}

// WithPanelLocator sets the collaborator ConfigForPanel consults.
func WithPanelLocator(p PanelLocator) Option {
	return func(e *Engine) { e.panels = p }
}

// WithStrategy sets the initial active strategy. The default is slot-aware.
func WithStrategy(s sizing.Strategy) Option {
	return func(e *Engine) { e.strategy = s }
}

// New builds an independent engine. Unset collaborators default to the
// built-in catalogs and layout registry.
func New(opts ...Option) *Engine {
	e := &Engine{
		defaultModel: modelcatalog.DefaultCheckpoint,
		logger:       logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sizes == nil {
		e.sizes = presets.Sizes()
	}
	if e.qualities == nil {
		e.qualities = presets.Qualities()
	}
	if e.models == nil {
		e.models = presets.Models()
	}
	if e.catalog == nil {
		e.catalog = modelcatalog.Builtin()
	}
	if e.layout == nil {
		e.layout = layout.NewRegistry()
	}
	e.slotAware = sizing.NewSlotAware(e.layout, e.qualities)
	e.contextFree = sizing.NewContextFree(e.layout, e.qualities)
	if e.strategy == nil {
		e.strategy = e.slotAware
	}
	return e
}

// Strategy returns the active strategy.
func (e *Engine) Strategy() sizing.Strategy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.strategy
}

// SetStrategy replaces the active strategy. Nil restores the default.
func (e *Engine) SetStrategy(s sizing.Strategy) {
	if s == nil {
		s = e.slotAware
	}
	e.mu.Lock()
	e.strategy = s
	e.mu.Unlock()
}

// UseDefaultStrategy restores the slot-aware strategy.
func (e *Engine) UseDefaultStrategy() { e.SetStrategy(nil) }

// UseSlotAwareStrategy activates the slot-aware strategy.
func (e *Engine) UseSlotAwareStrategy() { e.SetStrategy(e.slotAware) }

// UseContextFreeStrategy activates the context-free strategy.
func (e *Engine) UseContextFreeStrategy() { e.SetStrategy(e.contextFree) }

// CalculateOptimalSize always uses the slot-aware strategy, whatever the
// active strategy is.
func (e *Engine) CalculateOptimalSize(aspectRatio float64, family modelcatalog.ModelFamily, quality string) presets.Dimensions {
	return e.slotAware.CalculateOptimalSize(aspectRatio, family, quality)
}

// DimensionsForSlot always uses the slot-aware strategy, whatever the active
// strategy is.
func (e *Engine) DimensionsForSlot(templateID, slotID string, opts sizing.Options) (sizing.SlotDimensions, error) {
	return e.slotAware.DimensionsForSlot(templateID, slotID, opts)
}

// ConfigWithPresets resolves from a size and a quality preset.
func (e *Engine) ConfigWithPresets(sizeID, qualityID string, overrides *Overrides) (ResolvedConfig, error) {
	return e.Resolve(ResolveOptions{SizePreset: sizeID, QualityPreset: qualityID, Overrides: overrides})
}

// ConfigForSlot resolves for a layout slot.
func (e *Engine) ConfigForSlot(slot SlotRef, qualityID string, overrides *Overrides) (ResolvedConfig, error) {
	return e.Resolve(ResolveOptions{Slot: &slot, QualityPreset: qualityID, Overrides: overrides})
}

// ConfigForPanel resolves for a stored panel. The panel's slot and presets
// come from the PanelLocator; a missing locator or unknown panel resolves
// with overrides only.
func (e *Engine) ConfigForPanel(ctx context.Context, panelID string, overrides *Overrides) (ResolvedConfig, error) {
	opts := ResolveOptions{Overrides: overrides}
	if e.panels == nil {
		e.logger.Debug("no panel locator configured", zap.String("panel_id", panelID))
		return e.Resolve(opts)
	}

	pc, err := e.panels.LocatePanel(ctx, panelID)
	switch {
	case errors.Is(err, ErrPanelNotFound):
		e.logger.Debug("panel not found, resolving without layout", zap.String("panel_id", panelID))
	case err != nil:
		return ResolvedConfig{}, fmt.Errorf("locate panel %s: %w", panelID, err)
	default:
		opts.Slot = pc.Slot
		opts.SizePreset = pc.SizePreset
		opts.QualityPreset = pc.QualityPreset
		opts.ModelPreset = pc.ModelPreset
	}
	return e.Resolve(opts)
}

// Resolve merges every layer into one configuration.
func (e *Engine) Resolve(opts ResolveOptions) (ResolvedConfig, error) {
	ov, err := opts.Overrides.validate()
	if err != nil {
		return ResolvedConfig{}, err
	}

	strategy := opts.Strategy
	if strategy == nil {
		strategy = e.Strategy()
	}

	cfg := ResolvedConfig{
		Strategy: strategy.Name(),
		Sources:  make(map[Field]Source, len(AllFields)),
	}
	set := func(src Source, fields ...Field) {
		for _, f := range fields {
			cfg.Sources[f] = src
		}
	}

	// Model and family come first since sizing depends on the family.
	cfg.Model = e.defaultModel
	cfg.ModelFamily = e.catalog.DetectModelFamily(cfg.Model)
	set(SourceModelDefault, FieldModel, FieldModelFamily)

	if opts.ModelPreset != "" {
		if mp, ok := e.models.Get(opts.ModelPreset); ok {
			cfg.Model, cfg.ModelFamily, cfg.ModelPreset = mp.Checkpoint, mp.Family, mp.ID
			set(SourceModelPreset, FieldModel, FieldModelFamily)
		} else {
			e.logger.Debug("unknown model preset, using default model", zap.String("model_preset", opts.ModelPreset))
		}
	}
	if ov.Model != nil {
		cfg.Model = *ov.Model
		cfg.ModelFamily = e.catalog.DetectModelFamily(cfg.Model)
		set(SourceOverride, FieldModel, FieldModelFamily)
	}
	if ov.Family != nil {
		cfg.ModelFamily = *ov.Family
		set(SourceOverride, FieldModelFamily)
	}

	// Sampling baseline is the standard quality preset.
	quality, ok := e.qualities.Get(opts.QualityPreset)
	if !ok {
		if opts.QualityPreset != "" {
			e.logger.Debug("unknown quality preset, using standard", zap.String("quality_preset", opts.QualityPreset))
		}
		quality, _ = e.qualities.Get(presets.DefaultQuality)
		set(SourceModelDefault, FieldSteps, FieldCFG, FieldSampler, FieldScheduler)
	} else {
		set(SourceQualityPreset, FieldSteps, FieldCFG, FieldSampler, FieldScheduler)
	}
	cfg.QualityPreset = quality.ID
	cfg.Steps, cfg.CFG, cfg.Sampler, cfg.Scheduler = quality.Steps, quality.CFG, quality.Sampler, quality.Scheduler

	// Dimensions: square baseline, then size preset, then slot.
	base := strategy.CalculateOptimalSize(1.0, cfg.ModelFamily, quality.ID)
	cfg.Width, cfg.Height = base.Width, base.Height
	set(SourceModelDefault, FieldWidth, FieldHeight)

	if opts.SizePreset != "" {
		e.applySizePreset(&cfg, opts.SizePreset)
	}
	if opts.Slot != nil {
		e.applySlot(&cfg, strategy, *opts.Slot, quality.ID, opts.SizePreset == "")
	}

	if ov.Width != nil {
		cfg.Width = *ov.Width
		set(SourceOverride, FieldWidth)
	}
	if ov.Height != nil {
		cfg.Height = *ov.Height
		set(SourceOverride, FieldHeight)
	}
	if ov.Steps != nil {
		cfg.Steps = *ov.Steps
		set(SourceOverride, FieldSteps)
	}
	if ov.CFG != nil {
		cfg.CFG = *ov.CFG
		set(SourceOverride, FieldCFG)
	}
	if ov.Sampler != nil {
		cfg.Sampler = ov.sampler
		set(SourceOverride, FieldSampler)
	}
	if ov.Scheduler != nil {
		cfg.Scheduler = ov.scheduler
		set(SourceOverride, FieldScheduler)
	}

	e.logger.Debug("config resolved", zap.Object("config", cfg))
	return cfg, nil
}

func (e *Engine) applySizePreset(cfg *ResolvedConfig, id string) bool {
	p, ok := e.sizes.Get(id)
	if !ok {
		e.logger.Debug("unknown size preset, keeping default size", zap.String("size_preset", id))
		return false
	}
	d, ok := p.DimensionsFor(cfg.ModelFamily)
	if !ok {
		e.logger.Debug("size preset has no dimensions for family",
			zap.String("size_preset", id), zap.Stringer("family", cfg.ModelFamily))
		return false
	}
	cfg.Width, cfg.Height, cfg.SizePreset = d.Width, d.Height, p.ID
	cfg.Sources[FieldWidth] = SourceSizePreset
	cfg.Sources[FieldHeight] = SourceSizePreset
	return true
}

// applySlot sizes from the slot under a layout-aware strategy. Other
// strategies only use the slot's nominal ratio to pick the closest size
// preset, and only when the caller did not name one.
func (e *Engine) applySlot(cfg *ResolvedConfig, strategy sizing.Strategy, slot SlotRef, quality string, noSizePreset bool) {
	dims, err := strategy.DimensionsForSlot(slot.TemplateID, slot.SlotID, sizing.Options{
		Family:   cfg.ModelFamily,
		Quality:  quality,
		PageSize: slot.PageSize,
	})
	if err != nil {
		e.logger.Debug("slot not resolved, keeping previous size",
			zap.Stringer("slot", slot), zap.Error(err))
		return
	}

	if strategy.UsesLayout() {
		cfg.Width, cfg.Height = dims.Width, dims.Height
		cfg.Sources[FieldWidth] = SourceSlot
		cfg.Sources[FieldHeight] = SourceSlot
		return
	}
	if !noSizePreset {
		return
	}
	if p, ok := e.sizes.FindClosest(dims.AspectRatio, presets.DefaultTolerance); ok {
		e.applySizePreset(cfg, p.ID)
	}
}
