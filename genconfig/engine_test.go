package genconfig

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"comic_backend/logging"
	"comic_backend/modelcatalog"
	"comic_backend/presets"
	"comic_backend/sizing"
)

func sixGrid() *SlotRef { return &SlotRef{TemplateID: "six-grid", SlotID: "row1-left"} }

func TestResolve_Defaults(t *testing.T) {
	cfg, err := New().Resolve(ResolveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1024 || cfg.Height != 1024 {
		t.Errorf("size = %dx%d, want 1024x1024", cfg.Width, cfg.Height)
	}
	if cfg.Steps != 25 || cfg.CFG != 7.0 || cfg.Sampler != presets.SamplerDPMPP2M || cfg.Scheduler != presets.SchedulerKarras {
		t.Errorf("sampling = %d/%.1f/%s/%s", cfg.Steps, cfg.CFG, cfg.Sampler, cfg.Scheduler)
	}
	if cfg.Model != modelcatalog.DefaultCheckpoint || cfg.ModelFamily != modelcatalog.FamilySDXL {
		t.Errorf("model = %s (%s)", cfg.Model, cfg.ModelFamily)
	}
	for _, f := range AllFields {
		if cfg.Source(f) != SourceModelDefault {
			t.Errorf("source[%s] = %q, want model-default", f, cfg.Source(f))
		}
	}
	if cfg.Strategy != sizing.NameSlotAware {
		t.Errorf("strategy = %s", cfg.Strategy)
	}
}

func TestResolve_OverrideAlwaysWins(t *testing.T) {
	e := New()
	for _, p := range presets.ListSizePresets() {
		t.Run(p.ID, func(t *testing.T) {
			cfg, err := e.Resolve(ResolveOptions{
				SizePreset: p.ID,
				Slot:       sixGrid(),
				Overrides:  &Overrides{Width: lo.ToPtr(999)},
			})
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Width != 999 {
				t.Errorf("width = %d, want 999", cfg.Width)
			}
			if cfg.Source(FieldWidth) != SourceOverride {
				t.Errorf("source[width] = %s", cfg.Source(FieldWidth))
			}
			if cfg.Source(FieldHeight) == SourceOverride {
				t.Error("height should not be sourced from override")
			}
		})
	}
}

func TestResolve_Layers(t *testing.T) {
	tests := []struct {
		name        string
		opts        ResolveOptions
		wantW       int
		wantH       int
		wantSteps   int
		wantSources map[Field]Source
	}{
		{
			name:      "size preset",
			opts:      ResolveOptions{SizePreset: "landscape-16x9"},
			wantW:     1344,
			wantH:     768,
			wantSteps: 25,
			wantSources: map[Field]Source{
				FieldWidth: SourceSizePreset, FieldHeight: SourceSizePreset, FieldSteps: SourceModelDefault,
			},
		},
		{
			name:      "quality preset scales baseline",
			opts:      ResolveOptions{QualityPreset: "high"},
			wantW:     1152,
			wantH:     1152,
			wantSteps: 35,
			wantSources: map[Field]Source{
				FieldWidth: SourceModelDefault, FieldSteps: SourceQualityPreset, FieldSampler: SourceQualityPreset,
			},
		},
		{
			name:      "slot beats size preset",
			opts:      ResolveOptions{SizePreset: "square", Slot: sixGrid()},
			wantW:     1088,
			wantH:     1024,
			wantSteps: 25,
			wantSources: map[Field]Source{
				FieldWidth: SourceSlot, FieldHeight: SourceSlot,
			},
		},
		{
			name:      "slot with draft quality",
			opts:      ResolveOptions{QualityPreset: "draft", Slot: &SlotRef{TemplateID: "six-grid", SlotID: "row2-left"}},
			wantW:     896,
			wantH:     832,
			wantSteps: 12,
			wantSources: map[Field]Source{
				FieldWidth: SourceSlot, FieldSteps: SourceQualityPreset,
			},
		},
		{
			name:      "slot page size",
			opts:      ResolveOptions{Slot: &SlotRef{TemplateID: "single", SlotID: "full", PageSize: "square"}},
			wantW:     1024,
			wantH:     1024,
			wantSteps: 25,
			wantSources: map[Field]Source{
				FieldWidth: SourceSlot,
			},
		},
		{
			name:      "model preset picks family dimensions",
			opts:      ResolveOptions{ModelPreset: "fast", SizePreset: "comic-page"},
			wantW:     512,
			wantH:     704,
			wantSteps: 25,
			wantSources: map[Field]Source{
				FieldModel: SourceModelPreset, FieldModelFamily: SourceModelPreset, FieldWidth: SourceSizePreset,
			},
		},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := e.Resolve(tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Width != tt.wantW || cfg.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", cfg.Width, cfg.Height, tt.wantW, tt.wantH)
			}
			if cfg.Steps != tt.wantSteps {
				t.Errorf("steps = %d, want %d", cfg.Steps, tt.wantSteps)
			}
			for f, want := range tt.wantSources {
				if got := cfg.Source(f); got != want {
					t.Errorf("source[%s] = %s, want %s", f, got, want)
				}
			}
			if len(cfg.Sources) != len(AllFields) {
				t.Errorf("sources has %d entries, want %d", len(cfg.Sources), len(AllFields))
			}
		})
	}
}

func TestResolve_SlotScenarioPerStrategy(t *testing.T) {
	e := New()
	cfg, err := e.Resolve(ResolveOptions{Slot: sixGrid()})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source(FieldWidth) != SourceSlot {
		t.Errorf("slot-aware: source[width] = %s, want slot", cfg.Source(FieldWidth))
	}

	e.UseContextFreeStrategy()
	cfg, err = e.Resolve(ResolveOptions{Slot: sixGrid()})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source(FieldWidth) == SourceSlot {
		t.Error("context-free: width must not come from the slot")
	}
	if cfg.Strategy != sizing.NameContextFree {
		t.Errorf("strategy = %s", cfg.Strategy)
	}
}

func TestResolve_ContextFreePicksClosestPreset(t *testing.T) {
	e := New(WithStrategy(sizing.NewContextFree(nil, nil)))
	cfg, err := e.Resolve(ResolveOptions{Slot: &SlotRef{TemplateID: "single", SlotID: "full"}})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SizePreset != "comic-page" || cfg.Source(FieldWidth) != SourceSizePreset {
		t.Errorf("got preset %q source %s", cfg.SizePreset, cfg.Source(FieldWidth))
	}
	if cfg.Width != 832 || cfg.Height != 1152 {
		t.Errorf("size = %dx%d", cfg.Width, cfg.Height)
	}

	// an explicit size preset is kept
	cfg, _ = e.Resolve(ResolveOptions{SizePreset: "square", Slot: &SlotRef{TemplateID: "single", SlotID: "full"}})
	if cfg.SizePreset != "square" {
		t.Errorf("explicit preset replaced by %q", cfg.SizePreset)
	}
}

func TestResolve_PerCallStrategy(t *testing.T) {
	e := New()
	cfg, err := e.Resolve(ResolveOptions{Slot: sixGrid(), Strategy: sizing.NewContextFree(nil, nil)})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source(FieldWidth) == SourceSlot {
		t.Error("per-call context-free strategy ignored")
	}
	if e.Strategy().Name() != sizing.NameSlotAware {
		t.Error("per-call strategy mutated the engine")
	}
}

func TestResolve_UnknownIdsFallBack(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := New(WithLogger(logging.Wrap(zap.New(core))))

	cfg, err := e.Resolve(ResolveOptions{
		SizePreset:    "poster-99",
		QualityPreset: "cinema",
		ModelPreset:   "ghibli",
		Slot:          &SlotRef{TemplateID: "six-grid", SlotID: "row9-left"},
	})
	if err != nil {
		t.Fatalf("unknown ids must not fail: %v", err)
	}
	if cfg.Steps != 25 || cfg.QualityPreset != presets.DefaultQuality {
		t.Errorf("quality fallback = %s/%d", cfg.QualityPreset, cfg.Steps)
	}
	for _, f := range AllFields {
		if cfg.Source(f) != SourceModelDefault {
			t.Errorf("source[%s] = %s", f, cfg.Source(f))
		}
	}
	if n := logs.FilterLevelExact(zapcore.DebugLevel).FilterMessageSnippet("unknown").Len(); n != 3 {
		t.Errorf("expected 3 unknown-id debug entries, got %d", n)
	}
	if logs.FilterMessage("slot not resolved, keeping previous size").Len() != 1 {
		t.Error("expected slot fallback to be logged")
	}
}

func TestResolve_InvalidOverrides(t *testing.T) {
	tests := []struct {
		name string
		ov   Overrides
	}{
		{"zero width", Overrides{Width: lo.ToPtr(0)}},
		{"negative height", Overrides{Height: lo.ToPtr(-64)}},
		{"huge width", Overrides{Width: lo.ToPtr(MaxDimension + 1)}},
		{"zero steps", Overrides{Steps: lo.ToPtr(0)}},
		{"too many steps", Overrides{Steps: lo.ToPtr(151)}},
		{"zero cfg", Overrides{CFG: lo.ToPtr(0.0)}},
		{"cfg above range", Overrides{CFG: lo.ToPtr(30.5)}},
		{"unknown sampler", Overrides{Sampler: lo.ToPtr("lms")}},
		{"unknown scheduler", Overrides{Scheduler: lo.ToPtr("beta")}},
		{"empty model", Overrides{Model: lo.ToPtr("")}},
		{"bad family", Overrides{Family: lo.ToPtr(modelcatalog.ModelFamily(42))}},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Resolve(ResolveOptions{SizePreset: "square", Overrides: &tt.ov})
			if !errors.Is(err, ErrInvalidOverride) {
				t.Errorf("expected ErrInvalidOverride, got %v", err)
			}
		})
	}
}

func TestResolve_ValidOverrides(t *testing.T) {
	cfg, err := New().Resolve(ResolveOptions{
		QualityPreset: "draft",
		Overrides: &Overrides{
			Steps:     lo.ToPtr(40),
			CFG:       lo.ToPtr(30.0),
			Sampler:   lo.ToPtr("euler"),
			Scheduler: lo.ToPtr("exponential"),
			Model:     lo.ToPtr("flux1-dev-fp8.safetensors"),
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := map[Field]Source{
		FieldSteps: SourceOverride, FieldCFG: SourceOverride, FieldSampler: SourceOverride,
		FieldScheduler: SourceOverride, FieldModel: SourceOverride, FieldModelFamily: SourceOverride,
		FieldWidth: SourceModelDefault, FieldHeight: SourceModelDefault,
	}
	if diff := cmp.Diff(want, cfg.Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
	if cfg.ModelFamily != modelcatalog.FamilyFlux || cfg.Sampler != presets.SamplerEuler || cfg.Scheduler != presets.SchedulerExponential {
		t.Errorf("unexpected values: %+v", cfg)
	}
}

func TestResolve_FamilyOverrideDrivesSizing(t *testing.T) {
	cfg, err := New().Resolve(ResolveOptions{
		SizePreset: "comic-page",
		Overrides:  &Overrides{Family: lo.ToPtr(modelcatalog.FamilySD15)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 512 || cfg.Height != 704 {
		t.Errorf("size = %dx%d, want sd15 row 512x704", cfg.Width, cfg.Height)
	}
	if cfg.Source(FieldModel) != SourceModelDefault || cfg.Source(FieldModelFamily) != SourceOverride {
		t.Errorf("sources = %v", cfg.Sources)
	}
}

func TestStrategyControl(t *testing.T) {
	e := New()
	if e.Strategy().Name() != sizing.NameSlotAware {
		t.Fatalf("default strategy = %s", e.Strategy().Name())
	}
	e.UseContextFreeStrategy()
	if e.Strategy().Name() != sizing.NameContextFree {
		t.Error("UseContextFreeStrategy did not switch")
	}
	e.UseDefaultStrategy()
	if e.Strategy().Name() != sizing.NameSlotAware {
		t.Error("UseDefaultStrategy did not restore slot-aware")
	}
	e.SetStrategy(sizing.NewContextFree(nil, nil))
	e.UseSlotAwareStrategy()
	if e.Strategy().Name() != sizing.NameSlotAware {
		t.Error("UseSlotAwareStrategy did not switch")
	}
	e.SetStrategy(nil)
	if e.Strategy().Name() != sizing.NameSlotAware {
		t.Error("SetStrategy(nil) should restore the default")
	}
}

func TestConvenienceCallsAlwaysSlotAware(t *testing.T) {
	e := New()
	opts := sizing.Options{Family: modelcatalog.FamilySDXL}
	before, err := e.DimensionsForSlot("manga-dynamic", "top-wide", opts)
	if err != nil {
		t.Fatal(err)
	}

	e.UseContextFreeStrategy()
	after, err := e.DimensionsForSlot("manga-dynamic", "top-wide", opts)
	if err != nil {
		t.Fatal(err)
	}
	if before != after || after.Width != 1664 || after.Height != 832 {
		t.Errorf("convenience lookup changed with strategy: %+v vs %+v", before, after)
	}

	if d := e.CalculateOptimalSize(1.0, modelcatalog.FamilySDXL, "standard"); d.Width != 1024 || d.Height != 1024 {
		t.Errorf("CalculateOptimalSize = %dx%d", d.Width, d.Height)
	}
	if _, err := e.DimensionsForSlot("six-grid", "nope", opts); !errors.Is(err, sizing.ErrUnknownSlot) {
		t.Errorf("expected ErrUnknownSlot, got %v", err)
	}
}

func TestConvenienceWrappers(t *testing.T) {
	e := New()
	a, err := e.ConfigWithPresets("landscape-4x3", "ultra", nil)
	if err != nil {
		t.Fatal(err)
	}
	if a.Width != 1152 || a.Steps != 50 || a.SizePreset != "landscape-4x3" {
		t.Errorf("ConfigWithPresets = %+v", a)
	}

	b, err := e.ConfigForSlot(*sixGrid(), "high", &Overrides{Steps: lo.ToPtr(30)})
	if err != nil {
		t.Fatal(err)
	}
	if b.Source(FieldWidth) != SourceSlot || b.Steps != 30 {
		t.Errorf("ConfigForSlot = %+v", b)
	}
}

func TestConfigForPanel(t *testing.T) {
	panels := StaticPanels{
		"p1": {Slot: &SlotRef{TemplateID: "six-grid", SlotID: "row2-left"}, QualityPreset: "draft"},
		"p2": {SizePreset: "webtoon-strip", ModelPreset: "anime"},
	}
	e := New(WithPanelLocator(panels))
	ctx := context.Background()

	cfg, err := e.ConfigForPanel(ctx, "p1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Source(FieldWidth) != SourceSlot || cfg.Steps != 12 {
		t.Errorf("p1 = %+v", cfg)
	}

	cfg, err = e.ConfigForPanel(ctx, "p2", &Overrides{Height: lo.ToPtr(1500)})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 704 || cfg.Height != 1500 || cfg.ModelFamily != modelcatalog.FamilyIllustrious {
		t.Errorf("p2 = %+v", cfg)
	}

	cfg, err = e.ConfigForPanel(ctx, "missing", nil)
	if err != nil {
		t.Fatalf("unknown panel must fall back: %v", err)
	}
	if cfg.Source(FieldWidth) != SourceModelDefault {
		t.Errorf("missing panel source = %s", cfg.Source(FieldWidth))
	}

	boom := errors.New("store offline")
	failing := New(WithPanelLocator(PanelLocatorFunc(func(context.Context, string) (PanelContext, error) {
		return PanelContext{}, boom
	})))
	if _, err := failing.ConfigForPanel(ctx, "p1", nil); !errors.Is(err, boom) {
		t.Errorf("expected store error, got %v", err)
	}

	if _, err := New().ConfigForPanel(ctx, "p1", nil); err != nil {
		t.Errorf("engine without locator: %v", err)
	}
}

func TestLoadStaticPanels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panels.yaml")
	content := `
p1:
  slot: {template_id: six-grid, slot_id: row2-left}
  quality_preset: draft
p2:
  size_preset: webtoon-strip
  model_preset: anime
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	panels, err := LoadStaticPanels(path)
	if err != nil {
		t.Fatal(err)
	}
	want := StaticPanels{
		"p1": {Slot: &SlotRef{TemplateID: "six-grid", SlotID: "row2-left"}, QualityPreset: "draft"},
		"p2": {SizePreset: "webtoon-strip", ModelPreset: "anime"},
	}
	if diff := cmp.Diff(want, panels); diff != "" {
		t.Errorf("LoadStaticPanels() mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadStaticPanels(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("p1: [\n"), 0o644)
	if _, err := LoadStaticPanels(bad); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestDefaultHolder(t *testing.T) {
	ResetDefault()
	t.Cleanup(ResetDefault)

	a := Default()
	if Default() != a {
		t.Error("Default() is not stable")
	}
	a.UseContextFreeStrategy()

	ResetDefault()
	b := Default()
	if b == a {
		t.Error("ResetDefault did not drop the engine")
	}
	if b.Strategy().Name() != sizing.NameSlotAware {
		t.Error("fresh default engine should be slot-aware")
	}

	custom := New(WithDefaultModel("flux1-dev-fp8.safetensors"))
	SetDefault(custom)
	if Default() != custom {
		t.Error("SetDefault not honoured")
	}
}

func TestEngine_ConcurrentResolveAndSwap(t *testing.T) {
	e := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := e.Resolve(ResolveOptions{Slot: sixGrid(), QualityPreset: "high"}); err != nil {
					t.Error(err)
				}
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if j%2 == 0 {
					e.UseContextFreeStrategy()
				} else {
					e.UseDefaultStrategy()
				}
			}
		}()
	}
	wg.Wait()
}
