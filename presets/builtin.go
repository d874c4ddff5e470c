package presets

import (
	"sync"

	"comic_backend/modelcatalog"
)

func dims(sdxl, sd15 Dimensions) map[modelcatalog.ModelFamily]Dimensions {
	return map[modelcatalog.ModelFamily]Dimensions{
		modelcatalog.FamilySDXL: sdxl,
		modelcatalog.FamilyFlux: sdxl,
		modelcatalog.FamilySD15: sd15,
	}
}

// BuiltinSizePresets returns the shipped size presets in declaration order.
func BuiltinSizePresets() []SizePreset {
	return []SizePreset{
		{ID: "square", Name: "Square", AspectRatio: 1.0,
			Dimensions:    dims(Dimensions{1024, 1024}, Dimensions{512, 512}),
			SuggestedUses: []string{"character portrait", "profile picture", "social post"}},
		{ID: "portrait-9x16", Name: "Portrait 9:16", AspectRatio: 0.5625,
			Dimensions:    dims(Dimensions{768, 1344}, Dimensions{448, 768}),
			SuggestedUses: []string{"phone wallpaper", "story", "tall panel"}},
		{ID: "webtoon-strip", Name: "Webtoon Strip", AspectRatio: 0.5,
			Dimensions:    dims(Dimensions{704, 1408}, Dimensions{384, 768}),
			SuggestedUses: []string{"webtoon", "vertical scroll comic"}},
		{ID: "manga-page", Name: "Manga Page", AspectRatio: 0.6667,
			Dimensions:    dims(Dimensions{832, 1216}, Dimensions{512, 768}),
			SuggestedUses: []string{"manga page", "tankobon"}},
		{ID: "comic-page", Name: "Comic Page", AspectRatio: 0.7071,
			Dimensions:    dims(Dimensions{832, 1152}, Dimensions{512, 704}),
			SuggestedUses: []string{"comic page", "full page splash", "cover"}},
		{ID: "comic-panel", Name: "Comic Panel", AspectRatio: 0.75,
			Dimensions:    dims(Dimensions{896, 1152}, Dimensions{576, 768}),
			SuggestedUses: []string{"comic panel", "character portrait"}},
		{ID: "social-portrait", Name: "Social Portrait 4:5", AspectRatio: 0.8,
			Dimensions:    dims(Dimensions{896, 1088}, Dimensions{512, 640}),
			SuggestedUses: []string{"social post", "instagram"}},
		{ID: "landscape-4x3", Name: "Landscape 4:3", AspectRatio: 1.3333,
			Dimensions:    dims(Dimensions{1152, 896}, Dimensions{768, 576}),
			SuggestedUses: []string{"establishing shot", "wide panel"}},
		{ID: "landscape-3x2", Name: "Landscape 3:2", AspectRatio: 1.5,
			Dimensions:    dims(Dimensions{1216, 832}, Dimensions{768, 512}),
			SuggestedUses: []string{"photo", "scenery"}},
		{ID: "landscape-16x9", Name: "Landscape 16:9", AspectRatio: 1.7778,
			Dimensions:    dims(Dimensions{1344, 768}, Dimensions{768, 448}),
			SuggestedUses: []string{"widescreen", "desktop wallpaper", "storyboard"}},
		{ID: "cinematic-21x9", Name: "Cinematic 21:9", AspectRatio: 2.3333,
			Dimensions:    dims(Dimensions{1536, 640}, Dimensions{896, 384}),
			SuggestedUses: []string{"cinematic", "panorama", "wide panel"}},
		{ID: "comic-strip", Name: "Comic Strip", AspectRatio: 3.0,
			Dimensions:    dims(Dimensions{1728, 576}, Dimensions{960, 320}),
			SuggestedUses: []string{"newspaper strip", "comic strip", "banner"}},
	}
}

// BuiltinQualityPresets returns the shipped quality presets.
func BuiltinQualityPresets() []QualityPreset {
	return []QualityPreset{
		{ID: "draft", Name: "Draft", Steps: 12, CFG: 6.0, Sampler: SamplerEulerAncestral, Scheduler: SchedulerNormal, RelativeCost: 0.5, AreaScale: 0.75},
		{ID: "standard", Name: "Standard", Steps: 25, CFG: 7.0, Sampler: SamplerDPMPP2M, Scheduler: SchedulerKarras, RelativeCost: 1.0, AreaScale: 1.0},
		{ID: "high", Name: "High", Steps: 35, CFG: 7.0, Sampler: SamplerDPMPP2MSDE, Scheduler: SchedulerKarras, RelativeCost: 1.5, AreaScale: 1.25},
		{ID: "ultra", Name: "Ultra", Steps: 50, CFG: 7.5, Sampler: SamplerDPMPP2MSDE, Scheduler: SchedulerKarras, RelativeCost: 2.5, AreaScale: 1.5},
	}
}

// BuiltinModelPresets returns the shipped model presets.
func BuiltinModelPresets() []ModelPreset {
	return []ModelPreset{
		{ID: "anime", Name: "Anime / Manga", Checkpoint: "illustriousXL_v01.safetensors", Family: modelcatalog.FamilyIllustrious, Description: "Clean lineart and cel shading"},
		{ID: "comic", Name: "Western Comic", Checkpoint: modelcatalog.DefaultCheckpoint, Family: modelcatalog.FamilySDXL, Description: "Inked comic look with style adapters"},
		{ID: "realistic", Name: "Realistic", Checkpoint: "juggernautXL_v9.safetensors", Family: modelcatalog.FamilyRealistic, Description: "Photoreal panels"},
		{ID: "fast", Name: "Fast Draft", Checkpoint: "v1-5-pruned-emaonly.safetensors", Family: modelcatalog.FamilySD15, Description: "Quick thumbnails at 512px"},
		{ID: "flux", Name: "Flux", Checkpoint: "flux1-dev-fp8.safetensors", Family: modelcatalog.FamilyFlux, Description: "Strong prompt adherence and text rendering"},
	}
}

var (
	builtinSizes = sync.OnceValue(func() *SizeCatalog {
		c, err := NewSizeCatalog(BuiltinSizePresets())
		if err != nil {
			panic("presets: built-in size presets are invalid: " + err.Error())
		}
		return c
	})
	builtinQuality = sync.OnceValue(func() *QualityCatalog {
		c, err := NewQualityCatalog(BuiltinQualityPresets())
		if err != nil {
			panic("presets: built-in quality presets are invalid: " + err.Error())
		}
		return c
	})
	builtinModels = sync.OnceValue(func() *ModelPresetCatalog {
		c, err := NewModelPresetCatalog(BuiltinModelPresets())
		if err != nil {
			panic("presets: built-in model presets are invalid: " + err.Error())
		}
		return c
	})
)

// Sizes returns the built-in size catalog.
func Sizes() *SizeCatalog { return builtinSizes() }

// Qualities returns the built-in quality catalog.
func Qualities() *QualityCatalog { return builtinQuality() }

// Models returns the built-in model preset catalog.
func Models() *ModelPresetCatalog { return builtinModels() }

// ListSizePresets lists the built-in size presets.
func ListSizePresets() []SizePreset { return Sizes().List() }

// GetSizePreset looks up a built-in size preset.
func GetSizePreset(id string) (SizePreset, bool) { return Sizes().Get(id) }

// FindClosestPreset finds the built-in size preset nearest to ratio within
// DefaultTolerance.
func FindClosestPreset(ratio float64) (SizePreset, bool) {
	return Sizes().FindClosest(ratio, DefaultTolerance)
}

// FindClosestPresetWithin is FindClosestPreset with an explicit tolerance.
func FindClosestPresetWithin(ratio, tolerance float64) (SizePreset, bool) {
	return Sizes().FindClosest(ratio, tolerance)
}

// GetPresetsByCategory groups the built-in size presets.
func GetPresetsByCategory() map[SizeCategory][]SizePreset { return Sizes().GroupByCategory() }

// ListQualityPresets lists the built-in quality presets, cheapest first.
func ListQualityPresets() []QualityPreset { return Qualities().List() }

// GetQualityPreset looks up a built-in quality preset.
func GetQualityPreset(id string) (QualityPreset, bool) { return Qualities().Get(id) }

// ListModelPresets lists the built-in model presets.
func ListModelPresets() []ModelPreset { return Models().List() }

// GetModelPreset looks up a built-in model preset.
func GetModelPreset(id string) (ModelPreset, bool) { return Models().Get(id) }
