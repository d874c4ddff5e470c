package composer

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"comic_backend/modelcatalog"
)

// PresetLayer is one condition slot of a composition preset.
type PresetLayer struct {
	Type     modelcatalog.ConditionType `json:"type"`
	Strength float64                    `json:"strength"`
}

// Preset is a named composition pattern.
type Preset struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Layers      []PresetLayer `json:"layers"`
}

var builtinPresets = []Preset{
	{
		ID: "pose-transfer", Name: "Pose Transfer",
		Description: "Copy a character pose from a reference image",
		Layers:      []PresetLayer{{modelcatalog.ConditionPose, 1.0}},
	},
	{
		ID: "pose-depth", Name: "Pose + Depth",
		Description: "Pose with scene depth for characters interacting with the set",
		Layers:      []PresetLayer{{modelcatalog.ConditionPose, 0.8}, {modelcatalog.ConditionDepth, 0.5}},
	},
	{
		ID: "lineart-color", Name: "Lineart Coloring",
		Description: "Color finished inks while keeping every line",
		Layers:      []PresetLayer{{modelcatalog.ConditionLineart, 0.9}},
	},
	{
		ID: "sketch-to-panel", Name: "Sketch to Panel",
		Description: "Turn a thumbnail sketch into a rendered panel",
		Layers:      []PresetLayer{{modelcatalog.ConditionScribble, 0.7}, {modelcatalog.ConditionDepth, 0.4}},
	},
	{
		ID: "style-pose", Name: "Style + Pose",
		Description: "Pose from one image, look from another",
		Layers:      []PresetLayer{{modelcatalog.ConditionPose, 0.8}, {modelcatalog.ConditionReference, 0.6}},
	},
	{
		ID: "scene-reconstruction", Name: "Scene Reconstruction",
		Description: "Rebuild a scene from depth, edges and region layout",
		Layers: []PresetLayer{
			{modelcatalog.ConditionDepth, 0.6},
			{modelcatalog.ConditionCanny, 0.5},
			{modelcatalog.ConditionSegmentation, 0.4},
		},
	},
}

var presetIndex = lo.SliceToMap(builtinPresets, func(p Preset) (string, Preset) { return p.ID, p })

// ListPresets returns the composition presets in declaration order.
func ListPresets() []Preset {
	return lo.Map(builtinPresets, func(p Preset, _ int) Preset {
		p.Layers = slices.Clone(p.Layers)
		return p
	})
}

// GetPreset looks a preset up by id.
func GetPreset(id string) (Preset, bool) {
	p, ok := presetIndex[id]
	if !ok {
		return Preset{}, false
	}
	p.Layers = slices.Clone(p.Layers)
	return p, true
}

// Conditions expands the preset with source images. One image feeds every
// layer; otherwise there must be exactly one image per layer.
func (p Preset) Conditions(images ...string) ([]Condition, error) {
	switch len(images) {
	case 1, len(p.Layers):
	default:
		return nil, fmt.Errorf("%w: preset %s takes 1 or %d images, got %d",
			ErrImageCountMismatch, p.ID, len(p.Layers), len(images))
	}
	conds := make([]Condition, len(p.Layers))
	for i, l := range p.Layers {
		img := images[0]
		if len(images) > 1 {
			img = images[i]
		}
		conds[i] = Condition{Type: l.Type, SourceImage: img, Strength: lo.ToPtr(l.Strength)}
	}
	return conds, nil
}
