package presets

import (
	"fmt"
	"slices"

	"comic_backend/modelcatalog"
)

// ModelPreset is a named checkpoint choice.
type ModelPreset struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Checkpoint  string                   `json:"checkpoint"`
	Family      modelcatalog.ModelFamily `json:"family"`
	Description string                   `json:"description,omitempty"`
}

// ModelPresetCatalog holds model presets in declaration order.
type ModelPresetCatalog struct {
	presets []ModelPreset
	index   map[string]int
}

// NewModelPresetCatalog builds a catalog, rejecting duplicate ids and
// presets without a checkpoint.
func NewModelPresetCatalog(presets []ModelPreset) (*ModelPresetCatalog, error) {
	c := &ModelPresetCatalog{presets: slices.Clone(presets), index: make(map[string]int, len(presets))}
	for i, p := range c.presets {
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePreset, p.ID)
		}
		if p.Checkpoint == "" {
			return nil, fmt.Errorf("%w: model %s has no checkpoint", ErrInvalidPreset, p.ID)
		}
		c.index[p.ID] = i
	}
	return c, nil
}

// Get returns the preset with the given id.
func (c *ModelPresetCatalog) Get(id string) (ModelPreset, bool) {
	i, ok := c.index[id]
	if !ok {
		return ModelPreset{}, false
	}
	return c.presets[i], true
}

// List returns all presets in declaration order.
func (c *ModelPresetCatalog) List() []ModelPreset {
	return slices.Clone(c.presets)
}
