package genconfig

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrPanelNotFound is returned by a PanelLocator for an unknown panel id.
var ErrPanelNotFound = errors.New("genconfig: panel not found")

// PanelContext is what the project store knows about a panel's layout and
// the presets chosen for it.
type PanelContext struct {
	Slot          *SlotRef `yaml:"slot,omitempty"`
	SizePreset    string   `yaml:"size_preset,omitempty"`
	QualityPreset string   `yaml:"quality_preset,omitempty"`
	ModelPreset   string   `yaml:"model_preset,omitempty"`
}

// PanelLocator looks up a stored panel. Implementations live with the
// project store.
type PanelLocator interface {
	LocatePanel(ctx context.Context, panelID string) (PanelContext, error)
}

// PanelLocatorFunc adapts a function to PanelLocator.
type PanelLocatorFunc func(ctx context.Context, panelID string) (PanelContext, error)

func (f PanelLocatorFunc) LocatePanel(ctx context.Context, panelID string) (PanelContext, error) {
	return f(ctx, panelID)
}

// StaticPanels is an in-memory PanelLocator keyed by panel id.
type StaticPanels map[string]PanelContext

func (s StaticPanels) LocatePanel(_ context.Context, panelID string) (PanelContext, error) {
	pc, ok := s[panelID]
	if !ok {
		return PanelContext{}, ErrPanelNotFound
	}
	return pc, nil
}

// LoadStaticPanels reads a YAML map of panel id to PanelContext:
//
//	p1:
//	  slot: {template_id: six-grid, slot_id: row1-left}
//	  quality_preset: high
//	p2:
//	  size_preset: webtoon-strip
//	  model_preset: anime
func LoadStaticPanels(path string) (StaticPanels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read panels: %w", err)
	}
	panels := StaticPanels{}
	if err := yaml.Unmarshal(data, &panels); err != nil {
		return nil, fmt.Errorf("decode panels %s: %w", path, err)
	}
	return panels, nil
}
