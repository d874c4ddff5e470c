// Package sizing maps an aspect ratio, a model family and optionally a page
// layout slot to pixel dimensions.
//
// Two strategies implement the same contract. The slot-aware strategy
// projects a slot onto the requested page size and scales the pixel budget by
// the slot's share of the page; the context-free strategy only looks at the
// slot's nominal aspect ratio. Both return grid-aligned, positive dimensions
// whose area never shrinks as the target quality rises.
package sizing

import (
	"errors"
	"fmt"
	"math"

	"comic_backend/layout"
	"comic_backend/modelcatalog"
	"comic_backend/presets"
)

const (
	NameSlotAware   = "slot-aware"
	NameContextFree = "context-free"
)

const (
	minSlotScale = 0.75
	maxSlotScale = 1.5
)

var (
	// ErrUnknownSlot is returned when a template/slot pair does not resolve.
	ErrUnknownSlot = errors.New("sizing: unknown slot")

	// ErrUnknownStrategy is returned by ByName for an unrecognised name.
	ErrUnknownStrategy = errors.New("sizing: unknown strategy")
)

// Options tune a slot lookup.
type Options struct {
	Family modelcatalog.ModelFamily
	// Quality is a quality preset id; empty means standard.
	Quality string
	// PageSize is a page size id; empty means the template's own page.
	PageSize string
}

// SlotDimensions is the result of sizing a slot.
type SlotDimensions struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
}

// Strategy computes output dimensions.
type Strategy interface {
	Name() string
	// UsesLayout reports whether slot geometry beyond the nominal ratio
	// affects the result.
	UsesLayout() bool
	CalculateOptimalSize(aspectRatio float64, family modelcatalog.ModelFamily, quality string) presets.Dimensions
	DimensionsForSlot(templateID, slotID string, opts Options) (SlotDimensions, error)
}

// ByName builds the strategy registered under name.
func ByName(name string, provider layout.GeometryProvider, qualities *presets.QualityCatalog) (Strategy, error) {
	switch name {
	case NameSlotAware, "":
		return NewSlotAware(provider, qualities), nil
	case NameContextFree:
		return NewContextFree(provider, qualities), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}
}

type base struct {
	provider  layout.GeometryProvider
	qualities *presets.QualityCatalog
}

func newBase(provider layout.GeometryProvider, qualities *presets.QualityCatalog) base {
	if provider == nil {
		provider = layout.NewRegistry()
	}
	if qualities == nil {
		qualities = presets.Qualities()
	}
	return base{provider: provider, qualities: qualities}
}

func (b base) CalculateOptimalSize(aspectRatio float64, family modelcatalog.ModelFamily, quality string) presets.Dimensions {
	area := float64(family.BaseArea()) * b.qualities.AreaScale(quality)
	return FitArea(aspectRatio, area, family.GridSize())
}

func (b base) geometry(templateID, slotID string) (layout.SlotGeometry, error) {
	g, ok := b.provider.SlotGeometry(templateID, slotID)
	if !ok {
		return layout.SlotGeometry{}, fmt.Errorf("%w: %s/%s", ErrUnknownSlot, templateID, slotID)
	}
	return g, nil
}

// ContextFreeStrategy sizes a slot from its nominal aspect ratio only.
type ContextFreeStrategy struct{ base }

// NewContextFree returns a context-free strategy. Nil arguments select the
// built-in layout registry and quality catalog.
func NewContextFree(provider layout.GeometryProvider, qualities *presets.QualityCatalog) *ContextFreeStrategy {
	return &ContextFreeStrategy{newBase(provider, qualities)}
}

func (*ContextFreeStrategy) Name() string     { return NameContextFree }
func (*ContextFreeStrategy) UsesLayout() bool { return false }

// DimensionsForSlot ignores area weight and page size.
func (s *ContextFreeStrategy) DimensionsForSlot(templateID, slotID string, opts Options) (SlotDimensions, error) {
	g, err := s.geometry(templateID, slotID)
	if err != nil {
		return SlotDimensions{}, err
	}
	d := s.CalculateOptimalSize(g.AspectRatio, opts.Family, opts.Quality)
	return SlotDimensions{Width: d.Width, Height: d.Height, AspectRatio: g.AspectRatio}, nil
}

// SlotAwareStrategy projects the slot onto the page and scales the pixel
// budget by the slot's share of the page.
type SlotAwareStrategy struct{ base }

// NewSlotAware returns a slot-aware strategy. Nil arguments select the
// built-in layout registry and quality catalog.
func NewSlotAware(provider layout.GeometryProvider, qualities *presets.QualityCatalog) *SlotAwareStrategy {
	return &SlotAwareStrategy{newBase(provider, qualities)}
}

func (*SlotAwareStrategy) Name() string     { return NameSlotAware }
func (*SlotAwareStrategy) UsesLayout() bool { return true }

// DimensionsForSlot resolves the slot, re-projects it onto opts.PageSize
// (unknown page sizes fall back to the template's page) and scales the pixel
// budget by clamp(weight*slotCount, 0.75, 1.5).
func (s *SlotAwareStrategy) DimensionsForSlot(templateID, slotID string, opts Options) (SlotDimensions, error) {
	g, err := s.geometry(templateID, slotID)
	if err != nil {
		return SlotDimensions{}, err
	}

	pageAspect := g.PageAspect
	if opts.PageSize != "" {
		if p, ok := s.provider.PageSize(opts.PageSize); ok {
			pageAspect = p.AspectRatio
		}
	}
	ratio := g.AspectOn(pageAspect)

	slotScale := clamp(g.AreaWeight*float64(g.SlotCount), minSlotScale, maxSlotScale)
	area := float64(opts.Family.BaseArea()) * s.qualities.AreaScale(opts.Quality) * slotScale
	d := FitArea(ratio, area, opts.Family.GridSize())
	return SlotDimensions{Width: d.Width, Height: d.Height, AspectRatio: ratio}, nil
}

// FitArea returns grid-aligned dimensions close to the given aspect ratio
// whose area approximates area. The shorter side is rounded to the nearest
// grid multiple (at least one grid cell) and the longer side is derived from
// it, which keeps the ratio error within half a grid cell of the long side.
// Non-positive or non-finite ratios are treated as square.
//
// This is a pure function.
func FitArea(aspectRatio, area float64, grid int) presets.Dimensions {
	if grid <= 0 {
		grid = 8
	}
	if aspectRatio <= 0 || math.IsNaN(aspectRatio) || math.IsInf(aspectRatio, 0) {
		aspectRatio = 1
	}
	if area <= 0 || math.IsNaN(area) {
		area = float64(grid * grid)
	}

	r := aspectRatio
	if r < 1 {
		r = 1 / r
	}
	g := float64(grid)
	short := math.Max(math.Round(math.Sqrt(area/r)/g), 1) * g
	long := math.Max(math.Round(short*r/g), 1) * g

	if aspectRatio >= 1 {
		return presets.Dimensions{Width: int(long), Height: int(short)}
	}
	return presets.Dimensions{Width: int(short), Height: int(long)}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
