// Package presets provides the named size, quality and model parameter
// bundles that generation requests are assembled from.
//
// Catalogs are built once and are read-only afterwards. Lookups that miss
// return ok == false rather than an error; callers fall back to defaults.
package presets

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"comic_backend/modelcatalog"
)

// DefaultTolerance is the relative aspect-ratio error FindClosest accepts
// when the caller does not pass one.
const DefaultTolerance = 0.05

// MaxAspectError is the largest relative difference allowed between a
// preset's nominal aspect ratio and the ratio of its pixel dimensions.
const MaxAspectError = 0.15

var (
	// ErrInvalidPreset is returned when a preset row breaks a catalog invariant.
	ErrInvalidPreset = errors.New("presets: invalid preset")

	// ErrDuplicatePreset is returned when two presets share an id.
	ErrDuplicatePreset = errors.New("presets: duplicate preset id")
)

// Dimensions is a width/height pair in pixels.
type Dimensions struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Area returns Width*Height.
func (d Dimensions) Area() int { return d.Width * d.Height }

// AspectRatio returns Width/Height, or 0 for a zero height.
func (d Dimensions) AspectRatio() float64 {
	if d.Height == 0 {
		return 0
	}
	return float64(d.Width) / float64(d.Height)
}

// SizePreset is a named aspect ratio with per-family pixel dimensions.
type SizePreset struct {
	ID            string                                  `json:"id"`
	Name          string                                  `json:"name"`
	AspectRatio   float64                                 `json:"aspect_ratio"`
	Dimensions    map[modelcatalog.ModelFamily]Dimensions `json:"dimensions"`
	SuggestedUses []string                                `json:"suggested_uses,omitempty"`
}

// DimensionsFor returns the dimensions for a family. SDXL derivatives read
// the sdxl row.
func (p SizePreset) DimensionsFor(f modelcatalog.ModelFamily) (Dimensions, bool) {
	if d, ok := p.Dimensions[f]; ok {
		return d, true
	}
	d, ok := p.Dimensions[f.ResolutionClass()]
	return d, ok
}

// SizeCategory is a coarse aspect-ratio bucket used for grouping.
type SizeCategory int

const (
	SizeSquare SizeCategory = iota
	SizePortrait
	SizeLandscape
	SizeComic
	SizeSocial
	SizeManga
)

var sizeCategoryNames = []string{"square", "portrait", "landscape", "comic", "social", "manga"}

func (c SizeCategory) String() string {
	if int(c) < 0 || int(c) >= len(sizeCategoryNames) {
		return "unknown"
	}
	return sizeCategoryNames[c]
}

// ParseSizeCategory converts a bucket name to a SizeCategory.
func ParseSizeCategory(s string) (SizeCategory, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range sizeCategoryNames {
		if n == name {
			return SizeCategory(i), nil
		}
	}
	return SizeSquare, fmt.Errorf("unknown size category: %s", s)
}

func (c SizeCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// ListSizeCategories returns every bucket in declaration order.
func ListSizeCategories() []SizeCategory {
	out := make([]SizeCategory, len(sizeCategoryNames))
	for i := range sizeCategoryNames {
		out[i] = SizeCategory(i)
	}
	return out
}

// CategoryForRatio buckets an aspect ratio (width/height). The ranges are
// contiguous so every positive ratio lands in exactly one bucket.
//
//	r < 0.60          portrait
//	0.60 <= r < 0.70  manga
//	0.70 <= r < 0.78  comic
//	0.78 <= r < 0.95  social
//	0.95 <= r <= 1.05 square
//	r > 1.05          landscape
func CategoryForRatio(r float64) SizeCategory {
	switch {
	case r < 0.60:
		return SizePortrait
	case r < 0.70:
		return SizeManga
	case r < 0.78:
		return SizeComic
	case r < 0.95:
		return SizeSocial
	case r <= 1.05:
		return SizeSquare
	default:
		return SizeLandscape
	}
}

// resolutionClasses lists the families every size preset declares
// dimensions for, with the pixel-area band each must stay within.
var resolutionClasses = []struct {
	family modelcatalog.ModelFamily
	band   [2]int
}{
	{modelcatalog.FamilySDXL, [2]int{400_000, 1_600_000}},
	{modelcatalog.FamilyFlux, [2]int{400_000, 1_600_000}},
	{modelcatalog.FamilySD15, [2]int{200_000, 600_000}},
}

// SizeCatalog is an immutable, ordered set of size presets.
type SizeCatalog struct {
	presets []SizePreset
	index   map[string]int
}

// NewSizeCatalog validates the presets and builds a catalog preserving their
// declaration order.
func NewSizeCatalog(presets []SizePreset) (*SizeCatalog, error) {
	c := &SizeCatalog{
		presets: slices.Clone(presets),
		index:   make(map[string]int, len(presets)),
	}
	for i, p := range c.presets {
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePreset, p.ID)
		}
		c.index[p.ID] = i
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns the preset with the given id.
func (c *SizeCatalog) Get(id string) (SizePreset, bool) {
	i, ok := c.index[id]
	if !ok {
		return SizePreset{}, false
	}
	return c.presets[i], true
}

// List returns all presets in declaration order.
func (c *SizeCatalog) List() []SizePreset {
	return slices.Clone(c.presets)
}

// FindClosest returns the preset whose aspect ratio has the smallest relative
// error |ratio-p|/p, considering only presets within tolerance. Ties go to
// the earlier preset. A non-positive ratio never matches.
func (c *SizeCatalog) FindClosest(ratio, tolerance float64) (SizePreset, bool) {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return SizePreset{}, false
	}
	best := -1
	bestErr := math.Inf(1)
	for i, p := range c.presets {
		e := math.Abs(ratio-p.AspectRatio) / p.AspectRatio
		if e > tolerance {
			continue
		}
		if e < bestErr {
			best, bestErr = i, e
		}
	}
	if best < 0 {
		return SizePreset{}, false
	}
	return c.presets[best], true
}

// FindForUseCase returns presets whose suggested uses contain tag as a
// case-insensitive substring, in declaration order.
func (c *SizeCatalog) FindForUseCase(tag string) []SizePreset {
	needle := strings.ToLower(strings.TrimSpace(tag))
	if needle == "" {
		return nil
	}
	var out []SizePreset
	for _, p := range c.presets {
		for _, use := range p.SuggestedUses {
			if strings.Contains(strings.ToLower(use), needle) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// GroupByCategory partitions the presets by CategoryForRatio. Every bucket
// is present in the result, possibly empty.
func (c *SizeCatalog) GroupByCategory() map[SizeCategory][]SizePreset {
	groups := make(map[SizeCategory][]SizePreset, len(sizeCategoryNames))
	for _, cat := range ListSizeCategories() {
		groups[cat] = []SizePreset{}
	}
	for _, p := range c.presets {
		cat := CategoryForRatio(p.AspectRatio)
		groups[cat] = append(groups[cat], p)
	}
	return groups
}

// Validate checks every preset: positive ratio, dimensions present for each
// resolution class, aspect error under MaxAspectError, grid alignment and the
// pixel-area band.
func (c *SizeCatalog) Validate() error {
	var errs []error
	for _, p := range c.presets {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("%w: empty id", ErrInvalidPreset))
			continue
		}
		if p.AspectRatio <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s has non-positive aspect ratio", ErrInvalidPreset, p.ID))
			continue
		}
		for _, rc := range resolutionClasses {
			d, ok := p.Dimensions[rc.family]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s has no %s dimensions", ErrInvalidPreset, p.ID, rc.family))
				continue
			}
			if err := checkDimensions(p, rc.family, d, rc.band); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func checkDimensions(p SizePreset, class modelcatalog.ModelFamily, d Dimensions, band [2]int) error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: %s/%s has non-positive dimensions", ErrInvalidPreset, p.ID, class)
	}
	if e := math.Abs(d.AspectRatio()-p.AspectRatio) / p.AspectRatio; e >= MaxAspectError {
		return fmt.Errorf("%w: %s/%s aspect error %.3f", ErrInvalidPreset, p.ID, class, e)
	}
	grid := class.GridSize()
	if d.Width%grid != 0 || d.Height%grid != 0 {
		return fmt.Errorf("%w: %s/%s %dx%d not a multiple of %d", ErrInvalidPreset, p.ID, class, d.Width, d.Height, grid)
	}
	if a := d.Area(); a < band[0] || a > band[1] {
		return fmt.Errorf("%w: %s/%s area %d outside %d-%d", ErrInvalidPreset, p.ID, class, a, band[0], band[1])
	}
	return nil
}
