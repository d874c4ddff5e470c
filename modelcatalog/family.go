// Package modelcatalog holds the read-only reference tables describing which
// base checkpoints, adapters (LoRAs) and conditioners (ControlNets) exist and
// which of them can be combined.
//
// The tables are loaded once at process start (built-in rows, optionally
// replaced by rows from the catalog database) and never mutated afterwards.
// Every query in this package is a pure function over those tables.
package modelcatalog

import (
	"fmt"
	"strings"
)

// ModelFamily identifies the architecture lineage of a checkpoint.
type ModelFamily int

const (
	// FamilySD15 is Stable Diffusion 1.5 and its fine-tunes.
	FamilySD15 ModelFamily = iota
	// FamilySDXL is plain Stable Diffusion XL.
	FamilySDXL
	// FamilyIllustrious is the Illustrious/NoobAI SDXL derivative.
	FamilyIllustrious
	// FamilyPony is the Pony Diffusion SDXL derivative.
	FamilyPony
	// FamilyFlux is the Flux.1 family.
	FamilyFlux
	// FamilyRealistic covers photoreal SDXL fine-tunes (RealVis, Juggernaut).
	FamilyRealistic
)

// DefaultFamily is assumed when a checkpoint name gives no hint.
const DefaultFamily = FamilySDXL

var familyNames = []string{
	"sd15",
	"sdxl",
	"illustrious",
	"pony",
	"flux",
	"realistic",
}

// String returns the wire name of the family.
func (f ModelFamily) String() string {
	if int(f) < 0 || int(f) >= len(familyNames) {
		return "unknown"
	}
	return familyNames[f]
}

// ParseModelFamily converts a wire name to a ModelFamily.
func ParseModelFamily(s string) (ModelFamily, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range familyNames {
		if n == name {
			return ModelFamily(i), nil
		}
	}
	return DefaultFamily, fmt.Errorf("unknown model family: %s", s)
}

// MarshalText implements encoding.TextMarshaler.
func (f ModelFamily) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *ModelFamily) UnmarshalText(text []byte) error {
	parsed, err := ParseModelFamily(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ListModelFamilies returns every family in declaration order.
func ListModelFamilies() []ModelFamily {
	families := make([]ModelFamily, len(familyNames))
	for i := range familyNames {
		families[i] = ModelFamily(i)
	}
	return families
}

// crossFamilies declares which families share adapters. The relation is
// symmetric; lookups go through CompatibleWith.
var crossFamilies = map[ModelFamily][]ModelFamily{
	FamilySDXL:        {FamilyIllustrious, FamilyPony, FamilyRealistic},
	FamilyIllustrious: {FamilySDXL},
	FamilyPony:        {FamilySDXL},
	FamilyRealistic:   {FamilySDXL},
}

// CompatibleWith returns the family itself followed by every family declared
// adapter-compatible with it.
func (f ModelFamily) CompatibleWith() []ModelFamily {
	out := []ModelFamily{f}
	return append(out, crossFamilies[f]...)
}

// ResolutionClass returns the family whose native resolution table applies.
// SDXL derivatives share the SDXL row.
func (f ModelFamily) ResolutionClass() ModelFamily {
	switch f {
	case FamilyIllustrious, FamilyPony, FamilyRealistic:
		return FamilySDXL
	default:
		return f
	}
}

// IsGridAligned reports whether output dimensions for this family must be
// multiples of 64.
func (f ModelFamily) IsGridAligned() bool {
	return f.ResolutionClass() == FamilySDXL
}

// GridSize is the pixel multiple output dimensions are aligned to.
func (f ModelFamily) GridSize() int {
	switch f.ResolutionClass() {
	case FamilySDXL:
		return 64
	case FamilyFlux:
		return 16
	default:
		return 8
	}
}

// BaseArea is the native pixel budget of the family at standard quality.
func (f ModelFamily) BaseArea() int {
	if f.ResolutionClass() == FamilySD15 {
		return 512 * 512
	}
	return 1024 * 1024
}

// familyHints maps lowercase filename fragments to families. Order matters:
// derivative and 1.5 markers are checked before the generic "xl" marker.
var familyHints = []struct {
	fragment string
	family   ModelFamily
}{
	{"flux", FamilyFlux},
	{"pony", FamilyPony},
	{"illustrious", FamilyIllustrious},
	{"noobai", FamilyIllustrious},
	{"ilxl", FamilyIllustrious},
	{"sd15", FamilySD15},
	{"sd_1.5", FamilySD15},
	{"v1-5", FamilySD15},
	{"sd-1-5", FamilySD15},
	{"realvis", FamilyRealistic},
	{"juggernaut", FamilyRealistic},
	{"realistic", FamilyRealistic},
	{"sdxl", FamilySDXL},
	{"_xl", FamilySDXL},
	{"-xl", FamilySDXL},
	{"xl_", FamilySDXL},
}

// InferFamilyFromName applies the filename naming convention only. The
// second result is false when no fragment matched.
func InferFamilyFromName(filename string) (ModelFamily, bool) {
	lower := strings.ToLower(filename)
	for _, h := range familyHints {
		if strings.Contains(lower, h.fragment) {
			return h.family, true
		}
	}
	return DefaultFamily, false
}
