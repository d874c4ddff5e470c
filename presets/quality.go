package presets

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultQuality is the quality preset id used when none is given or the
// given id is unknown.
const DefaultQuality = "standard"

// Sampler identifies the diffusion sampling algorithm.
type Sampler int

const (
	SamplerEuler Sampler = iota
	SamplerEulerAncestral
	SamplerDPMPP2M
	SamplerDPMPP2MSDE
	SamplerDPMPPSDE
	SamplerDDIM
	SamplerUniPC
)

var samplerNames = []string{
	"euler",
	"euler_a",
	"dpmpp_2m",
	"dpmpp_2m_sde",
	"dpmpp_sde",
	"ddim",
	"uni_pc",
}

func (s Sampler) String() string {
	if int(s) < 0 || int(s) >= len(samplerNames) {
		return "unknown"
	}
	return samplerNames[s]
}

// ParseSampler converts a backend sampler name to a Sampler.
func ParseSampler(s string) (Sampler, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "euler_ancestral" {
		return SamplerEulerAncestral, nil
	}
	for i, n := range samplerNames {
		if n == name {
			return Sampler(i), nil
		}
	}
	return SamplerEuler, fmt.Errorf("unknown sampler: %s", s)
}

func (s Sampler) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Sampler) UnmarshalText(text []byte) error {
	parsed, err := ParseSampler(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Scheduler identifies the noise schedule paired with a sampler.
type Scheduler int

const (
	SchedulerNormal Scheduler = iota
	SchedulerKarras
	SchedulerExponential
	SchedulerSGMUniform
	SchedulerSimple
)

var schedulerNames = []string{"normal", "karras", "exponential", "sgm_uniform", "simple"}

func (s Scheduler) String() string {
	if int(s) < 0 || int(s) >= len(schedulerNames) {
		return "unknown"
	}
	return schedulerNames[s]
}

// ParseScheduler converts a backend scheduler name to a Scheduler.
func ParseScheduler(s string) (Scheduler, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range schedulerNames {
		if n == name {
			return Scheduler(i), nil
		}
	}
	return SchedulerNormal, fmt.Errorf("unknown scheduler: %s", s)
}

func (s Scheduler) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Scheduler) UnmarshalText(text []byte) error {
	parsed, err := ParseScheduler(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// QualityPreset bundles sampling settings with their relative cost.
type QualityPreset struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Steps        int       `json:"steps"`
	CFG          float64   `json:"cfg"`
	Sampler      Sampler   `json:"sampler"`
	Scheduler    Scheduler `json:"scheduler"`
	RelativeCost float64   `json:"relative_cost"`
	// AreaScale multiplies the family's base pixel area when a sizing
	// strategy targets this quality.
	AreaScale float64 `json:"area_scale"`
}

// QualityCatalog holds quality presets ordered by increasing cost.
type QualityCatalog struct {
	presets []QualityPreset
	index   map[string]int
}

// NewQualityCatalog builds a catalog. Presets are stable-sorted by
// RelativeCost.
func NewQualityCatalog(presets []QualityPreset) (*QualityCatalog, error) {
	sorted := slices.Clone(presets)
	slices.SortStableFunc(sorted, func(a, b QualityPreset) int {
		switch {
		case a.RelativeCost < b.RelativeCost:
			return -1
		case a.RelativeCost > b.RelativeCost:
			return 1
		default:
			return 0
		}
	})

	c := &QualityCatalog{presets: sorted, index: make(map[string]int, len(sorted))}
	for i, p := range sorted {
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePreset, p.ID)
		}
		if p.Steps <= 0 || p.CFG <= 0 || p.RelativeCost <= 0 || p.AreaScale <= 0 {
			return nil, fmt.Errorf("%w: quality %s has non-positive settings", ErrInvalidPreset, p.ID)
		}
		c.index[p.ID] = i
	}
	return c, nil
}

// Get returns the preset with the given id.
func (c *QualityCatalog) Get(id string) (QualityPreset, bool) {
	i, ok := c.index[id]
	if !ok {
		return QualityPreset{}, false
	}
	return c.presets[i], true
}

// List returns presets cheapest first.
func (c *QualityCatalog) List() []QualityPreset {
	return slices.Clone(c.presets)
}

// AreaScale returns the pixel-area multiplier of a quality preset, or 1 for
// an unknown or empty id.
func (c *QualityCatalog) AreaScale(id string) float64 {
	if p, ok := c.Get(id); ok {
		return p.AreaScale
	}
	return 1.0
}
