package modelcatalog

import (
	"fmt"
	"strings"
)

// Category classifies what an adapter contributes to the output.
type Category int

const (
	CategoryStyle Category = iota
	CategoryCharacter
	CategoryQuality
	CategoryPose
	CategoryConcept
)

var categoryNames = []string{"style", "character", "quality", "pose", "concept"}

func (c Category) String() string {
	if int(c) < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// ParseCategory converts a wire name to a Category.
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return CategoryStyle, fmt.Errorf("unknown adapter category: %s", s)
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// StackPosition orders adapters inside a stack: identity first, style in the
// middle, polish last. The numeric order is the sort order.
type StackPosition int

const (
	PositionFirst StackPosition = iota
	PositionMiddle
	PositionLast
)

var positionNames = []string{"first", "middle", "last"}

func (p StackPosition) String() string {
	if int(p) < 0 || int(p) >= len(positionNames) {
		return "unknown"
	}
	return positionNames[p]
}

// ParseStackPosition converts a wire name to a StackPosition.
func ParseStackPosition(s string) (StackPosition, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range positionNames {
		if n == name {
			return StackPosition(i), nil
		}
	}
	return PositionMiddle, fmt.Errorf("unknown stack position: %s", s)
}

func (p StackPosition) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *StackPosition) UnmarshalText(text []byte) error {
	parsed, err := ParseStackPosition(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ConditionType is the kind of spatial guidance a conditioner consumes.
type ConditionType int

const (
	ConditionPose ConditionType = iota
	ConditionCanny
	ConditionDepth
	ConditionLineart
	ConditionScribble
	ConditionSoftEdge
	ConditionNormal
	ConditionSegmentation
	ConditionMLSD
	ConditionTile
	ConditionReference
)

var conditionNames = []string{
	"pose",
	"canny",
	"depth",
	"lineart",
	"scribble",
	"softedge",
	"normal",
	"segmentation",
	"mlsd",
	"tile",
	"reference",
}

func (t ConditionType) String() string {
	if int(t) < 0 || int(t) >= len(conditionNames) {
		return "unknown"
	}
	return conditionNames[t]
}

// ParseConditionType converts a wire name to a ConditionType. "openpose" is
// accepted as an alias of "pose".
func ParseConditionType(s string) (ConditionType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "openpose" {
		return ConditionPose, nil
	}
	for i, n := range conditionNames {
		if n == name {
			return ConditionType(i), nil
		}
	}
	return ConditionCanny, fmt.Errorf("unknown condition type: %s", s)
}

func (t ConditionType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *ConditionType) UnmarshalText(text []byte) error {
	parsed, err := ParseConditionType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ListConditionTypes returns every condition type in declaration order.
func ListConditionTypes() []ConditionType {
	types := make([]ConditionType, len(conditionNames))
	for i := range conditionNames {
		types[i] = ConditionType(i)
	}
	return types
}

// StrengthRange bounds the weight an adapter is applied with.
type StrengthRange struct {
	Min         float64 `json:"min"`
	Recommended float64 `json:"recommended"`
	Max         float64 `json:"max"`
}

// Contains reports whether s lies within [Min, Max].
func (r StrengthRange) Contains(s float64) bool {
	return s >= r.Min && s <= r.Max
}

// Clamp limits s to [Min, Max].
func (r StrengthRange) Clamp(s float64) float64 {
	if s < r.Min {
		return r.Min
	}
	if s > r.Max {
		return r.Max
	}
	return s
}

// CheckpointEntry describes a base model file.
type CheckpointEntry struct {
	Filename           string        `json:"filename"`
	Name               string        `json:"name"`
	Family             ModelFamily   `json:"family"`
	CompatibleFamilies []ModelFamily `json:"compatible_families"`
	Description        string        `json:"description,omitempty"`
}

// ConditionerEntry describes a ControlNet-style conditioning model.
type ConditionerEntry struct {
	Filename           string        `json:"filename"`
	Name               string        `json:"name"`
	ConditionType      ConditionType `json:"condition_type"`
	Family             ModelFamily   `json:"family"`
	CompatibleFamilies []ModelFamily `json:"compatible_families"`
}

// AdapterEntry describes a LoRA adapter.
type AdapterEntry struct {
	Filename           string        `json:"filename"`
	Name               string        `json:"name"`
	Family             ModelFamily   `json:"family"`
	CompatibleFamilies []ModelFamily `json:"compatible_families"`
	Category           Category      `json:"category"`
	StackPosition      StackPosition `json:"stack_position"`
	Strength           StrengthRange `json:"strength"`
	TriggerWords       string        `json:"trigger_words,omitempty"`
	// UseCases lists the recommendation buckets (comic, anime, realistic,
	// general) a style adapter is curated for.
	UseCases []UseCase `json:"use_cases,omitempty"`
}

// UseCase selects a curated adapter stack.
type UseCase string

const (
	UseCaseComic     UseCase = "comic"
	UseCaseRealistic UseCase = "realistic"
	UseCaseAnime     UseCase = "anime"
	UseCaseGeneral   UseCase = "general"
)

// ParseUseCase validates a use-case name.
func ParseUseCase(s string) (UseCase, error) {
	switch u := UseCase(strings.ToLower(strings.TrimSpace(s))); u {
	case UseCaseComic, UseCaseRealistic, UseCaseAnime, UseCaseGeneral:
		return u, nil
	default:
		return UseCaseGeneral, fmt.Errorf("unknown use case: %s", s)
	}
}

// StackEntry is one adapter of a resolved stack together with the strength
// it will be applied with.
type StackEntry struct {
	Adapter  AdapterEntry `json:"adapter"`
	Strength float64      `json:"strength"`
}

// ResolvedAdapterStack is the ordered adapter list handed to the generation
// backend.
type ResolvedAdapterStack []StackEntry

// Names returns adapter filenames in stack order.
func (s ResolvedAdapterStack) Names() []string {
	names := make([]string, len(s))
	for i, e := range s {
		names[i] = e.Adapter.Filename
	}
	return names
}
