package composer

import (
	"fmt"
	"slices"

	"comic_backend/modelcatalog"
)

// Strength bounds accepted for any condition.
const (
	DefaultStrength = 1.0
	MinStrength     = 0.0
	MaxStrength     = 2.0
)

// StrengthRecommendation is the advised strength range for a condition type.
type StrengthRecommendation struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Notes   string  `json:"notes"`
}

// Contains reports whether v is inside the recommended range.
func (r StrengthRecommendation) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

var strengthTable = map[modelcatalog.ConditionType]StrengthRecommendation{
	modelcatalog.ConditionPose:         {Min: 0.6, Max: 1.0, Default: 0.8, Notes: "Skeletons tolerate high strength; lower it to loosen anatomy"},
	modelcatalog.ConditionCanny:        {Min: 0.4, Max: 0.8, Default: 0.6, Notes: "High values copy every edge including noise"},
	modelcatalog.ConditionDepth:        {Min: 0.4, Max: 0.8, Default: 0.6, Notes: "Keeps composition and perspective, leaves detail free"},
	modelcatalog.ConditionLineart:      {Min: 0.6, Max: 1.0, Default: 0.8, Notes: "Use near 1.0 for coloring finished inks"},
	modelcatalog.ConditionScribble:     {Min: 0.5, Max: 0.9, Default: 0.7, Notes: "Rough sketches need room to be interpreted"},
	modelcatalog.ConditionSoftEdge:     {Min: 0.4, Max: 0.8, Default: 0.6, Notes: "Softer than canny, good for painterly panels"},
	modelcatalog.ConditionNormal:       {Min: 0.4, Max: 0.7, Default: 0.5, Notes: "Surface orientation only; combine with a style adapter"},
	modelcatalog.ConditionSegmentation: {Min: 0.4, Max: 0.8, Default: 0.6, Notes: "Region layout; colors of the map are ignored"},
	modelcatalog.ConditionMLSD:         {Min: 0.4, Max: 0.8, Default: 0.6, Notes: "Straight lines only, for architecture and interiors"},
	modelcatalog.ConditionTile:         {Min: 0.3, Max: 0.7, Default: 0.5, Notes: "Detail refinement of an existing render"},
	modelcatalog.ConditionReference:    {Min: 0.4, Max: 0.9, Default: 0.6, Notes: "Transfers look and palette, not layout"},
}

// RecommendedStrength returns the advised range for t.
//
// This is a pure function.
func RecommendedStrength(t modelcatalog.ConditionType) StrengthRecommendation {
	if r, ok := strengthTable[t]; ok {
		return r
	}
	return StrengthRecommendation{Min: 0.5, Max: 1.0, Default: 0.8}
}

// ValidateStrength rejects strengths outside [MinStrength, MaxStrength].
// A strength inside the bounds but outside the recommended range is accepted
// and described by the returned warning.
func ValidateStrength(t modelcatalog.ConditionType, v float64) (warning string, err error) {
	if !(v >= MinStrength && v <= MaxStrength) {
		return "", fmt.Errorf("%w: %s strength %g outside [%g, %g]", ErrInvalidStrength, t, v, MinStrength, MaxStrength)
	}
	if r := RecommendedStrength(t); !r.Contains(v) {
		return fmt.Sprintf("%s strength %.2f is outside the recommended %.2f-%.2f", t, v, r.Min, r.Max), nil
	}
	return "", nil
}

// accuracyHints are appended to the prompt for secondary conditions.
var accuracyHints = map[modelcatalog.ConditionType]string{
	modelcatalog.ConditionPose:         "accurate pose, correct anatomy",
	modelcatalog.ConditionCanny:        "precise outlines, faithful composition",
	modelcatalog.ConditionDepth:        "consistent depth, correct perspective",
	modelcatalog.ConditionLineart:      "clean lineart, faithful linework",
	modelcatalog.ConditionScribble:     "following the rough sketch layout",
	modelcatalog.ConditionSoftEdge:     "soft contours, faithful shapes",
	modelcatalog.ConditionNormal:       "consistent surface lighting",
	modelcatalog.ConditionSegmentation: "clear separation of regions",
	modelcatalog.ConditionMLSD:         "straight architectural lines",
	modelcatalog.ConditionTile:         "fine detail",
	modelcatalog.ConditionReference:    "matching reference style and palette",
}

// AccuracyHint returns the prompt hint for a secondary condition of type t.
func AccuracyHint(t modelcatalog.ConditionType) string { return accuracyHints[t] }

// DefaultSupportedTypes is the condition subset of the generation backend.
var DefaultSupportedTypes = []modelcatalog.ConditionType{
	modelcatalog.ConditionPose,
	modelcatalog.ConditionCanny,
	modelcatalog.ConditionDepth,
	modelcatalog.ConditionLineart,
	modelcatalog.ConditionScribble,
}

var fallbackTypes = map[modelcatalog.ConditionType]modelcatalog.ConditionType{
	modelcatalog.ConditionSoftEdge:     modelcatalog.ConditionLineart,
	modelcatalog.ConditionNormal:       modelcatalog.ConditionDepth,
	modelcatalog.ConditionSegmentation: modelcatalog.ConditionDepth,
	modelcatalog.ConditionMLSD:         modelcatalog.ConditionCanny,
	modelcatalog.ConditionTile:         modelcatalog.ConditionCanny,
	modelcatalog.ConditionReference:    modelcatalog.ConditionLineart,
}

// supportedType maps t onto the supported set. The second result reports a
// substitution. When neither t nor its fallback is supported, the first
// supported type is used.
func supportedType(t modelcatalog.ConditionType, supported []modelcatalog.ConditionType) (modelcatalog.ConditionType, bool) {
	if slices.Contains(supported, t) {
		return t, false
	}
	if fb, ok := fallbackTypes[t]; ok && slices.Contains(supported, fb) {
		return fb, true
	}
	return supported[0], true
}
