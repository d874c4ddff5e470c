package composer

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"comic_backend/modelcatalog"
)

// DerivedCondition is a condition whose control image is produced from a
// plain source image by a preprocessor on the backend.
type DerivedCondition struct {
	Condition
	Preprocessor string `json:"preprocessor"`
}

// preprocessors maps condition types to the detector that derives their
// control image. Scribble has none: it is always drawn by hand.
var preprocessors = map[modelcatalog.ConditionType]string{
	modelcatalog.ConditionPose:         "openpose_full",
	modelcatalog.ConditionCanny:        "canny",
	modelcatalog.ConditionDepth:        "depth_anything",
	modelcatalog.ConditionLineart:      "lineart_anime",
	modelcatalog.ConditionSoftEdge:     "softedge_hed",
	modelcatalog.ConditionNormal:       "normal_bae",
	modelcatalog.ConditionSegmentation: "seg_ofade20k",
	modelcatalog.ConditionMLSD:         "mlsd",
	modelcatalog.ConditionTile:         "tile_resample",
	modelcatalog.ConditionReference:    "reference_only",
}

// DeriveCondition describes how to derive a condition of type t from image,
// at the recommended default strength. Types without a detector fail with
// ErrAutoDetectUnsupported and must be supplied explicitly.
func DeriveCondition(t modelcatalog.ConditionType, image string) (DerivedCondition, error) {
	if image == "" {
		return DerivedCondition{}, ErrMissingImage
	}
	pre, ok := preprocessors[t]
	if !ok {
		return DerivedCondition{}, fmt.Errorf("%w: no detector derives %s conditions", ErrAutoDetectUnsupported, t)
	}
	return DerivedCondition{
		Condition:    Condition{Type: t, SourceImage: image, Strength: lo.ToPtr(RecommendedStrength(t).Default)},
		Preprocessor: pre,
	}, nil
}

// MaskCategory names what an inpainting mask should cover.
type MaskCategory string

const (
	MaskFace       MaskCategory = "face"
	MaskHands      MaskCategory = "hands"
	MaskPerson     MaskCategory = "person"
	MaskBackground MaskCategory = "background"
	MaskClothing   MaskCategory = "clothing"
	MaskObject     MaskCategory = "object"
	MaskSpeech     MaskCategory = "speech-bubble"
)

// MaskSpec tells the backend how to build a mask automatically.
type MaskSpec struct {
	Category MaskCategory `json:"category"`
	Detector string       `json:"detector"`
	// Invert masks everything except the detection.
	Invert bool `json:"invert,omitempty"`
	// Dilate grows the mask by this many pixels.
	Dilate int `json:"dilate"`
}

var maskDetectors = map[MaskCategory]MaskSpec{
	MaskFace:       {Detector: "face_yolov8m", Dilate: 8},
	MaskHands:      {Detector: "hand_yolov8s", Dilate: 12},
	MaskPerson:     {Detector: "person_yolov8m-seg", Dilate: 4},
	MaskBackground: {Detector: "person_yolov8m-seg", Invert: true, Dilate: 4},
}

// AutoMask returns the mask recipe for category. Categories without an
// automated detector (clothing, object, speech bubbles) fail with
// ErrAutoDetectUnsupported and need a hand-drawn mask.
func AutoMask(category MaskCategory) (MaskSpec, error) {
	c := MaskCategory(strings.ToLower(strings.TrimSpace(string(category))))
	spec, ok := maskDetectors[c]
	if !ok {
		return MaskSpec{}, fmt.Errorf("%w: no detector for %q masks", ErrAutoDetectUnsupported, category)
	}
	spec.Category = c
	return spec, nil
}
