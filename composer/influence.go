package composer

import (
	"fmt"
	"math"
)

// Combined-strength thresholds.
const (
	InfluenceHigh     = 1.5
	InfluenceVeryHigh = 2.0
)

// CalculateTotalInfluence sums the effective strengths of conditions. The
// warning is empty up to InfluenceHigh, moderate up to InfluenceVeryHigh
// and severe above it. An empty set has zero influence.
//
// This is a pure function.
func CalculateTotalInfluence(conditions []Condition) Influence {
	var total float64
	for _, c := range conditions {
		total += c.EffectiveStrength()
	}
	// float sums like 0.8+0.8 must compare equal to their decimal value
	total = math.Round(total*1e6) / 1e6

	inf := Influence{Total: total}
	switch {
	case total > InfluenceVeryHigh:
		inf.Warning = fmt.Sprintf("very high combined condition strength %.2f: expect artifacts, keep the total under %.1f", total, InfluenceHigh)
	case total > InfluenceHigh:
		inf.Warning = fmt.Sprintf("high combined condition strength %.2f: conditions may compete", total)
	}
	return inf
}
