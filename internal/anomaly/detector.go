// Package anomaly flags record pairs whose feature relationship is
// statistically unusual.
//
// The detector accumulates additive penalty contributions rather than
// picking a single branch, and the total is deliberately not clamped:
// it is a risk indicator for reviewers, not a probability, and it never
// alters the match confidence.
package anomaly

import (
	"transaction-matching-engine/internal/models"
	"transaction-matching-engine/internal/strategy"
)

// Penalty contributions and the thresholds that trigger them.
const (
	amountRatioLow    = 0.1
	amountRatioHigh   = 10.0
	amountRatioWeight = 0.3

	dateGapDays   = 30
	dateGapWeight = 0.2

	textOverlapFloor  = 0.1
	textMinLength     = 10
	textOverlapWeight = 0.2
)

// Detector scores unusual pairings.
type Detector struct{}

// NewDetector creates an anomaly detector
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the accumulated anomaly score for a pair and whether
// any penalty fired. A zero total reports ok=false.
func (d *Detector) Detect(a, b *models.FeatureVector) (float64, bool) {
	var total float64

	if a.HasAmount() && b.HasAmount() {
		absA := a.Amount.Abs()
		absB := b.Amount.Abs()
		if !absA.IsZero() && !absB.IsZero() {
			ratio := absA.Div(absB).InexactFloat64()
			if ratio < amountRatioLow || ratio > amountRatioHigh {
				total += amountRatioWeight
			}
		}
	}

	if a.HasDate() && b.HasDate() {
		if strategy.DayGap(*a.Date, *b.Date) > dateGapDays {
			total += dateGapWeight
		}
	}

	if a.HasDescription() && b.HasDescription() &&
		len(a.Description) > textMinLength && len(b.Description) > textMinLength {
		if strategy.TokenJaccard(a.Description, b.Description) < textOverlapFloor {
			total += textOverlapWeight
		}
	}

	if total == 0 {
		return 0, false
	}
	return total, true
}
