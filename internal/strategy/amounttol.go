package strategy

import (
	"github.com/shopspring/decimal"

	"transaction-matching-engine/internal/models"
)

// AmountTolerance scores amount proximity in bands: absolute difference
// under 0.01 is a full match, then relative difference (normalized by
// the larger magnitude) under 1%, 5% and 10% earns 0.9, 0.7 and 0.5.
// Not applicable unless both amounts are present.
type AmountTolerance struct{}

// Name implements Strategy
func (a *AmountTolerance) Name() string { return NameAmountTolerance }

// Score implements Strategy
func (a *AmountTolerance) Score(fa, fb *models.FeatureVector, _ Params) (float64, bool) {
	if !fa.HasAmount() || !fb.HasAmount() {
		return 0, false
	}

	diff := fa.Amount.Sub(*fb.Amount).Abs()
	if diff.LessThan(amountEqualityTolerance) {
		return 1.0, true
	}

	larger := decimal.Max(fa.Amount.Abs(), fb.Amount.Abs())
	if larger.IsZero() {
		// Both zero yet diff >= 0.01 cannot happen; guard anyway.
		return 0.0, true
	}

	relative := diff.Div(larger).InexactFloat64()
	switch {
	case relative < 0.01:
		return 0.9, true
	case relative < 0.05:
		return 0.7, true
	case relative < 0.10:
		return 0.5, true
	default:
		return 0.0, true
	}
}
