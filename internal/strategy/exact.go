package strategy

import (
	"time"

	"github.com/shopspring/decimal"

	"transaction-matching-engine/internal/models"
)

// amountEqualityTolerance is the absolute tolerance under which two
// amounts are considered equal; it absorbs sub-cent rounding noise.
var amountEqualityTolerance = decimal.NewFromFloat(0.01)

// Exact scores the fraction of applicable fields that match exactly:
// amount within 0.01 absolute, date by calendar day, description and
// external id byte for byte. A field is applicable only when present on
// both sides.
type Exact struct{}

// Name implements Strategy
func (e *Exact) Name() string { return NameExact }

// Score implements Strategy
func (e *Exact) Score(a, b *models.FeatureVector, _ Params) (float64, bool) {
	applicable := 0
	matched := 0

	if a.HasAmount() && b.HasAmount() {
		applicable++
		if a.Amount.Sub(*b.Amount).Abs().LessThan(amountEqualityTolerance) {
			matched++
		}
	}

	if a.HasDate() && b.HasDate() {
		applicable++
		if sameCalendarDay(*a.Date, *b.Date) {
			matched++
		}
	}

	if a.HasDescription() && b.HasDescription() {
		applicable++
		if a.Description == b.Description {
			matched++
		}
	}

	if a.HasExternalID() && b.HasExternalID() {
		applicable++
		if a.ExternalID == b.ExternalID {
			matched++
		}
	}

	if applicable == 0 {
		return 0, false
	}
	return clamp(float64(matched) / float64(applicable)), true
}

// sameCalendarDay reports calendar equality regardless of time of day.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
