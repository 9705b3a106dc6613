package strategy

import (
	"math"
	"time"

	"transaction-matching-engine/internal/models"
)

// DateTolerance scores date proximity on a piecewise scale: same day
// 1.0, within one day 0.8, within three days 0.6, within seven days
// 0.4, anything further 0.0. Not applicable unless both dates are
// present.
type DateTolerance struct{}

// Name implements Strategy
func (d *DateTolerance) Name() string { return NameDateTolerance }

// Score implements Strategy
func (d *DateTolerance) Score(a, b *models.FeatureVector, _ Params) (float64, bool) {
	if !a.HasDate() || !b.HasDate() {
		return 0, false
	}

	days := DayGap(*a.Date, *b.Date)
	switch {
	case days == 0:
		return 1.0, true
	case days <= 1:
		return 0.8, true
	case days <= 3:
		return 0.6, true
	case days <= 7:
		return 0.4, true
	default:
		return 0.0, true
	}
}

// DayGap returns the absolute calendar-day distance between two dates.
func DayGap(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	dayA := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	dayB := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)

	diff := dayA.Sub(dayB).Hours() / 24
	return int(math.Abs(diff))
}
