package engine

// MatchTier is the discrete confidence bucket of a match result. The
// tier is informational; the match decision itself is threshold-driven
// and independent of tier boundaries.
type MatchTier string

const (
	TierExactMatch       MatchTier = "exact_match"
	TierHighConfidence   MatchTier = "high_confidence"
	TierMediumConfidence MatchTier = "medium_confidence"
	TierLowConfidence    MatchTier = "low_confidence"
	TierNoMatch          MatchTier = "no_match"
)

// Tier classification thresholds.
const (
	exactTierThreshold  = 0.95
	highTierThreshold   = 0.85
	mediumTierThreshold = 0.70
	lowTierThreshold    = 0.50
)

// Aggregate combines per-strategy scores into one confidence using the
// configured weights, normalized by the weight mass of the strategies
// that actually produced a score. Returns 0 when nothing scored. The
// result is clamped to [0,1].
func Aggregate(scores map[string]float64, weights map[string]float64) float64 {
	var weightedSum, weightSum float64

	for name, score := range scores {
		weight, ok := weights[name]
		if !ok {
			continue
		}
		weightedSum += score * weight
		weightSum += weight
	}

	if weightSum == 0 {
		return 0
	}

	confidence := weightedSum / weightSum
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

// ClassifyTier maps a confidence value onto its tier.
func ClassifyTier(confidence float64) MatchTier {
	switch {
	case confidence >= exactTierThreshold:
		return TierExactMatch
	case confidence >= highTierThreshold:
		return TierHighConfidence
	case confidence >= mediumTierThreshold:
		return TierMediumConfidence
	case confidence >= lowTierThreshold:
		return TierLowConfidence
	default:
		return TierNoMatch
	}
}
