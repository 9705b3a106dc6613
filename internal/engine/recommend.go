package engine

import "transaction-matching-engine/internal/strategy"

// weakScoreThreshold is the per-strategy score below which a
// remediation hint is emitted.
const weakScoreThreshold = 0.5

// recommendation rules keyed by strategy, in strategy evaluation order.
var recommendationRules = []struct {
	strategy string
	hint     string
}{
	{strategy.NameDateTolerance, "check date formats and date tolerance settings"},
	{strategy.NameAmountTolerance, "verify amount precision and currency handling"},
	{strategy.NameTextSimilarity, "improve description quality for better text matching"},
}

// Recommendations derives remediation hints from weak strategy scores.
// Each rule fires on a distinct strategy, so no deduplication is
// needed. Strategies that did not score produce no hint.
func Recommendations(scores map[string]float64) []string {
	var hints []string
	for _, rule := range recommendationRules {
		score, ok := scores[rule.strategy]
		if ok && score < weakScoreThreshold {
			hints = append(hints, rule.hint)
		}
	}
	return hints
}

// buildReasons generates human-readable explanations for the scored
// strategies, in evaluation order.
func buildReasons(scores map[string]float64) []string {
	var reasons []string

	if score, ok := scores[strategy.NameExact]; ok {
		switch {
		case score == 1.0:
			reasons = append(reasons, "all comparable fields match exactly")
		case score > 0:
			reasons = append(reasons, "some fields match exactly")
		}
	}

	if score, ok := scores[strategy.NameFuzzy]; ok && score > 0.8 {
		reasons = append(reasons, "high token overlap in identifiers")
	}

	if score, ok := scores[strategy.NameDateTolerance]; ok {
		switch {
		case score == 1.0:
			reasons = append(reasons, "same transaction date")
		case score >= 0.6:
			reasons = append(reasons, "dates within tolerance")
		case score == 0:
			reasons = append(reasons, "dates too far apart")
		}
	}

	if score, ok := scores[strategy.NameAmountTolerance]; ok {
		switch {
		case score == 1.0:
			reasons = append(reasons, "exact amount match")
		case score >= 0.7:
			reasons = append(reasons, "amounts within tolerance")
		case score == 0:
			reasons = append(reasons, "amount mismatch")
		}
	}

	if score, ok := scores[strategy.NameTextSimilarity]; ok && score > 0.8 {
		reasons = append(reasons, "descriptions are highly similar")
	}

	return reasons
}
