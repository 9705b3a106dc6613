// Package strategy implements the independent similarity scorers that
// make up the matching ensemble.
//
// Each strategy consumes two feature vectors and produces a score in
// [0,1] together with an applicability flag. A strategy that has no
// applicable fields on both sides reports not-applicable rather than a
// zero score, so the confidence aggregator can normalize over the
// strategies that actually participated.
//
// Strategies are pure and stateless with respect to the pair being
// scored. Learned parameters arrive per call as a Params map so that a
// concurrent model promotion never mutates a strategy mid-evaluation.
package strategy

import "transaction-matching-engine/internal/models"

// Strategy names used across the engine, registry and training store.
const (
	NameExact           = "exact"
	NameFuzzy           = "fuzzy"
	NameDateTolerance   = "date_tolerance"
	NameAmountTolerance = "amount_tolerance"
	NameTextSimilarity  = "text_similarity"
)

// Params holds learned strategy parameters keyed by name. A missing key
// falls back to the strategy's built-in default, so an Untrained model
// and an empty map behave identically.
type Params map[string]float64

// Get returns the parameter value or the given default when absent.
func (p Params) Get(key string, def float64) float64 {
	if p == nil {
		return def
	}
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Strategy scores a pair of feature vectors. The boolean result is
// false when the strategy had no applicable fields to compare (or the
// computation failed), in which case the score must be ignored.
type Strategy interface {
	Name() string
	Score(a, b *models.FeatureVector, params Params) (float64, bool)
}

// ComponentStrategy is implemented by strategies whose score is a
// weighted blend of sub-scores. The training layer fits blend weights
// over these components.
type ComponentStrategy interface {
	Strategy

	// ComponentNames returns the parameter keys of the blend weights,
	// in the same order Components reports sub-scores.
	ComponentNames() []string

	// Components returns the raw sub-scores for a pair, or false when
	// no field was applicable.
	Components(a, b *models.FeatureVector) ([]float64, bool)
}

// All returns the full ensemble in evaluation order. The order is
// significant: recommendations and training samples follow it.
func All() []Strategy {
	return []Strategy{
		&Exact{},
		&Fuzzy{},
		&DateTolerance{},
		&AmountTolerance{},
		&TextSimilarity{},
	}
}

// clamp bounds a score to [0,1].
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
