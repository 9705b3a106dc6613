package strategy

import "transaction-matching-engine/internal/models"

// Blend weight parameter keys for the Fuzzy strategy.
const (
	ParamFuzzyDescriptionWeight = "description_weight"
	ParamFuzzyExternalIDWeight  = "external_id_weight"
)

// Fuzzy computes token-set Jaccard similarity over the description and
// the external id, blended over whichever of the two is applicable.
// The blend weights default to an even split and can be refitted by the
// training layer.
type Fuzzy struct{}

// Name implements Strategy
func (f *Fuzzy) Name() string { return NameFuzzy }

// ComponentNames implements ComponentStrategy
func (f *Fuzzy) ComponentNames() []string {
	return []string{ParamFuzzyDescriptionWeight, ParamFuzzyExternalIDWeight}
}

// Components implements ComponentStrategy
func (f *Fuzzy) Components(a, b *models.FeatureVector) ([]float64, bool) {
	descOK := a.HasDescription() && b.HasDescription()
	extOK := a.HasExternalID() && b.HasExternalID()
	if !descOK && !extOK {
		return nil, false
	}

	components := []float64{0, 0}
	if descOK {
		components[0] = TokenJaccard(a.Description, b.Description)
	}
	if extOK {
		components[1] = TokenJaccard(a.ExternalID, b.ExternalID)
	}
	return components, true
}

// Score implements Strategy
func (f *Fuzzy) Score(a, b *models.FeatureVector, params Params) (float64, bool) {
	descOK := a.HasDescription() && b.HasDescription()
	extOK := a.HasExternalID() && b.HasExternalID()
	if !descOK && !extOK {
		return 0, false
	}

	var weightedSum, weightSum float64
	if descOK {
		w := params.Get(ParamFuzzyDescriptionWeight, 0.5)
		weightedSum += w * TokenJaccard(a.Description, b.Description)
		weightSum += w
	}
	if extOK {
		w := params.Get(ParamFuzzyExternalIDWeight, 0.5)
		weightedSum += w * TokenJaccard(a.ExternalID, b.ExternalID)
		weightSum += w
	}

	if weightSum == 0 {
		return 0, false
	}
	return clamp(weightedSum / weightSum), true
}
