package strategy

import "transaction-matching-engine/internal/models"

// Blend weight parameter keys for the TextSimilarity strategy.
const (
	ParamTextJaccardWeight = "jaccard_weight"
	ParamTextEditWeight    = "edit_weight"
	ParamTextCosineWeight  = "cosine_weight"
)

// TextSimilarity blends three text metrics over each applicable field
// (description, external id) and averages the per-field blends. The
// default blend is 0.4 token Jaccard, 0.3 normalized edit-distance
// similarity and 0.3 term-frequency cosine; the weights can be refitted
// by the training layer.
type TextSimilarity struct{}

// Name implements Strategy
func (t *TextSimilarity) Name() string { return NameTextSimilarity }

// ComponentNames implements ComponentStrategy
func (t *TextSimilarity) ComponentNames() []string {
	return []string{ParamTextJaccardWeight, ParamTextEditWeight, ParamTextCosineWeight}
}

// Components implements ComponentStrategy. Sub-scores are averaged over
// the applicable fields so the trainer sees one value per metric.
func (t *TextSimilarity) Components(a, b *models.FeatureVector) ([]float64, bool) {
	fields, ok := t.applicableFields(a, b)
	if !ok {
		return nil, false
	}

	components := make([]float64, 3)
	for _, pair := range fields {
		components[0] += TokenJaccard(pair[0], pair[1])
		components[1] += LevenshteinSimilarity(pair[0], pair[1])
		components[2] += CosineSimilarity(pair[0], pair[1])
	}
	n := float64(len(fields))
	for i := range components {
		components[i] /= n
	}
	return components, true
}

// Score implements Strategy
func (t *TextSimilarity) Score(a, b *models.FeatureVector, params Params) (float64, bool) {
	fields, ok := t.applicableFields(a, b)
	if !ok {
		return 0, false
	}

	wJaccard := params.Get(ParamTextJaccardWeight, 0.4)
	wEdit := params.Get(ParamTextEditWeight, 0.3)
	wCosine := params.Get(ParamTextCosineWeight, 0.3)

	weightSum := wJaccard + wEdit + wCosine
	if weightSum <= 0 {
		return 0, false
	}

	var total float64
	for _, pair := range fields {
		blend := wJaccard*TokenJaccard(pair[0], pair[1]) +
			wEdit*LevenshteinSimilarity(pair[0], pair[1]) +
			wCosine*CosineSimilarity(pair[0], pair[1])
		total += blend / weightSum
	}

	return clamp(total / float64(len(fields))), true
}

// applicableFields returns the text field pairs present on both sides.
func (t *TextSimilarity) applicableFields(a, b *models.FeatureVector) ([][2]string, bool) {
	var fields [][2]string
	if a.HasDescription() && b.HasDescription() {
		fields = append(fields, [2]string{a.Description, b.Description})
	}
	if a.HasExternalID() && b.HasExternalID() {
		fields = append(fields, [2]string{a.ExternalID, b.ExternalID})
	}
	if len(fields) == 0 {
		return nil, false
	}
	return fields, true
}
