package training

import (
	"time"

	"github.com/google/uuid"

	"transaction-matching-engine/internal/registry"
	"transaction-matching-engine/internal/strategy"
	"transaction-matching-engine/pkg/errors"
	"transaction-matching-engine/pkg/logger"
)

// Trainer refits strategy models from accumulated feedback. Threshold
// strategies get a tuned decision threshold; component strategies
// additionally get refitted blend weights from a logistic fit over
// their sub-scores.
type Trainer struct {
	store      *Store
	registry   *registry.Registry
	strategies map[string]strategy.Strategy
	log        logger.Logger
	minSamples int
}

// NewTrainer creates a trainer over the given store and registry
func NewTrainer(store *Store, reg *registry.Registry, strategies []strategy.Strategy, log logger.Logger, minSamples int) *Trainer {
	byName := make(map[string]strategy.Strategy, len(strategies))
	for _, s := range strategies {
		byName[s.Name()] = s
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Trainer{
		store:      store,
		registry:   reg,
		strategies: byName,
		log:        log.WithComponent("trainer"),
		minSamples: minSamples,
	}
}

// Train runs one retraining pass for a strategy. A pass with too few
// feedback samples is a no-op. The promoted model only replaces the
// previous one when its test-set F1 does not regress; every other
// outcome leaves the registry untouched and is logged with the
// training snapshot id.
func (t *Trainer) Train(name string) error {
	strat, ok := t.strategies[name]
	if !ok {
		return errors.TrainingError(errors.CodeUnknownStrategy, name, "", nil)
	}

	snapshotID := uuid.NewString()
	samples := t.store.FeedbackSamples(name)
	if len(samples) < t.minSamples {
		t.log.WithFields(logger.Fields{
			"strategy":    name,
			"snapshot_id": snapshotID,
			"samples":     len(samples),
			"required":    t.minSamples,
		}).Debug("skipping retrain, not enough feedback samples")
		return nil
	}

	prev := t.registry.Get(name)
	if prev == nil {
		return errors.TrainingError(errors.CodeUnknownStrategy, name, snapshotID, nil)
	}

	train, validation, test := Split(samples)

	params := t.fitParams(strat, prev.Params, train, validation)

	testScores, testTruths := t.scoreSamples(strat, params, test)
	candidateEval := evaluate(testScores, testTruths, params.Get(registry.ParamDecisionThreshold, 0.5))

	prevScores, prevTruths := t.scoreSamples(strat, prev.Params, test)
	prevEval := evaluate(prevScores, prevTruths, prev.DecisionThreshold())

	if prev.State == registry.StateTrained && candidateEval.F1 < prevEval.F1 {
		err := errors.TrainingError(errors.CodePromotionRejected, name, snapshotID, nil).
			WithContext("candidate_f1", candidateEval.F1).
			WithContext("previous_f1", prevEval.F1)
		t.log.WithError(err).WithFields(logger.Fields{
			"strategy":    name,
			"snapshot_id": snapshotID,
		}).Warn("candidate model rejected")
		return err
	}

	promoted, err := t.registry.Promote(&registry.StrategyModel{
		Strategy: name,
		State:    registry.StateTrained,
		Params:   params,
		Metrics: registry.Metrics{
			Accuracy:  candidateEval.Accuracy,
			Precision: candidateEval.Precision,
			Recall:    candidateEval.Recall,
			F1:        candidateEval.F1,
		},
		TrainingSize: len(samples),
		TrainedAt:    time.Now(),
	})
	if err != nil {
		t.log.WithError(err).WithFields(logger.Fields{
			"strategy":    name,
			"snapshot_id": snapshotID,
		}).Error("model promotion failed")
		return err
	}

	t.log.WithFields(logger.Fields{
		"strategy":    name,
		"snapshot_id": snapshotID,
		"version":     promoted.Version,
		"f1":          promoted.Metrics.F1,
		"samples":     promoted.TrainingSize,
	}).Info("promoted retrained model")
	return nil
}

// fitParams produces the candidate parameter set. Component strategies
// get blend weights from a logistic fit on the training partition; all
// strategies get a decision threshold tuned on the validation
// partition (falling back to train when validation is empty).
func (t *Trainer) fitParams(strat strategy.Strategy, prevParams strategy.Params, train, validation []Sample) strategy.Params {
	params := strategy.Params{}
	for k, v := range prevParams {
		params[k] = v
	}

	if comp, ok := strat.(strategy.ComponentStrategy); ok {
		x, y := t.componentMatrix(comp, train)
		if len(x) > 0 {
			weights, _ := fitLogistic(x, y, 200, 0.5)
			if len(weights) > 0 {
				names := comp.ComponentNames()
				for i, w := range blendWeights(weights) {
					params[names[i]] = w
				}
			}
		}
	}

	tuneSet := validation
	if len(tuneSet) == 0 {
		tuneSet = train
	}
	scores, truths := t.scoreSamples(strat, params, tuneSet)
	params[registry.ParamDecisionThreshold] = searchThreshold(scores, truths)

	return params
}

// scoreSamples recomputes strategy scores for stored feature pairs.
// Samples where the strategy is not applicable score 0.
func (t *Trainer) scoreSamples(strat strategy.Strategy, params strategy.Params, samples []Sample) ([]float64, []bool) {
	scores := make([]float64, len(samples))
	truths := make([]bool, len(samples))

	for i, s := range samples {
		if score, ok := strat.Score(s.FeaturesA, s.FeaturesB, params); ok {
			scores[i] = score
		}
		if s.Truth != nil {
			truths[i] = *s.Truth
		}
	}
	return scores, truths
}

// componentMatrix assembles the sub-score matrix for a component
// strategy, skipping samples where no field was applicable.
func (t *Trainer) componentMatrix(comp strategy.ComponentStrategy, samples []Sample) ([][]float64, []bool) {
	var x [][]float64
	var y []bool

	for _, s := range samples {
		comps, ok := comp.Components(s.FeaturesA, s.FeaturesB)
		if !ok || s.Truth == nil {
			continue
		}
		x = append(x, comps)
		y = append(y, *s.Truth)
	}
	return x, y
}
