package training

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transaction-matching-engine/internal/features"
	"transaction-matching-engine/internal/models"
	"transaction-matching-engine/internal/registry"
	"transaction-matching-engine/internal/strategy"
	"transaction-matching-engine/pkg/errors"
)

var trainerBaseDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

// dateSample builds a feedback-bearing sample whose date gap drives the
// date tolerance score.
func dateSample(id string, gapDays int, truth bool) *Sample {
	a := features.Extract(models.NewRecord(id + "-a").WithDate(trainerBaseDate))
	b := features.Extract(models.NewRecord(id + "-b").WithDate(trainerBaseDate.AddDate(0, 0, gapDays)))

	sample := NewSample(strategy.NameDateTolerance, a, b, gapDays == 0, 0.5)
	sample.Truth = &truth
	return sample
}

// descSample builds a feedback-bearing sample for the fuzzy strategy.
func descSample(id, descA, descB string, truth bool) *Sample {
	a := features.Extract(models.NewRecord(id + "-a").WithDescription(descA))
	b := features.Extract(models.NewRecord(id + "-b").WithDescription(descB))

	sample := NewSample(strategy.NameFuzzy, a, b, descA == descB, 0.5)
	sample.Truth = &truth
	return sample
}

func newTrainerFixture(minSamples int) (*Trainer, *Store, *registry.Registry) {
	store := NewStore(10000, 10000, nil)
	strategies := strategy.All()
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.Name()
	}
	reg := registry.NewRegistry(names)
	return NewTrainer(store, reg, strategies, nil, minSamples), store, reg
}

func TestTrainPromotesFirstModel(t *testing.T) {
	trainer, store, reg := newTrainerFixture(10)

	// Alternating clear matches and clear mismatches so every partition
	// of the 70/20/10 split carries both classes.
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			store.Append(dateSample(fmt.Sprintf("m%d", i), 0, true))
		} else {
			store.Append(dateSample(fmt.Sprintf("n%d", i), 30, false))
		}
	}

	require.NoError(t, trainer.Train(strategy.NameDateTolerance))

	model := reg.Get(strategy.NameDateTolerance)
	require.NotNil(t, model)
	assert.Equal(t, 2, model.Version)
	assert.Equal(t, registry.StateTrained, model.State)
	assert.Equal(t, 40, model.TrainingSize)
	assert.False(t, model.TrainedAt.IsZero())

	// Perfectly separable feedback yields a perfect test F1.
	assert.InDelta(t, 1.0, model.Metrics.F1, 1e-9)
	assert.Less(t, model.DecisionThreshold(), 0.5)
}

func TestTrainSkipsBelowSampleFloor(t *testing.T) {
	trainer, store, reg := newTrainerFixture(10)

	for i := 0; i < 5; i++ {
		store.Append(dateSample(fmt.Sprintf("s%d", i), 0, true))
	}

	require.NoError(t, trainer.Train(strategy.NameDateTolerance))

	model := reg.Get(strategy.NameDateTolerance)
	assert.Equal(t, 1, model.Version)
	assert.Equal(t, registry.StateUntrained, model.State)
}

func TestTrainUnknownStrategy(t *testing.T) {
	trainer, _, _ := newTrainerFixture(10)

	err := trainer.Train("mystery")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryTraining))
}

func TestTrainRejectsRegression(t *testing.T) {
	trainer, store, reg := newTrainerFixture(10)

	// Seed a trained model whose 0.5 threshold classifies the test
	// partition perfectly.
	_, err := reg.Promote(&registry.StrategyModel{
		Strategy: strategy.NameDateTolerance,
		State:    registry.StateTrained,
		Params:   strategy.Params{registry.ParamDecisionThreshold: 0.5},
	})
	require.NoError(t, err)

	// Train partition (14): clearly separated pairs.
	for i := 0; i < 14; i++ {
		if i%2 == 0 {
			store.Append(dateSample(fmt.Sprintf("t%d", i), 0, true))
		} else {
			store.Append(dateSample(fmt.Sprintf("t%d", i), 30, false))
		}
	}
	// Validation partition (4): weak 0.4 scores labeled matches, which
	// drags the tuned threshold down.
	for i := 0; i < 4; i++ {
		store.Append(dateSample(fmt.Sprintf("v%d", i), 5, true))
	}
	// Test partition (2): the low threshold now misfires on a weak
	// mismatch the previous model rejects correctly.
	store.Append(dateSample("x0", 5, false))
	store.Append(dateSample("x1", 0, true))

	err = trainer.Train(strategy.NameDateTolerance)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryTraining))

	var engineErr *errors.EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, errors.CodePromotionRejected, engineErr.Code)

	// The rejected candidate leaves the previous model active.
	model := reg.Get(strategy.NameDateTolerance)
	assert.Equal(t, 2, model.Version)
	assert.Equal(t, 0.5, model.DecisionThreshold())
}

func TestTrainFitsComponentBlend(t *testing.T) {
	trainer, store, reg := newTrainerFixture(10)

	for i := 0; i < 30; i++ {
		if i%2 == 0 {
			store.Append(descSample(fmt.Sprintf("m%d", i), "acme corp wire transfer", "acme corp wire transfer", true))
		} else {
			store.Append(descSample(fmt.Sprintf("n%d", i), "acme corp wire transfer", "utility bill autopay", false))
		}
	}

	require.NoError(t, trainer.Train(strategy.NameFuzzy))

	model := reg.Get(strategy.NameFuzzy)
	require.Equal(t, registry.StateTrained, model.State)

	// The logistic fit writes a normalized blend over both components.
	descWeight, hasDesc := model.Params[strategy.ParamFuzzyDescriptionWeight]
	extWeight, hasExt := model.Params[strategy.ParamFuzzyExternalIDWeight]
	require.True(t, hasDesc)
	require.True(t, hasExt)
	assert.InDelta(t, 1.0, descWeight+extWeight, 1e-9)

	// Only the description carried signal in the feedback.
	assert.Greater(t, descWeight, extWeight)
	_, hasThreshold := model.Params[registry.ParamDecisionThreshold]
	assert.True(t, hasThreshold)
}

func TestTrainRetuneDoesNotRegressOnSameData(t *testing.T) {
	trainer, store, reg := newTrainerFixture(10)

	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			store.Append(dateSample(fmt.Sprintf("m%d", i), 0, true))
		} else {
			store.Append(dateSample(fmt.Sprintf("n%d", i), 30, false))
		}
	}

	require.NoError(t, trainer.Train(strategy.NameDateTolerance))
	// A second pass over identical feedback must not regress, so it
	// promotes again.
	require.NoError(t, trainer.Train(strategy.NameDateTolerance))

	assert.Equal(t, 3, reg.Get(strategy.NameDateTolerance).Version)
}
