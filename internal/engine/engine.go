// Package engine wires feature extraction, the similarity ensemble,
// anomaly detection, confidence aggregation and the online training
// loop into the two operations exposed to collaborators: matching a
// record pair and submitting feedback on a previous match.
package engine

import (
	"fmt"
	"time"

	"transaction-matching-engine/internal/anomaly"
	"transaction-matching-engine/internal/features"
	"transaction-matching-engine/internal/models"
	"transaction-matching-engine/internal/registry"
	"transaction-matching-engine/internal/strategy"
	"transaction-matching-engine/internal/training"
	"transaction-matching-engine/pkg/logger"
)

// MatchResult is the full outcome of evaluating one record pair.
type MatchResult struct {
	RecordA         string             `json:"record_a"`
	RecordB         string             `json:"record_b"`
	Confidence      float64            `json:"confidence"`
	Tier            MatchTier          `json:"tier"`
	IsMatch         bool               `json:"is_match"`
	Reasons         []string           `json:"reasons,omitempty"`
	StrategyScores  map[string]float64 `json:"strategy_scores"`
	AnomalyScore    *float64           `json:"anomaly_score,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
	SampleIDs       map[string]string  `json:"sample_ids,omitempty"`
	Elapsed         time.Duration      `json:"elapsed"`
}

// Engine is the record matching engine. Safe for concurrent use:
// scoring reads consult immutable model snapshots and never block on a
// retrain in progress.
type Engine struct {
	config     *Config
	log        logger.Logger
	strategies []strategy.Strategy
	detector   *anomaly.Detector
	registry   *registry.Registry
	store      *training.Store
	worker     *training.Worker
}

// New creates an engine with the given configuration. A nil config
// uses defaults; a nil logger discards output.
func New(config *Config, log logger.Logger) (*Engine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	strategies := strategy.All()
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.Name()
	}

	e := &Engine{
		config:     config.Clone(),
		log:        log.WithComponent("engine"),
		strategies: strategies,
		detector:   anomaly.NewDetector(),
		registry:   registry.NewRegistry(names),
	}

	e.store = training.NewStore(config.MaxSamplesPerStrategy, config.FeedbackRetrainThreshold, func(name string) {
		e.worker.Request(name)
	})

	trainer := training.NewTrainer(e.store, e.registry, strategies, log, config.MinTrainingSamples)
	e.worker = training.NewWorker(trainer, log)
	e.worker.Start()

	return e, nil
}

// Close stops the background retraining worker.
func (e *Engine) Close() {
	e.worker.Stop()
}

// MatchRecords evaluates a record pair at the configured default
// threshold.
func (e *Engine) MatchRecords(a, b *models.Record) *MatchResult {
	return e.MatchRecordsWithThreshold(a, b, e.config.MatchThreshold)
}

// MatchRecordsWithThreshold evaluates a record pair and declares a
// match when the aggregated confidence reaches the given threshold.
// It always returns a result: malformed records degrade to zero
// scores and a failing strategy simply contributes no score.
func (e *Engine) MatchRecordsWithThreshold(a, b *models.Record, threshold float64) *MatchResult {
	start := time.Now()

	fa := features.Extract(a)
	fb := features.Extract(b)

	snapshot := e.registry.Snapshot()

	scores := make(map[string]float64)
	for _, strat := range e.strategies {
		var params strategy.Params
		if model := snapshot[strat.Name()]; model != nil {
			params = model.Params
		}
		if score, ok := e.safeScore(strat, fa, fb, params); ok {
			scores[strat.Name()] = score
		}
	}

	confidence := Aggregate(scores, e.config.Weights)

	result := &MatchResult{
		RecordA:         fa.RecordID,
		RecordB:         fb.RecordID,
		Confidence:      confidence,
		Tier:            ClassifyTier(confidence),
		IsMatch:         confidence >= threshold,
		Reasons:         buildReasons(scores),
		StrategyScores:  scores,
		Recommendations: Recommendations(scores),
		SampleIDs:       e.recordSamples(snapshot, fa, fb, scores, confidence),
	}

	if anomalyScore, ok := e.detector.Detect(fa, fb); ok {
		result.AnomalyScore = &anomalyScore
	}

	result.Elapsed = time.Since(start)
	return result
}

// SubmitFeedback sets the ground truth of a previously recorded
// training sample. Unknown ids and repeated submissions are silent
// no-ops, so the operation is idempotent and the first outcome is
// never overwritten.
func (e *Engine) SubmitFeedback(sampleID string, confirmedMatch bool) {
	if e.store.SubmitFeedback(sampleID, confirmedMatch) {
		e.log.WithFields(logger.Fields{
			"sample_id": sampleID,
			"outcome":   confirmedMatch,
		}).Debug("feedback recorded")
	}
}

// Models returns the current model snapshot of every strategy.
func (e *Engine) Models() map[string]*registry.StrategyModel {
	return e.registry.Snapshot()
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// safeScore runs one strategy, converting a panic into "no score" so a
// single misbehaving strategy never aborts the match.
func (e *Engine) safeScore(strat strategy.Strategy, a, b *models.FeatureVector, params strategy.Params) (score float64, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithFields(logger.Fields{
				"strategy": strat.Name(),
				"panic":    r,
			}).Warn("strategy scoring failed, skipping its score")
			score, ok = 0, false
		}
	}()

	return strat.Score(a, b, params)
}

// recordSamples appends one training sample per scored strategy and
// returns the strategy-to-sample-id map handed back to the caller for
// later feedback.
func (e *Engine) recordSamples(snapshot map[string]*registry.StrategyModel, fa, fb *models.FeatureVector, scores map[string]float64, confidence float64) map[string]string {
	if len(scores) == 0 {
		return nil
	}

	sampleIDs := make(map[string]string, len(scores))
	for _, strat := range e.strategies {
		score, ok := scores[strat.Name()]
		if !ok {
			continue
		}

		decisionThreshold := 0.5
		if model := snapshot[strat.Name()]; model != nil {
			decisionThreshold = model.DecisionThreshold()
		}

		sample := training.NewSample(strat.Name(), fa, fb, score >= decisionThreshold, confidence)
		e.store.Append(sample)
		sampleIDs[strat.Name()] = sample.ID
	}
	return sampleIDs
}
