// Package registry holds the per-strategy model snapshots consulted by
// scoring calls.
//
// Models are immutable values. A retrain builds a complete replacement
// and promotes it with a single reference swap, so concurrent scoring
// reads observe either the old model or the new one, never a mix, and
// never wait on a retrain in progress.
package registry

import (
	"fmt"
	"sync"
	"time"

	"transaction-matching-engine/internal/strategy"
	"transaction-matching-engine/pkg/errors"
)

// ModelState tells whether a model still runs on default heuristic
// parameters or has been fitted from feedback.
type ModelState int

const (
	// StateUntrained means the model uses the built-in defaults.
	StateUntrained ModelState = iota
	// StateTrained means the model carries fitted parameters.
	StateTrained
)

// String returns the string representation of ModelState
func (s ModelState) String() string {
	switch s {
	case StateUntrained:
		return "untrained"
	case StateTrained:
		return "trained"
	default:
		return "unknown"
	}
}

// Metrics holds test-set performance of a promoted model.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// StrategyModel is one immutable model snapshot. Callers must never
// mutate a snapshot after handing it to the registry; Promote stores
// the value as-is.
type StrategyModel struct {
	Strategy     string
	Version      int
	State        ModelState
	Params       strategy.Params
	Metrics      Metrics
	TrainingSize int
	TrainedAt    time.Time
}

// String returns a short description of the model
func (m *StrategyModel) String() string {
	return fmt.Sprintf("StrategyModel{%s v%d %s, f1=%.3f, n=%d}",
		m.Strategy, m.Version, m.State, m.Metrics.F1, m.TrainingSize)
}

// DecisionThreshold returns the fitted decision threshold, defaulting
// to 0.5 for untrained models. The threshold converts a strategy score
// into the predicted outcome recorded with each training sample.
func (m *StrategyModel) DecisionThreshold() float64 {
	return m.Params.Get(ParamDecisionThreshold, 0.5)
}

// ParamDecisionThreshold is the parameter key under which fitted
// decision thresholds are stored.
const ParamDecisionThreshold = "decision_threshold"

// Registry maps strategy identifiers to their current model snapshot.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*StrategyModel
}

// NewRegistry creates a registry seeded with an untrained model per
// strategy name.
func NewRegistry(strategies []string) *Registry {
	models := make(map[string]*StrategyModel, len(strategies))
	for _, name := range strategies {
		models[name] = &StrategyModel{
			Strategy: name,
			Version:  1,
			State:    StateUntrained,
			Params:   strategy.Params{},
		}
	}
	return &Registry{models: models}
}

// Get returns the current snapshot for a strategy, or nil if the
// strategy is unknown. The returned value is immutable and safe to use
// for the whole evaluation even if a promotion lands concurrently.
func (r *Registry) Get(name string) *StrategyModel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.models[name]
}

// Snapshot returns the current model of every strategy.
func (r *Registry) Snapshot() map[string]*StrategyModel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*StrategyModel, len(r.models))
	for name, m := range r.models {
		out[name] = m
	}
	return out
}

// Promote atomically replaces a strategy's model. The new model's
// version is assigned here from the previous version so versions are
// monotonically increasing regardless of what the trainer set.
func (r *Registry) Promote(model *StrategyModel) (*StrategyModel, error) {
	if model == nil {
		return nil, errors.New(errors.CategoryTraining, errors.CodeTrainingFailed, "cannot promote nil model")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.models[model.Strategy]
	if !ok {
		return nil, errors.TrainingError(errors.CodeUnknownStrategy, model.Strategy, "", nil)
	}

	promoted := *model
	promoted.Version = prev.Version + 1
	r.models[model.Strategy] = &promoted

	return &promoted, nil
}
