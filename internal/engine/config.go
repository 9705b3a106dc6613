package engine

import (
	"fmt"

	"transaction-matching-engine/internal/strategy"
)

// Config holds the engine's immutable configuration: the per-strategy
// weight table, the match decision threshold, and the training-loop
// bounds. The engine never mutates a Config after construction;
// reconfiguring means building a new engine.
type Config struct {
	// Weights maps strategy names to their share of the aggregated
	// confidence. They need not sum to 1; the aggregator normalizes by
	// the weights of the strategies that actually scored.
	Weights map[string]float64 `json:"weights"`

	// MatchThreshold is the default confidence at or above which a pair
	// is declared a match.
	MatchThreshold float64 `json:"match_threshold"`

	// FeedbackRetrainThreshold is the number of feedback samples a
	// strategy must accumulate since its last training before a retrain
	// is enqueued.
	FeedbackRetrainThreshold int `json:"feedback_retrain_threshold"`

	// MaxSamplesPerStrategy bounds the training store; oldest samples
	// are evicted beyond it.
	MaxSamplesPerStrategy int `json:"max_samples_per_strategy"`

	// MinTrainingSamples is the floor below which a retrain pass is a
	// no-op.
	MinTrainingSamples int `json:"min_training_samples"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Weights: map[string]float64{
			strategy.NameExact:           0.3,
			strategy.NameFuzzy:           0.2,
			strategy.NameDateTolerance:   0.2,
			strategy.NameAmountTolerance: 0.2,
			strategy.NameTextSimilarity:  0.1,
		},
		MatchThreshold:           0.8,
		FeedbackRetrainThreshold: 100,
		MaxSamplesPerStrategy:    10000,
		MinTrainingSamples:       30,
	}
}

// StrictConfig returns a configuration that favors exact evidence and
// demands a higher confidence before declaring a match
func StrictConfig() *Config {
	config := DefaultConfig()
	config.Weights = map[string]float64{
		strategy.NameExact:           0.45,
		strategy.NameFuzzy:           0.1,
		strategy.NameDateTolerance:   0.2,
		strategy.NameAmountTolerance: 0.2,
		strategy.NameTextSimilarity:  0.05,
	}
	config.MatchThreshold = 0.9
	return config
}

// RelaxedConfig returns a configuration that leans on fuzzy and text
// evidence for exploratory matching
func RelaxedConfig() *Config {
	config := DefaultConfig()
	config.Weights = map[string]float64{
		strategy.NameExact:           0.2,
		strategy.NameFuzzy:           0.25,
		strategy.NameDateTolerance:   0.2,
		strategy.NameAmountTolerance: 0.2,
		strategy.NameTextSimilarity:  0.15,
	}
	config.MatchThreshold = 0.6
	return config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Weights) == 0 {
		return fmt.Errorf("at least one strategy weight is required")
	}
	for name, weight := range c.Weights {
		if weight < 0 {
			return fmt.Errorf("weight for strategy %q cannot be negative: %f", name, weight)
		}
	}

	if c.MatchThreshold < 0.0 || c.MatchThreshold > 1.0 {
		return fmt.Errorf("match threshold must be between 0.0 and 1.0: %f", c.MatchThreshold)
	}

	if c.FeedbackRetrainThreshold <= 0 {
		return fmt.Errorf("feedback retrain threshold must be positive: %d", c.FeedbackRetrainThreshold)
	}

	if c.MaxSamplesPerStrategy <= 0 {
		return fmt.Errorf("max samples per strategy must be positive: %d", c.MaxSamplesPerStrategy)
	}

	if c.MinTrainingSamples <= 0 {
		return fmt.Errorf("min training samples must be positive: %d", c.MinTrainingSamples)
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	weights := make(map[string]float64, len(c.Weights))
	for name, weight := range c.Weights {
		weights[name] = weight
	}

	return &Config{
		Weights:                  weights,
		MatchThreshold:           c.MatchThreshold,
		FeedbackRetrainThreshold: c.FeedbackRetrainThreshold,
		MaxSamplesPerStrategy:    c.MaxSamplesPerStrategy,
		MinTrainingSamples:       c.MinTrainingSamples,
	}
}

// String returns a human-readable description of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Threshold: %.2f, RetrainAfter: %d, MaxSamples: %d}",
		c.MatchThreshold, c.FeedbackRetrainThreshold, c.MaxSamplesPerStrategy)
}
