// Package training implements the feedback store and the online
// retraining loop that keeps strategy models improving.
package training

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"transaction-matching-engine/internal/models"
)

// Sample records one strategy's view of one scored pair. Ground truth
// is absent at creation and set exactly once when user feedback
// arrives.
type Sample struct {
	ID         string
	Strategy   string
	FeaturesA  *models.FeatureVector
	FeaturesB  *models.FeatureVector
	Predicted  bool
	Truth      *bool
	Confidence float64
	CreatedAt  time.Time
}

// HasFeedback reports whether ground truth has been supplied
func (s *Sample) HasFeedback() bool {
	return s.Truth != nil
}

// Store is the bounded in-memory training sample store. Appends come
// from concurrent scoring calls and are serialized by a single mutex;
// they never block scoring reads, which touch only the model registry.
type Store struct {
	mu               sync.Mutex
	maxPerStrategy   int
	retrainThreshold int
	samples          map[string][]*Sample
	index            map[string]*Sample
	feedbackSince    map[string]int
	onThreshold      func(strategy string)
}

// NewStore creates a sample store. onThreshold is invoked (outside the
// store lock) whenever a strategy accumulates retrainThreshold feedback
// samples since its counter was last reset; it may be nil.
func NewStore(maxPerStrategy, retrainThreshold int, onThreshold func(string)) *Store {
	return &Store{
		maxPerStrategy:   maxPerStrategy,
		retrainThreshold: retrainThreshold,
		samples:          make(map[string][]*Sample),
		index:            make(map[string]*Sample),
		feedbackSince:    make(map[string]int),
		onThreshold:      onThreshold,
	}
}

// NewSample builds a sample with a fresh id and creation timestamp
func NewSample(strategy string, a, b *models.FeatureVector, predicted bool, confidence float64) *Sample {
	return &Sample{
		ID:         uuid.NewString(),
		Strategy:   strategy,
		FeaturesA:  a,
		FeaturesB:  b,
		Predicted:  predicted,
		Confidence: confidence,
		CreatedAt:  time.Now(),
	}
}

// Append stores a sample, evicting the oldest entries of the same
// strategy once the per-strategy cap is exceeded. Eviction is strictly
// by age; samples awaiting feedback receive no special treatment.
func (st *Store) Append(sample *Sample) {
	if sample == nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.samples[sample.Strategy] = append(st.samples[sample.Strategy], sample)
	st.index[sample.ID] = sample

	queue := st.samples[sample.Strategy]
	for st.maxPerStrategy > 0 && len(queue) > st.maxPerStrategy {
		evicted := queue[0]
		queue = queue[1:]
		delete(st.index, evicted.ID)
	}
	st.samples[sample.Strategy] = queue
}

// SubmitFeedback sets a sample's ground truth. It is a silent no-op
// when the id is unknown or the sample already carries feedback, so a
// repeated submission never overwrites the first. Returns whether the
// feedback was applied.
func (st *Store) SubmitFeedback(id string, outcome bool) bool {
	var trigger string

	st.mu.Lock()
	sample, ok := st.index[id]
	if !ok || sample.Truth != nil {
		st.mu.Unlock()
		return false
	}

	truth := outcome
	sample.Truth = &truth

	st.feedbackSince[sample.Strategy]++
	if st.retrainThreshold > 0 && st.feedbackSince[sample.Strategy] >= st.retrainThreshold {
		st.feedbackSince[sample.Strategy] = 0
		trigger = sample.Strategy
	}
	st.mu.Unlock()

	if trigger != "" && st.onThreshold != nil {
		st.onThreshold(trigger)
	}
	return true
}

// FeedbackSamples returns copies of the feedback-bearing samples for a
// strategy in creation order. Copies keep the trainer isolated from
// later store mutations.
func (st *Store) FeedbackSamples(strategy string) []Sample {
	st.mu.Lock()
	defer st.mu.Unlock()

	var out []Sample
	for _, s := range st.samples[strategy] {
		if s.Truth != nil {
			out = append(out, *s)
		}
	}
	return out
}

// Len returns the number of stored samples for a strategy
func (st *Store) Len(strategy string) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.samples[strategy])
}

// Get returns a copy of a sample by id
func (st *Store) Get(id string) (Sample, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sample, ok := st.index[id]
	if !ok {
		return Sample{}, false
	}
	return *sample, true
}
