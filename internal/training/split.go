package training

// SplitRatios are the train/validation/test partition shares.
const (
	trainShare      = 0.7
	validationShare = 0.2
)

// Split partitions samples into train, validation and test sets by
// creation order: the oldest 70% train, the next 20% validate, the
// newest 10% test. The split is deterministic for a given snapshot and
// the three sets are disjoint.
func Split(samples []Sample) (train, validation, test []Sample) {
	n := len(samples)
	trainEnd := int(float64(n) * trainShare)
	validationEnd := trainEnd + int(float64(n)*validationShare)

	return samples[:trainEnd], samples[trainEnd:validationEnd], samples[validationEnd:]
}
