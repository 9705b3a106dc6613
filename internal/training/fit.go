package training

import "math"

// Evaluation holds confusion-matrix derived metrics for a candidate
// model on one data set.
type Evaluation struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
}

// evaluate scores predictions (score >= threshold) against truths.
func evaluate(scores []float64, truths []bool, threshold float64) Evaluation {
	var tp, tn, fp, fn float64

	for i, score := range scores {
		predicted := score >= threshold
		switch {
		case predicted && truths[i]:
			tp++
		case predicted && !truths[i]:
			fp++
		case !predicted && truths[i]:
			fn++
		default:
			tn++
		}
	}

	total := tp + tn + fp + fn
	var eval Evaluation
	if total > 0 {
		eval.Accuracy = (tp + tn) / total
	}
	if tp+fp > 0 {
		eval.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		eval.Recall = tp / (tp + fn)
	}
	if eval.Precision+eval.Recall > 0 {
		eval.F1 = 2 * eval.Precision * eval.Recall / (eval.Precision + eval.Recall)
	}
	return eval
}

// searchThreshold scans candidate decision thresholds and returns the
// one maximizing F1 on the given scores. Ties keep the lowest
// threshold so the search stays deterministic.
func searchThreshold(scores []float64, truths []bool) float64 {
	best := 0.5
	bestF1 := -1.0

	for t := 0.05; t <= 0.951; t += 0.05 {
		f1 := evaluate(scores, truths, t).F1
		if f1 > bestF1 {
			bestF1 = f1
			best = t
		}
	}
	return best
}

// fitLogistic fits a logistic regression over the component matrix via
// batch gradient descent. Deterministic: fixed initialization, fixed
// epoch count, no shuffling.
func fitLogistic(x [][]float64, y []bool, epochs int, rate float64) (weights []float64, bias float64) {
	if len(x) == 0 || len(x[0]) == 0 {
		return nil, 0
	}

	dims := len(x[0])
	weights = make([]float64, dims)
	n := float64(len(x))

	for epoch := 0; epoch < epochs; epoch++ {
		grad := make([]float64, dims)
		var gradBias float64

		for i, row := range x {
			z := bias
			for j, v := range row {
				z += weights[j] * v
			}
			p := sigmoid(z)

			target := 0.0
			if y[i] {
				target = 1.0
			}
			err := p - target

			for j, v := range row {
				grad[j] += err * v
			}
			gradBias += err
		}

		for j := range weights {
			weights[j] -= rate * grad[j] / n
		}
		bias -= rate * gradBias / n
	}

	return weights, bias
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// blendWeights converts fitted logistic weights into a normalized,
// non-negative blend usable by a ComponentStrategy. Each weight is
// floored at a small positive value so no component is switched off
// entirely by a noisy fit.
func blendWeights(weights []float64) []float64 {
	const floor = 0.01

	out := make([]float64, len(weights))
	var sum float64
	for i, w := range weights {
		if w < floor {
			w = floor
		}
		out[i] = w
		sum += w
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
