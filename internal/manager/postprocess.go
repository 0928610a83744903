package manager

import (
	"fmt"
	"math"

	"classifyd/pkg/types"
)

// softmax returns a probability vector for logits. It subtracts the max for
// numerical stability.
func softmax(logits []float32) []float32 {
	if len(logits) == 0 {
		return nil
	}
	maxV := logits[0]
	for _, v := range logits[1:] {
		if v > maxV {
			maxV = v
		}
	}
	out := make([]float32, len(logits))
	var sum float64
	for i, v := range logits {
		e := math.Exp(float64(v - maxV))
		out[i] = float32(e)
		sum += e
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}

// argmax returns the index of the largest value; ties keep the first.
func argmax(v []float32) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// topPrediction turns a raw output row into a Prediction. activation is
// "softmax" (apply softmax to logits) or "none" (scores are already
// probabilities).
func topPrediction(scores []float32, labels []string, activation string) (types.Prediction, error) {
	if len(scores) == 0 {
		return types.Prediction{}, fmt.Errorf("model produced no scores")
	}
	if len(scores) != len(labels) {
		return types.Prediction{}, fmt.Errorf("model produced %d scores for %d labels", len(scores), len(labels))
	}
	probs := scores
	if activation != activationNone {
		probs = softmax(scores)
	}
	i := argmax(probs)
	if labels[i] == "" {
		return types.Prediction{}, errEmptyLabel
	}
	return types.Prediction{
		Label:         labels[i],
		Index:         i,
		Confidence:    probs[i],
		Probabilities: probs,
	}, nil
}
