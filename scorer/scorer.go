package scorer

import (
	"context"
	"errors"
	"math"
)

// SumTolerance is the maximum deviation of a score distribution's total
// from 1.0 before the distribution is rejected as malformed.
const SumTolerance = 1e-6

// Interface for all text scoring backends
type TextScorer interface {
	// ScoreText returns a probability for each candidate label. The
	// distribution covers exactly the candidate labels and sums to 1.0.
	ScoreText(ctx context.Context, text string, candidateLabels []string) (map[string]float64, error)
}

// Interface for all image scoring backends
type ImageScorer interface {
	// ScoreImage returns a probability distribution over the backing
	// model's fixed label set.
	ScoreImage(ctx context.Context, data []byte) (map[string]float64, error)
}

var ErrMalformedScores = errors.New("malformed score distribution")

// ValidateScores rejects empty distributions, out-of-range probabilities,
// and totals that deviate from 1.0 by more than SumTolerance.
func ValidateScores(scores map[string]float64) error {
	if len(scores) == 0 {
		return ErrMalformedScores
	}

	var sum float64
	for _, p := range scores {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return ErrMalformedScores
		}
		sum += p
	}

	if math.Abs(sum-1.0) > SumTolerance {
		return ErrMalformedScores
	}
	return nil
}
