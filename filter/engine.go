package filter

import (
	"context"
	"math"

	"github.com/purechat/purechat-server/scorer"
)

// Engine applies the decision threshold to a text scorer's probability
// pair.
type Engine struct {
	scorer    scorer.TextScorer
	threshold float64
}

func NewEngine(s scorer.TextScorer, threshold float64) (*Engine, error) {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, ErrThresholdOutOfRange
	}
	return &Engine{scorer: s, threshold: threshold}, nil
}

// Classify scores text against the fixed candidate labels and applies the
// inclusive threshold rule: a profane probability exactly equal to the
// threshold counts as profane. Every call re-invokes the scorer; there is
// no cache and no retry. Empty text is the caller's validation problem.
func (e *Engine) Classify(ctx context.Context, text string) (*Verdict, error) {
	scores, err := e.scorer.ScoreText(ctx, text, CandidateLabels())
	if err != nil {
		return nil, &ClassificationError{Cause: err}
	}

	pair, err := scorePair(scores)
	if err != nil {
		return nil, &ClassificationError{Cause: err}
	}

	verdict := &Verdict{
		IsProfane:  pair.Profane >= e.threshold,
		Confidence: math.Max(pair.Profane, pair.NonProfane),
		Label:      CleanLabel,
	}
	if pair.Profane >= pair.NonProfane {
		verdict.Label = ProfaneLabel
	}

	return verdict, nil
}

func scorePair(scores map[string]float64) (*ScoreResult, error) {
	profane, ok := scores[ProfaneLabel]
	if !ok {
		return nil, scorer.ErrMalformedScores
	}
	nonProfane, ok := scores[CleanLabel]
	if !ok {
		return nil, scorer.ErrMalformedScores
	}

	pair := &ScoreResult{Profane: profane, NonProfane: nonProfane}
	if err := pair.Validate(); err != nil {
		return nil, err
	}
	return pair, nil
}

// Validate rejects pairs with probabilities outside [0,1] or a total that
// deviates from 1.0 by more than the scorer tolerance.
func (s ScoreResult) Validate() error {
	for _, p := range []float64{s.Profane, s.NonProfane} {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return scorer.ErrMalformedScores
		}
	}
	if math.Abs(s.Profane+s.NonProfane-1.0) > scorer.SumTolerance {
		return scorer.ErrMalformedScores
	}
	return nil
}
