package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/purechat/purechat-server/scorer"
	"github.com/purechat/purechat-server/scorer/memory"
)

type failingScorer struct {
	err error
}

func (s failingScorer) ScoreText(context.Context, string, []string) (map[string]float64, error) {
	return nil, s.err
}

func (s failingScorer) ScoreImage(context.Context, []byte) (map[string]float64, error) {
	return nil, s.err
}

func TestClassifyInclusiveBoundary(t *testing.T) {
	ctx := context.Background()

	// A probability exactly equal to the threshold counts as profane.
	engine, err := NewEngine(memory.NewScorer(0.5, nil), 0.5)
	require.NoError(t, err)

	verdict, err := engine.Classify(ctx, "borderline text")
	require.NoError(t, err)
	require.True(t, verdict.IsProfane)
	require.Equal(t, ProfaneLabel, verdict.Label)
	require.InDelta(t, 0.5, verdict.Confidence, 1e-9)
}

func TestClassifyBelowThreshold(t *testing.T) {
	ctx := context.Background()

	engine, err := NewEngine(memory.NewScorer(0.2, nil), 0.5)
	require.NoError(t, err)

	verdict, err := engine.Classify(ctx, "a nice message")
	require.NoError(t, err)
	require.False(t, verdict.IsProfane)
	require.Equal(t, CleanLabel, verdict.Label)
	require.InDelta(t, 0.8, verdict.Confidence, 1e-9)
}

func TestClassifyLabelFollowsDominance(t *testing.T) {
	ctx := context.Background()

	// A low threshold can flag text whose dominant side is still clean.
	// The label names the dominant side, not the decision.
	engine, err := NewEngine(memory.NewScorer(0.3, nil), 0.2)
	require.NoError(t, err)

	verdict, err := engine.Classify(ctx, "mildly rude text")
	require.NoError(t, err)
	require.True(t, verdict.IsProfane)
	require.Equal(t, CleanLabel, verdict.Label)
	require.InDelta(t, 0.7, verdict.Confidence, 1e-9)
}

func TestNewEngineThresholdRange(t *testing.T) {
	s := memory.NewScorer(0.5, nil)

	for _, threshold := range []float64{-0.1, 1.1, 2} {
		_, err := NewEngine(s, threshold)
		require.ErrorIs(t, err, ErrThresholdOutOfRange)
	}

	for _, threshold := range []float64{0, 0.5, 1} {
		_, err := NewEngine(s, threshold)
		require.NoError(t, err)
	}
}

func TestClassifyRejectsMalformedPair(t *testing.T) {
	ctx := context.Background()

	engine, err := NewEngine(memory.NewScorer(1.5, nil), 0.5)
	require.NoError(t, err)

	verdict, err := engine.Classify(ctx, "some text")
	require.Nil(t, verdict)
	require.ErrorIs(t, err, scorer.ErrMalformedScores)

	var ce *ClassificationError
	require.ErrorAs(t, err, &ce)
}

func TestClassifyPropagatesScorerFailure(t *testing.T) {
	ctx := context.Background()

	engine, err := NewEngine(failingScorer{err: errors.New("inference down")}, 0.5)
	require.NoError(t, err)

	verdict, err := engine.Classify(ctx, "some text")
	require.Nil(t, verdict)
	require.ErrorContains(t, err, "inference down")

	var ce *ClassificationError
	require.ErrorAs(t, err, &ce)
}

func TestClassifyScoresOncePerCall(t *testing.T) {
	ctx := context.Background()

	s := memory.NewScorer(0.5, nil)
	engine, err := NewEngine(s, 0.5)
	require.NoError(t, err)

	_, err = engine.Classify(ctx, "some text")
	require.NoError(t, err)
	require.Equal(t, 1, s.TextCalls())

	_, err = engine.Classify(ctx, "some text")
	require.NoError(t, err)
	require.Equal(t, 2, s.TextCalls())
}
