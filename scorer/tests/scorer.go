package tests

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/purechat/purechat-server/scorer"
)

var candidateLabels = []string{
	"profane, vulgar, obscene, offensive language",
	"clean, appropriate, respectful language",
}

func RunTextScorerTests(t *testing.T, s scorer.TextScorer, teardown func()) {
	for _, tf := range []func(t *testing.T, s scorer.TextScorer){
		testTextDistribution,
	} {
		tf(t, s)
		teardown()
	}
}

// RunImageScorerTests exercises an image scorer against the provided image
// bytes, which must be an image the backend accepts.
func RunImageScorerTests(t *testing.T, s scorer.ImageScorer, data []byte, teardown func()) {
	for _, tf := range []func(t *testing.T, s scorer.ImageScorer, data []byte){
		testImageDistribution,
	} {
		tf(t, s, data)
		teardown()
	}
}

func testTextDistribution(t *testing.T, s scorer.TextScorer) {
	t.Run("Text distribution", func(t *testing.T) {
		ctx := context.Background()

		scores, err := s.ScoreText(ctx, "This is a friendly text.", candidateLabels)
		require.NoError(t, err)
		require.Len(t, scores, len(candidateLabels))

		var sum float64
		for _, label := range candidateLabels {
			p, ok := scores[label]
			require.True(t, ok, "missing candidate label %q", label)
			require.GreaterOrEqual(t, p, 0.0)
			require.LessOrEqual(t, p, 1.0)
			sum += p
		}
		require.LessOrEqual(t, math.Abs(sum-1.0), scorer.SumTolerance)

		require.NoError(t, scorer.ValidateScores(scores))
	})
}

func testImageDistribution(t *testing.T, s scorer.ImageScorer, data []byte) {
	t.Run("Image distribution", func(t *testing.T) {
		ctx := context.Background()

		scores, err := s.ScoreImage(ctx, data)
		require.NoError(t, err)
		require.NotEmpty(t, scores)

		for label, p := range scores {
			require.GreaterOrEqual(t, p, 0.0, "label %q", label)
			require.LessOrEqual(t, p, 1.0, "label %q", label)
		}

		require.NoError(t, scorer.ValidateScores(scores))
	})
}
