package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/purechat/purechat-server/scorer"
	"github.com/purechat/purechat-server/scorer/tests"
)

var candidateLabels = []string{
	"profane, vulgar, obscene, offensive language",
	"clean, appropriate, respectful language",
}

func createMockServer(statusCode int, response any) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(response)
	}))
}

func TestMockTextScorer(t *testing.T) {
	// Simulates the zero-shot pipeline response, labels sorted by
	// descending score.
	server := createMockServer(http.StatusOK, map[string]any{
		"sequence": "This is a friendly text.",
		"labels": []string{
			"clean, appropriate, respectful language",
			"profane, vulgar, obscene, offensive language",
		},
		"scores": []float64{0.98, 0.02},
	})
	defer server.Close()

	client := NewClient("dummy-api-key", server.URL)

	tests.RunTextScorerTests(t, client, func() {
		// Teardown logic...
	})
}

func TestMockImageScorer(t *testing.T) {
	server := createMockServer(http.StatusOK, []map[string]any{
		{"label": "normal", "score": 0.97},
		{"label": "nsfw", "score": 0.03},
	})
	defer server.Close()

	client := NewClient("dummy-api-key", server.URL)

	// The mock never decodes the payload, so any bytes will do.
	tests.RunImageScorerTests(t, client, []byte("not a real image"), func() {
		// Teardown logic...
	})
}

func TestMalformedTextResponses(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name     string
		response map[string]any
	}{
		{
			name: "scores out of range",
			response: map[string]any{
				"labels": candidateLabels,
				"scores": []float64{1.4, -0.4},
			},
		},
		{
			name: "scores do not sum to one",
			response: map[string]any{
				"labels": candidateLabels,
				"scores": []float64{0.6, 0.6},
			},
		},
		{
			name: "missing label",
			response: map[string]any{
				"labels": candidateLabels[:1],
				"scores": []float64{1.0},
			},
		},
		{
			name: "unexpected labels",
			response: map[string]any{
				"labels": []string{"foo", "bar"},
				"scores": []float64{0.7, 0.3},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			server := createMockServer(http.StatusOK, tc.response)
			defer server.Close()

			client := NewClient("dummy-api-key", server.URL)

			_, err := client.ScoreText(ctx, "some text", candidateLabels)
			require.ErrorIs(t, err, scorer.ErrMalformedScores)
		})
	}
}

func TestAPIErrorSurfaced(t *testing.T) {
	server := createMockServer(http.StatusServiceUnavailable, map[string]any{
		"error":          "Model Anvesh18/zeroshot-profanity-filter is currently loading",
		"estimated_time": 20.0,
	})
	defer server.Close()

	client := NewClient("dummy-api-key", server.URL)

	_, err := client.ScoreText(context.Background(), "some text", candidateLabels)
	require.Error(t, err)
	require.Contains(t, err.Error(), "currently loading")
}

// Test the real thing, requires a Hugging Face API token
func TestHuggingFaceScorer(t *testing.T) {
	_ = godotenv.Load()

	apiKey := os.Getenv("HF_API_TOKEN")
	if apiKey == "" {
		t.Skip("HF_API_TOKEN is not set, skipping integration test")
	}

	client := NewClient(apiKey)

	tests.RunTextScorerTests(t, client, func() {
		// Teardown logic...
	})

	tests.RunImageScorerTests(t, client, encodeTestPNG(t), func() {
		// Teardown logic...
	})
}

func encodeTestPNG(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: 120, G: 120, B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
