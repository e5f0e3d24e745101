package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/purechat/purechat-server/scorer"
)

const (
	defaultBaseURL = "https://api-inference.huggingface.co"

	// Models from the original deployment. Both are hosted on the
	// Inference API free tier.
	defaultTextModel  = "Anvesh18/zeroshot-profanity-filter"
	defaultImageModel = "Falconsai/nsfw_image_detection"
)

type Client struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string

	httpClient *http.Client
}

func NewClient(apiKey string, baseURL ...string) *Client {
	url := defaultBaseURL
	if len(baseURL) > 0 {
		url = baseURL[0]
	}
	return &Client{
		APIKey:     apiKey,
		BaseURL:    url,
		TextModel:  defaultTextModel,
		ImageModel: defaultImageModel,
		httpClient: http.DefaultClient,
	}
}

// ScoreText runs zero-shot classification of text against the candidate
// labels and returns the label-aligned probability distribution.
func (c *Client) ScoreText(ctx context.Context, text string, candidateLabels []string) (map[string]float64, error) {
	input := map[string]interface{}{
		"inputs": text,
		"parameters": map[string]interface{}{
			"candidate_labels": candidateLabels,
		},
	}

	jsonData, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := c.post(ctx, c.modelURL(c.TextModel), "application/json", jsonData)
	if err != nil {
		return nil, err
	}

	// Parse the zero-shot pipeline response. Labels arrive sorted by
	// descending score, aligned index-for-index with the scores array.
	var result struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(result.Labels) != len(result.Scores) || len(result.Labels) != len(candidateLabels) {
		return nil, scorer.ErrMalformedScores
	}

	scores := make(map[string]float64, len(result.Labels))
	for i, label := range result.Labels {
		scores[label] = result.Scores[i]
	}
	for _, label := range candidateLabels {
		if _, ok := scores[label]; !ok {
			return nil, scorer.ErrMalformedScores
		}
	}

	if err := scorer.ValidateScores(scores); err != nil {
		return nil, err
	}

	return scores, nil
}

// ScoreImage runs image classification over the raw image bytes and returns
// the probability distribution over the model's label set.
func (c *Client) ScoreImage(ctx context.Context, data []byte) (map[string]float64, error) {
	body, err := c.post(ctx, c.modelURL(c.ImageModel), "application/octet-stream", data)
	if err != nil {
		return nil, err
	}

	var results []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(results) == 0 {
		return nil, scorer.ErrMalformedScores
	}

	scores := make(map[string]float64, len(results))
	for _, r := range results {
		scores[r.Label] = r.Score
	}

	if err := scorer.ValidateScores(scores); err != nil {
		return nil, err
	}

	return scores, nil
}

func (c *Client) modelURL(model string) string {
	return fmt.Sprintf("%s/models/%s", c.BaseURL, model)
}

func (c *Client) post(ctx context.Context, url, contentType string, payload []byte) ([]byte, error) {
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req = req.WithContext(ctx)

	req.Header.Set("Content-Type", contentType)
	if c.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// The Inference API reports failures (including models still
		// loading) as an error payload.
		var apiError struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(responseBody, &apiError); err == nil && apiError.Error != "" {
			return nil, errors.Errorf("inference api: %s (status %d)", apiError.Error, resp.StatusCode)
		}
		return nil, errors.Errorf("non-200 status code: %d, response: %s", resp.StatusCode, string(responseBody))
	}

	return responseBody, nil
}
