package memory

import (
	"context"
	"sync"
)

type Scorer struct {
	mu sync.RWMutex

	textScore   float64
	textScores  map[string]float64
	imageScores map[string]float64

	textCalls  int
	imageCalls int
}

// NewScorer creates a memory-based scorer with predetermined responses.
// Text scoring assigns textScore to the first candidate label and splits the
// remainder over the rest; image scoring always returns imageScores. Neither
// response is validated, so a deliberately malformed scorer can be built to
// exercise error paths.
func NewScorer(textScore float64, imageScores map[string]float64) *Scorer {
	return &Scorer{
		textScore:   textScore,
		textScores:  make(map[string]float64),
		imageScores: imageScores,
	}
}

// SetTextScore overrides the first-label probability for one exact text.
func (s *Scorer) SetTextScore(text string, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.textScores[text] = score
}

func (s *Scorer) ScoreText(_ context.Context, text string, candidateLabels []string) (map[string]float64, error) {
	s.mu.Lock()
	s.textCalls++
	first := s.textScore
	if override, ok := s.textScores[text]; ok {
		first = override
	}
	s.mu.Unlock()

	scores := make(map[string]float64, len(candidateLabels))
	for i, label := range candidateLabels {
		if i == 0 {
			scores[label] = first
		} else {
			scores[label] = (1 - first) / float64(len(candidateLabels)-1)
		}
	}
	return scores, nil
}

func (s *Scorer) ScoreImage(_ context.Context, _ []byte) (map[string]float64, error) {
	s.mu.Lock()
	s.imageCalls++
	s.mu.Unlock()

	scores := make(map[string]float64, len(s.imageScores))
	for label, score := range s.imageScores {
		scores[label] = score
	}
	return scores, nil
}

// TextCalls reports how many times ScoreText has been invoked.
func (s *Scorer) TextCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.textCalls
}

// ImageCalls reports how many times ScoreImage has been invoked.
func (s *Scorer) ImageCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.imageCalls
}
