package filter

// Candidate labels for zero-shot text classification. The scorer treats
// these as mutually exclusive and returns a probability pair over them.
const (
	ProfaneLabel = "profane, vulgar, obscene, offensive language"
	CleanLabel   = "clean, appropriate, respectful language"
)

// CandidateLabels returns the fixed two-label set, profane side first.
func CandidateLabels() []string {
	return []string{ProfaneLabel, CleanLabel}
}

// Mode selects the censoring policy applied to profane text.
type Mode string

const (
	// ModeFull masks every non-whitespace rune of the whole text.
	ModeFull Mode = "full"
	// ModeWord re-classifies sentence segments and masks only the
	// profane ones.
	ModeWord Mode = "word"
	// ModeAggressive replaces the whole text with a fixed notice.
	ModeAggressive Mode = "aggressive"
)

const (
	DefaultThreshold = 0.5
	DefaultMode      = ModeFull
)

// ScoreResult is one classification's probability pair, softmax output
// over the two candidate labels.
type ScoreResult struct {
	Profane    float64
	NonProfane float64
}

// Verdict is the boolean decision derived from a probability pair via the
// threshold rule. Confidence is the dominant probability and Label names
// the dominant side.
type Verdict struct {
	IsProfane  bool    `json:"is_profane"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
}

// FilterResult is the externally visible artifact of one filter operation.
// Original always carries the unmodified input alongside the transform.
type FilterResult struct {
	Original   string  `json:"original"`
	Filtered   string  `json:"filtered"`
	IsProfane  bool    `json:"is_profane"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
}

// ImageVerdict mirrors Verdict over a multi-class distribution.
type ImageVerdict struct {
	IsProfane  bool               `json:"is_profane"`
	Confidence float64            `json:"confidence"`
	Label      string             `json:"label"`
	AllScores  map[string]float64 `json:"all_scores"`
}

// UnsafeLabelTable names the subset of an image model's label set that
// counts toward the profanity decision. The mapping is fixed, versioned
// configuration, never inferred from label names at runtime.
type UnsafeLabelTable struct {
	Version string
	Labels  []string
}

// DefaultUnsafeLabels is the v1 table for the default image model, whose
// label set is {normal, nsfw}.
func DefaultUnsafeLabels() UnsafeLabelTable {
	return UnsafeLabelTable{
		Version: "v1",
		Labels:  []string{"nsfw"},
	}
}

// Contains reports whether label is part of the unsafe subset.
func (t UnsafeLabelTable) Contains(label string) bool {
	for _, l := range t.Labels {
		if l == label {
			return true
		}
	}
	return false
}
