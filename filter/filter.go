package filter

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/purechat/purechat-server/scorer"
)

// Filter combines the scorers, the decision engine, and the censoring
// policy behind the operations the transport layers consume. Instance
// defaults are set at construction; per-call options layer over them
// without ever mutating them.
type Filter struct {
	log      *zap.Logger
	text     scorer.TextScorer
	image    scorer.ImageScorer
	defaults Options
	unsafe   UnsafeLabelTable
}

func NewFilter(
	log *zap.Logger,
	text scorer.TextScorer,
	image scorer.ImageScorer,
	unsafe UnsafeLabelTable,
	opts ...Option,
) (*Filter, error) {
	defaults := ApplyOptions(DefaultOptions(), opts...)
	if err := defaults.Validate(); err != nil {
		return nil, err
	}

	if unsafe.Version == "" {
		unsafe = DefaultUnsafeLabels()
	}

	return &Filter{
		log:      log,
		text:     text,
		image:    image,
		defaults: defaults,
		unsafe:   unsafe,
	}, nil
}

// Filter classifies text, censors it according to the applied mode, and
// assembles the result. Options are validated before the text so that
// configuration mistakes never cost an inference call.
func (f *Filter) Filter(ctx context.Context, text string, opts ...Option) (*FilterResult, error) {
	applied := ApplyOptions(f.defaults, opts...)
	if err := applied.Validate(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	engine, err := NewEngine(f.text, applied.Threshold)
	if err != nil {
		return nil, err
	}

	verdict, err := engine.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	filtered, err := engine.Censor(ctx, text, verdict, applied.Mode)
	if err != nil {
		return nil, err
	}

	f.log.Debug(
		"filtered text",
		zap.Bool("is_profane", verdict.IsProfane),
		zap.Float64("confidence", verdict.Confidence),
		zap.String("mode", string(applied.Mode)),
	)

	return &FilterResult{
		Original:   text,
		Filtered:   filtered,
		IsProfane:  verdict.IsProfane,
		Confidence: verdict.Confidence,
		Label:      verdict.Label,
	}, nil
}

// Defaults returns the options applied when a call provides no overrides.
func (f *Filter) Defaults() Options {
	return f.defaults
}

// IsProfane classifies text without censoring, for callers that only need
// the boolean/label/confidence triple.
func (f *Filter) IsProfane(ctx context.Context, text string, opts ...Option) (*Verdict, error) {
	applied := ApplyOptions(f.defaults, opts...)
	if err := applied.Validate(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	engine, err := NewEngine(f.text, applied.Threshold)
	if err != nil {
		return nil, err
	}

	return engine.Classify(ctx, text)
}

// CheckImage scores image bytes and applies the threshold rule against the
// configured unsafe label subset. The verdict is profane when the summed
// probability of the unsafe labels reaches the threshold.
func (f *Filter) CheckImage(ctx context.Context, data []byte, opts ...Option) (*ImageVerdict, error) {
	applied := ApplyOptions(f.defaults, opts...)
	if err := applied.Validate(); err != nil {
		return nil, err
	}

	scores, err := f.image.ScoreImage(ctx, data)
	if err != nil {
		return nil, &ClassificationError{Cause: err}
	}
	if err := scorer.ValidateScores(scores); err != nil {
		return nil, &ClassificationError{Cause: err}
	}

	labels := make([]string, 0, len(scores))
	for label := range scores {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var (
		topLabel  string
		topScore  = -1.0
		unsafeSum float64
	)
	for _, label := range labels {
		if scores[label] > topScore {
			topLabel, topScore = label, scores[label]
		}
		if f.unsafe.Contains(label) {
			unsafeSum += scores[label]
		}
	}

	verdict := &ImageVerdict{
		IsProfane:  unsafeSum >= applied.Threshold,
		Confidence: topScore,
		Label:      topLabel,
		AllScores:  scores,
	}

	f.log.Debug(
		"checked image",
		zap.Bool("is_profane", verdict.IsProfane),
		zap.String("label", verdict.Label),
		zap.String("unsafe_labels_version", f.unsafe.Version),
	)

	return verdict, nil
}
