package filter

import "math"

type Option func(*Options)

func WithThreshold(threshold float64) Option {
	return func(o *Options) {
		o.Threshold = threshold
	}
}

func WithMode(mode Mode) Option {
	return func(o *Options) {
		o.Mode = mode
	}
}

type Options struct {
	Threshold float64
	Mode      Mode
}

func DefaultOptions() Options {
	return Options{
		Threshold: DefaultThreshold,
		Mode:      DefaultMode,
	}
}

// Validate rejects out-of-range thresholds and unrecognized modes. A
// default is never silently substituted.
func (o Options) Validate() error {
	if math.IsNaN(o.Threshold) || o.Threshold < 0 || o.Threshold > 1 {
		return ErrThresholdOutOfRange
	}
	switch o.Mode {
	case ModeFull, ModeWord, ModeAggressive:
	default:
		return ErrUnknownMode
	}
	return nil
}

func ApplyOptions(defaults Options, options ...Option) Options {
	applied := defaults
	for _, option := range options {
		option(&applied)
	}
	return applied
}
