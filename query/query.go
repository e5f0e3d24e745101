package query

type Ordering uint8

const (
	Ascending Ordering = iota
	Descending
)

type Option func(*Options)

func WithLimit(limit int) Option {
	return func(o *Options) {
		if limit > 0 {
			o.Limit = limit
		}
	}
}

func WithOrder(order Ordering) Option {
	return func(o *Options) {
		o.Order = order
	}
}

func WithAscending() Option {
	return func(o *Options) {
		o.Order = Ascending
	}
}

func WithDescending() Option {
	return func(o *Options) {
		o.Order = Descending
	}
}

type Options struct {
	Limit int
	Order Ordering
}

func DefaultOptions() Options {
	return Options{
		Limit: 100,
		Order: Ascending,
	}
}

func ApplyOptions(options ...Option) Options {
	applied := DefaultOptions()
	for _, option := range options {
		option(&applied)
	}
	return applied
}
