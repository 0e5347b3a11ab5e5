package log

// Option transforms a config, returning the updated copy.
type Option func(config) config

// apply folds opts over cfg in order.
func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}
