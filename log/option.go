package log

// Option configures a [Logger]. Options are applied in order, so later
// options override earlier ones.
type Option func(config) config

func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		if opt != nil {
			cfg = opt(cfg)
		}
	}

	return cfg
}
