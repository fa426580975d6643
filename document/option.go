package document

// Option configures [Load].
type Option func(options) options

type options struct {
	partsDir string
}

func apply(o options, opts ...Option) options {
	for _, opt := range opts {
		if opt != nil {
			o = opt(o)
		}
	}

	return o
}

// WithPartsDir extracts the non-AML parts of an AMLX container into dir.
// An empty dir disables extraction.
func WithPartsDir(dir string) Option {
	return func(o options) options {
		o.partsDir = dir

		return o
	}
}
