package profile

// Tag is the build tag that enables profiling support. It also names the
// default output subdirectory.
const Tag = "pprof"

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// settings holds the parameters of a profiling session.
type settings struct {
	mode  string
	path  string
	quiet bool
}

// Option configures a profiling session started with [Start].
type Option func(settings) settings

// WithMode selects the profiling mode. See [Modes] for the supported names.
func WithMode(mode string) Option {
	return func(s settings) settings {
		s.mode = mode

		return s
	}
}

// WithPath sets the directory where profile data is written.
func WithPath(path string) Option {
	return func(s settings) settings {
		s.path = path

		return s
	}
}

// WithQuiet suppresses the profiler's own start and stop messages.
func WithQuiet(quiet bool) Option {
	return func(s settings) settings {
		s.quiet = quiet

		return s
	}
}

// Start begins a profiling session and returns a handle for stopping it.
//
// If the binary was built without the pprof tag, or no mode was selected,
// Start returns a no-op [Stopper]. Both Start and Stop are always safe to
// call.
func Start(opts ...Option) Stopper {
	var s settings

	for _, opt := range opts {
		s = opt(s)
	}

	if s.mode == "" {
		return ignore{}
	}

	return start(s)
}

type ignore struct{}

func (ignore) Stop() {}
