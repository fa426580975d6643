package mapping

import (
	"context"
	"io"
	"sync"

	"github.com/ardnew/docxform/log"
	"github.com/ardnew/docxform/schema"
)

// Option configures loading and transformation.
type Option func(*options)

// PostProcessor edits the root instance after a transformation. reg is the
// registry the instance was built with.
type PostProcessor func(ctx context.Context, reg *schema.Registry, root *schema.Instance) error

type options struct {
	logger   log.Logger
	registry *schema.Registry
	output   io.Writer
	post     []PostProcessor
}

//nolint:gochecknoglobals
var defaultRegistry = sync.OnceValue(schema.Default)

func applyDefaults(o *options) {
	o.logger = log.Default()
	o.registry = defaultRegistry()
	o.post = []PostProcessor{AutoWireSubmodels}
}

func applyOptions(o *options, opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
}

func makeOptions(opts ...Option) options {
	var o options

	applyDefaults(&o)
	applyOptions(&o, opts...)

	return o
}

// customRegistry reports whether the options select a registry other than
// the shared AAS registry.
func (o options) customRegistry() bool {
	return o.registry != defaultRegistry()
}

// WithLogger sets the logger. The default is the package-level logger.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger.Logger != nil {
			o.logger = logger
		}
	}
}

// WithRegistry sets the schema registry templates are checked against. The
// default is the AAS metamodel.
func WithRegistry(r *schema.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

// WithOutput sets the writer of the println builtin.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithPostProcessors replaces the post-processors run after a
// transformation. The default is [AutoWireSubmodels]. Passing none
// disables post-processing.
func WithPostProcessors(post ...PostProcessor) Option {
	return func(o *options) { o.post = post }
}
