package mapping

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/docxform/lang"
)

// globalCache stores loaded specifications keyed by source hash.
//
//nolint:gochecknoglobals
var globalCache sync.Map

// state tracks the loading of one source.
type state struct {
	once sync.Once
	spec *Specification
	err  error
}

// LoadFile reads the specification at path. See [LoadReader].
func LoadFile(ctx context.Context, path string, opts ...Option) (*Specification, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrReadSpecification.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	spec, err := LoadReader(ctx, f, opts...)
	if err != nil {
		return nil, err
	}

	return spec, nil
}

// LoadReader reads a specification from r. Specifications loaded against
// the default registry are cached by content, so loading the same source
// again returns the same [*Specification].
func LoadReader(ctx context.Context, r io.Reader, opts ...Option) (*Specification, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadSpecification.Wrap(err).
			With(slog.String("source", "reader"))
	}

	o := makeOptions(opts...)

	o.logger.TraceContext(
		ctx,
		"read mapping specification",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	if o.customRegistry() {
		o.logger.TraceContext(ctx, "cache bypass", slog.Bool("custom_registry", true))

		return LoadBytes(ctx, data, opts...)
	}

	return loadCached(ctx, data, o, opts...)
}

// LoadBytes parses the specification in data without consulting the cache.
func LoadBytes(ctx context.Context, data []byte, opts ...Option) (*Specification, error) {
	raw, err := lang.DecodeBytes(data)
	if err != nil {
		return nil, ErrReadSpecification.Wrap(err)
	}

	return Parse(ctx, raw, opts...)
}

func loadCached(ctx context.Context, data []byte, o options, opts ...Option) (*Specification, error) {
	hash := xxh3.Hash(data)
	key := strconv.FormatUint(hash, 36)

	entry := new(state)
	v, hit := globalCache.LoadOrStore(key, entry)

	s, ok := v.(*state)
	if !ok {
		return nil, ErrInvalidSpecification.
			With(slog.String("issue", "invalid metadata type in cache"))
	}

	o.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	s.once.Do(func() {
		s.spec, s.err = LoadBytes(ctx, data, opts...)
	})

	return s.spec, s.err
}

// ClearCache removes all cached specifications.
func ClearCache() {
	globalCache.Clear()
}
