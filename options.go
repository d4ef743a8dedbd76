package hexzone

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/hexzone/codec"
	"github.com/hupe1980/hexzone/overlap"
	"github.com/hupe1980/hexzone/resource"
)

// DefaultExtension is the file extension of persisted cell sets.
const DefaultExtension = ".h3idz"

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	controller       *resource.Controller
	workers          int
	extension        string
	compression      codec.Compression
	level            int
	strict           bool
	strategy         overlap.Strategy
}

// Option configures a Client.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &hexzone.BasicMetricsCollector{}
//	client := hexzone.New(store, hexzone.WithMetricsCollector(metrics))
//	// ... use client ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController bounds concurrent artifact loads, memory held by
// loaded artifacts and artifact IO throughput.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithWorkers sets the size of the worker pools used for rasterization,
// compaction and overlap detection. Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithExtension sets the file extension Find and Lookup consider when
// listing a prefix. Defaults to DefaultExtension.
func WithExtension(ext string) Option {
	return func(o *options) {
		o.extension = ext
	}
}

// WithCompression sets the compression of written artifacts. Reads detect
// the compression of each artifact, except for codec.None which is then
// assumed for reads as well.
func WithCompression(c codec.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCompressionLevel sets the compression level of written artifacts.
func WithCompressionLevel(level int) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithStrictDecoding rejects artifacts ending in a partial record instead of
// ignoring the remainder.
func WithStrictDecoding() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithOverlapStrategy selects the overlap detection strategy.
func WithOverlapStrategy(s overlap.Strategy) Option {
	return func(o *options) {
		o.strategy = s
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		workers:          runtime.GOMAXPROCS(0),
		extension:        DefaultExtension,
		compression:      codec.Gzip,
		level:            codec.DefaultLevel,
		strategy:         overlap.Indexed,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

func (o options) writeOptions() []codec.Option {
	return []codec.Option{codec.WithCompression(o.compression), codec.WithLevel(o.level)}
}

func (o options) readOptions() []codec.Option {
	var opts []codec.Option
	if o.compression == codec.None {
		opts = append(opts, codec.WithCompression(codec.None))
	}
	if o.strict {
		opts = append(opts, codec.WithStrict())
	}
	return opts
}
