package segbench

import (
	"log/slog"
	"time"

	"github.com/hupe1980/segbench/arena"
	"github.com/hupe1980/segbench/blobstore"
	"github.com/hupe1980/segbench/document"
	"github.com/hupe1980/segbench/resource"
	"github.com/hupe1980/segbench/save"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	allocator        arena.Allocator
	growthFactor     float64
	controller       *resource.Controller
	producer         document.Producer
	assets           document.AssetSource
	sink             save.Sink
	destination      blobstore.Store
	releaseAfter     time.Duration
}

// Option configures a Runtime.
type Option func(*options)

// WithMetricsCollector sets the metrics collector.
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger sets a structured logger for observability.
// If nil is passed, NoopLogger is used (no logging).
//
// Example with JSON logging:
//
//	logger := segbench.NewJSONLogger(slog.LevelInfo)
//	rt := segbench.New(segbench.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel is a convenience option that creates a text logger at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithAllocator sets the allocator used for every arena the Runtime creates.
// It is probed once during initialization.
func WithAllocator(alloc arena.Allocator) Option {
	return func(o *options) {
		o.allocator = alloc
	}
}

// WithGrowthFactor sets the arena growth factor. It must be greater than 1;
// an invalid factor makes initialization fail.
func WithGrowthFactor(f float64) Option {
	return func(o *options) {
		o.growthFactor = f
	}
}

// WithResourceController bounds arena memory and sink IO.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithProducer replaces the built-in PDF producer.
func WithProducer(p document.Producer) Option {
	return func(o *options) {
		o.producer = p
	}
}

// WithAssets sets the image source of the built-in PDF producer.
// Ignored when WithProducer is used.
func WithAssets(src document.AssetSource) Option {
	return func(o *options) {
		o.assets = src
	}
}

// WithSink replaces the save sink. The Runtime does not close a sink
// passed this way.
func WithSink(s save.Sink) Option {
	return func(o *options) {
		o.sink = s
	}
}

// WithDestination sets the store exported documents are saved to.
// Ignored when WithSink is used. Defaults to an in-memory store.
func WithDestination(store blobstore.Store) Option {
	return func(o *options) {
		o.destination = store
	}
}

// WithReleaseAfter sets how long the default sink keeps the transient
// reference of an export alive.
func WithReleaseAfter(d time.Duration) Option {
	return func(o *options) {
		o.releaseAfter = d
	}
}

func applyOptions(opts []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		allocator:        arena.HeapAllocator{},
		growthFactor:     arena.DefaultGrowthFactor,
		releaseAfter:     save.DefaultReleaseAfter,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.allocator == nil {
		o.allocator = arena.HeapAllocator{}
	}
	return o
}
