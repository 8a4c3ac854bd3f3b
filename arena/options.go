package arena

import "time"

// DefaultGrowthFactor doubles the capacity on every single-append reallocation.
const DefaultGrowthFactor = 2.0

// Observer receives arena events. Implementations must be cheap; they run
// inline with the append that triggered them.
type Observer interface {
	// OnGrow is called after every reallocation.
	OnGrow(fromRecords, toRecords int, elapsed time.Duration)
	// OnAppendBulk is called after every AppendBulk, successful or not.
	OnAppendBulk(records int, elapsed time.Duration, err error)
}

type noopObserver struct{}

func (noopObserver) OnGrow(int, int, time.Duration)         {}
func (noopObserver) OnAppendBulk(int, time.Duration, error) {}

type options struct {
	allocator    Allocator
	growthFactor float64
	acquirer     MemoryAcquirer
	observer     Observer
}

func defaultOptions() options {
	return options{
		allocator:    HeapAllocator{},
		growthFactor: DefaultGrowthFactor,
		observer:     noopObserver{},
	}
}

// Option is a configuration option for Arena.
type Option func(*options)

// WithAllocator sets the backing allocator. Nil keeps the HeapAllocator.
func WithAllocator(alloc Allocator) Option {
	return func(o *options) {
		if alloc != nil {
			o.allocator = alloc
		}
	}
}

// WithGrowthFactor sets the multiplier applied to the capacity when a single
// append finds the arena full. It must be greater than 1.
func WithGrowthFactor(f float64) Option {
	return func(o *options) {
		o.growthFactor = f
	}
}

// WithMemoryAcquirer reserves every buffer against acquirer before allocating it.
func WithMemoryAcquirer(acquirer MemoryAcquirer) Option {
	return func(o *options) {
		o.acquirer = acquirer
	}
}

// WithObserver registers an Observer. Nil disables observation.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs == nil {
			obs = noopObserver{}
		}
		o.observer = obs
	}
}
