package segbench

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/segbench/arena"
	"github.com/hupe1980/segbench/blobstore"
	"github.com/hupe1980/segbench/document"
	"github.com/hupe1980/segbench/harness"
	"github.com/hupe1980/segbench/model"
	"github.com/hupe1980/segbench/save"
)

// PDFMimeType is the MIME type exported documents are saved with.
const PDFMimeType = "application/pdf"

type initState int

const (
	stateIdle initState = iota
	stateRunning
	stateDone
)

// warmer is implemented by producers that can prepare their assets ahead of
// the first request.
type warmer interface {
	Warm(ctx context.Context) error
}

// Runtime ties the arena, the document producer and the save sink together
// behind a one-time asynchronous initialization. It is safe for concurrent use.
type Runtime struct {
	opts options

	producer document.Producer
	sink     save.Sink
	ownSink  *save.StagedSink
	harness  *harness.Harness

	mu      sync.Mutex
	state   initState
	initErr error
	waiters []chan error
	done    chan struct{}

	ready  atomic.Bool
	closed atomic.Bool
}

// New creates a Runtime. Nothing is allocated or loaded until Initialize.
func New(opts ...Option) *Runtime {
	o := applyOptions(opts)

	r := &Runtime{
		opts:     o,
		producer: o.producer,
		sink:     o.sink,
		done:     make(chan struct{}),
	}

	if r.producer == nil {
		var popts []document.Option
		if o.assets != nil {
			popts = append(popts, document.WithAssets(o.assets))
		}
		popts = append(popts, document.WithLogger(o.logger.Logger))
		r.producer = document.NewPDFProducer(popts...)
	}

	if r.sink == nil {
		dest := o.destination
		if dest == nil {
			dest = blobstore.NewMemoryStore()
		}
		r.ownSink = save.NewStagedSink(dest,
			save.WithReleaseAfter(o.releaseAfter),
			save.WithResourceController(o.controller),
			save.WithLogger(o.logger.Logger),
		)
		r.sink = r.ownSink
	}

	return r
}

// Initialize starts the initialization on the first call and returns a
// channel that receives its single result. Later calls return a channel that
// receives the same result; a failed initialization is never retried.
//
// Cancelling ctx does not abort initialization.
func (r *Runtime) Initialize(ctx context.Context) <-chan error {
	ch := make(chan error, 1)

	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case stateDone:
		ch <- r.initErr
		close(ch)
		return ch
	case stateIdle:
		r.state = stateRunning
		go r.initialize(context.WithoutCancel(ctx))
	}

	r.waiters = append(r.waiters, ch)
	return ch
}

func (r *Runtime) initialize(ctx context.Context) {
	start := time.Now()

	err := r.probeAllocator()
	if err == nil {
		if w, ok := r.producer.(warmer); ok {
			if werr := w.Warm(ctx); werr != nil {
				err = fmt.Errorf("warm producer: %w", werr)
			}
		}
	}
	if err == nil {
		r.harness = harness.New(
			harness.WithArenaOptions(r.arenaOptions()...),
			harness.WithLogger(r.opts.logger.Logger),
		)
	}

	elapsed := time.Since(start)
	r.opts.metricsCollector.RecordInitialize(elapsed, err)
	r.opts.logger.LogInitialize(ctx, r.opts.allocator.Name(), elapsed, err)

	r.mu.Lock()
	r.state = stateDone
	r.initErr = err
	r.ready.Store(err == nil)
	waiters := r.waiters
	r.waiters = nil
	r.mu.Unlock()

	for _, ch := range waiters {
		ch <- err
		close(ch)
	}
	close(r.done)
}

// probeAllocator round-trips one record through an arena built with the
// configured options.
func (r *Runtime) probeAllocator() error {
	a, err := arena.New(1, r.arenaOptions()...)
	if err != nil {
		return fmt.Errorf("probe allocator %s: %w", r.opts.allocator.Name(), err)
	}

	want := model.Default()
	i, err := a.Append(want)
	if err == nil {
		var got model.Segment
		if got, err = a.Get(i); err == nil && got != want {
			err = errors.New("record did not round-trip")
		}
	}

	if ferr := a.Free(); ferr != nil {
		err = errors.Join(err, ferr)
	}
	if err != nil {
		return fmt.Errorf("probe allocator %s: %w", r.opts.allocator.Name(), err)
	}
	return nil
}

func (r *Runtime) arenaOptions() []arena.Option {
	opts := []arena.Option{
		arena.WithAllocator(r.opts.allocator),
		arena.WithGrowthFactor(r.opts.growthFactor),
		arena.WithObserver(arenaObserver{mc: r.opts.metricsCollector}),
	}
	if r.opts.controller != nil {
		opts = append(opts, arena.WithMemoryAcquirer(r.opts.controller))
	}
	return opts
}

// Ready reports whether initialization has succeeded and Close has not been called.
func (r *Runtime) Ready() bool {
	return r.ready.Load() && !r.closed.Load()
}

func (r *Runtime) checkReady() error {
	if r.closed.Load() {
		return fmt.Errorf("%w: runtime closed", ErrIllegalState)
	}
	if !r.ready.Load() {
		return fmt.Errorf("%w: runtime not initialized", ErrIllegalState)
	}
	return nil
}

// NewArena creates an arena with the configured allocator, growth factor,
// memory budget and metrics. The caller owns it and must Free it.
func (r *Runtime) NewArena(initialCapacity int) (*arena.Arena, error) {
	if err := r.checkReady(); err != nil {
		return nil, err
	}

	a, err := arena.New(initialCapacity, r.arenaOptions()...)
	if err != nil {
		return nil, translateError(err)
	}
	return a, nil
}

// Harness returns the benchmark harness bound to the Runtime's arena settings.
func (r *Runtime) Harness() (*harness.Harness, error) {
	if err := r.checkReady(); err != nil {
		return nil, err
	}
	return r.harness, nil
}

// Document produces and validates the document for key.
func (r *Runtime) Document(ctx context.Context, key string) ([]byte, error) {
	if err := r.checkReady(); err != nil {
		return nil, err
	}

	start := time.Now()
	doc, err := r.producer.Document(ctx, key)
	if err == nil {
		err = document.Validate(doc)
	}
	if err != nil {
		doc = nil
	}

	r.opts.metricsCollector.RecordDocument(key, len(doc), time.Since(start), err)
	r.opts.logger.LogDocument(ctx, key, len(doc), err)

	return doc, translateError(err)
}

// Export produces the document for key and saves it as filename.
func (r *Runtime) Export(ctx context.Context, key, filename string) error {
	doc, err := r.Document(ctx, key)
	if err != nil {
		return err
	}

	start := time.Now()
	err = r.sink.Save(ctx, doc, filename, PDFMimeType)
	size := len(doc)
	if err != nil {
		size = 0
	}

	r.opts.metricsCollector.RecordSave(size, time.Since(start), err)
	r.opts.logger.LogExport(ctx, key, filename, err)

	return translateError(err)
}

// Close waits for a running initialization, then releases pending transient
// references of the built-in sink. Every later call fails with
// ErrIllegalState. Close is idempotent.
func (r *Runtime) Close() error {
	if r.closed.Swap(true) {
		return nil
	}

	r.mu.Lock()
	started := r.state != stateIdle
	r.mu.Unlock()
	if started {
		<-r.done
	}

	if r.ownSink != nil {
		return r.ownSink.Close()
	}
	return nil
}
