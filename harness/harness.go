package harness

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/hupe1980/segbench/arena"
	"github.com/hupe1980/segbench/model"
	"github.com/hupe1980/segbench/reference"
)

// Harness runs footprint comparisons. It holds no per-run state; runs
// should not overlap because heap deltas are process-wide.
type Harness struct {
	opts options
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return &Harness{opts: o}
}

// RunInArena fills a fresh arena with n default records in one bulk append.
func (h *Harness) RunInArena(n int) (ArenaReport, error) {
	return h.runArena(n, model.Default, "measured")
}

// RunRealistic fills a fresh arena with n records drawn from src. The result
// is illustrative only.
func (h *Harness) RunRealistic(n int, src model.Source) (ArenaReport, error) {
	return h.runArena(n, model.RealisticFactory(src), "realistic")
}

func (h *Harness) runArena(n int, newRecord func() model.Segment, kind string) (report ArenaReport, err error) {
	before := heapAlloc()
	start := time.Now()

	a, err := arena.New(h.opts.initialCapacity, h.opts.arenaOptions...)
	if err != nil {
		return ArenaReport{}, fmt.Errorf("harness: new arena: %w", err)
	}
	defer func() {
		if ferr := a.Free(); ferr != nil {
			err = errors.Join(err, fmt.Errorf("harness: free arena: %w", ferr))
		}
	}()

	if _, err := a.AppendBulk(n, newRecord); err != nil {
		return ArenaReport{}, fmt.Errorf("harness: %s arena run of %d records: %w", kind, n, err)
	}
	elapsed := time.Since(start)

	st := a.Stats()
	report = ArenaReport{
		Records:        st.Length,
		AllocatedBytes: a.AllocatedSize(),
		CapacityBytes:  a.CapacityBytes(),
		Reallocations:  st.Reallocations,
		HeapBytes:      heapDelta(before),
		Allocator:      st.Allocator,
		Elapsed:        elapsed,
	}
	runtime.KeepAlive(a)

	h.opts.logger.Debug("arena run completed",
		"kind", kind,
		"records", report.Records,
		"allocated_bytes", report.AllocatedBytes,
		"reallocations", report.Reallocations,
		"elapsed", elapsed,
	)
	return report, nil
}

// RunInReference fills a fresh reference collection with n default records.
func (h *Harness) RunInReference(n int) ReferenceReport {
	before := heapAlloc()
	start := time.Now()

	c := reference.New()
	c.AppendBulk(n, model.Default)
	elapsed := time.Since(start)

	report := ReferenceReport{
		Records:   c.Len(),
		HeapBytes: heapDelta(before),
		Elapsed:   elapsed,
	}
	runtime.KeepAlive(c)

	h.opts.logger.Debug("reference run completed",
		"records", report.Records,
		"heap_bytes", report.HeapBytes,
		"elapsed", elapsed,
	)
	return report
}

// Compare runs the same workload of n records against both stores.
func (h *Harness) Compare(n int) (Comparison, error) {
	ar, err := h.RunInArena(n)
	if err != nil {
		return Comparison{}, err
	}
	rr := h.RunInReference(n)

	cmp := Comparison{Arena: ar, Reference: rr}
	h.opts.logger.Info("comparison completed",
		"records", n,
		"arena_bytes", ar.AllocatedBytes,
		"reference_heap_bytes", rr.HeapBytes,
		"arena_smaller", cmp.ArenaSmaller(),
	)
	return cmp, nil
}

func heapAlloc() uint64 {
	runtime.GC()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapAlloc
}

// heapDelta returns the live heap growth since before, never negative.
func heapDelta(before uint64) int64 {
	after := heapAlloc()
	if after <= before {
		return 0
	}
	return int64(after - before) //nolint:gosec // bounded by the heap size
}
