package arena

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/segbench/internal/mmap"
	"github.com/hupe1980/segbench/model"
	"github.com/hupe1980/segbench/resource"
	"github.com/hupe1980/segbench/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArena(t *testing.T, initialCapacity int, opts ...Option) *Arena {
	t.Helper()

	a, err := New(initialCapacity, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Free() })
	return a
}

// doublings is the number of reallocations needed to grow c0 to at least n by doubling.
func doublings(c0, n int) uint64 {
	var count uint64
	for c := c0; c < n; c *= 2 {
		count++
	}
	return count
}

func TestNew(t *testing.T) {
	t.Run("zero capacity", func(t *testing.T) {
		a := newArena(t, 0)

		assert.Equal(t, 0, a.Len())
		assert.Equal(t, 0, a.Cap())
		assert.Equal(t, int64(0), a.AllocatedSize())
		assert.Equal(t, "heap", a.Stats().Allocator)
	})

	t.Run("initial capacity is not a reallocation", func(t *testing.T) {
		a := newArena(t, 64)

		assert.Equal(t, 64, a.Cap())
		assert.Equal(t, int64(64*model.SegmentSize), a.CapacityBytes())
		assert.Zero(t, a.Stats().Reallocations)
	})

	t.Run("negative capacity", func(t *testing.T) {
		_, err := New(-1)
		assert.ErrorIs(t, err, ErrAllocationFailure)
	})

	t.Run("invalid growth factor", func(t *testing.T) {
		for _, f := range []float64{0, 1, -2, math.NaN(), math.Inf(1)} {
			_, err := New(1, WithGrowthFactor(f))
			assert.ErrorIs(t, err, ErrInvalidGrowthFactor, "factor %v", f)
		}
	})
}

func TestAppendBulk_LengthAndCapacity(t *testing.T) {
	for _, n := range []int{0, 1, 7, 64, 1000, 100_000} {
		a := newArena(t, 0)

		r, err := a.AppendBulk(n, nil)
		require.NoError(t, err)

		assert.Equal(t, n, a.Len())
		assert.GreaterOrEqual(t, a.Cap(), a.Len())
		assert.Equal(t, Index(0), r.Start)
		assert.Equal(t, n, r.Len())
		assert.Equal(t, int64(n)*model.SegmentSize, a.AllocatedSize())
	}
}

func TestAppendBulk_AtMostOneReallocation(t *testing.T) {
	for _, n := range []int{1, 10, 1000, 1_000_000} {
		a := newArena(t, 1)

		_, err := a.AppendBulk(n, model.Default)
		require.NoError(t, err)

		assert.LessOrEqual(t, a.Stats().Reallocations, uint64(1), "n=%d", n)
		assert.Equal(t, n, a.Len())
	}
}

func TestAppendBulk_GrowsAtLeastByFactor(t *testing.T) {
	a := newArena(t, 100)

	_, err := a.AppendBulk(101, nil)
	require.NoError(t, err)
	assert.Equal(t, 200, a.Cap())

	_, err = a.AppendBulk(1000, nil)
	require.NoError(t, err)
	assert.Equal(t, 1101, a.Cap())
	assert.Equal(t, uint64(2), a.Stats().Reallocations)
}

func TestAppend_ReallocationCount(t *testing.T) {
	for _, tc := range []struct{ c0, n int }{
		{1, 1},
		{1, 10},
		{1, 1000},
		{1, 1_000_000},
		{16, 1000},
		{3, 10},
	} {
		a := newArena(t, tc.c0)

		for i := 0; i < tc.n; i++ {
			_, err := a.Append(model.Default())
			require.NoError(t, err)
		}

		expected := uint64(math.Ceil(math.Log2(float64(tc.n) / float64(tc.c0))))
		if tc.n <= tc.c0 {
			expected = 0
		}
		assert.Equal(t, expected, a.Stats().Reallocations, "c0=%d n=%d", tc.c0, tc.n)
		assert.Equal(t, doublings(tc.c0, tc.n), a.Stats().Reallocations)
		assert.Equal(t, tc.n, a.Len())
	}
}

func TestAppend_FromZeroCapacity(t *testing.T) {
	a := newArena(t, 0)

	idx, err := a.Append(model.Default())
	require.NoError(t, err)

	assert.Equal(t, Index(0), idx)
	assert.Equal(t, 1, a.Cap())
	assert.Equal(t, uint64(1), a.Stats().Reallocations)
}

func TestGrowthFactor(t *testing.T) {
	a := newArena(t, 1, WithGrowthFactor(1.5))

	var caps []int
	for i := 0; i < 8; i++ {
		_, err := a.Append(model.Default())
		require.NoError(t, err)
		if len(caps) == 0 || caps[len(caps)-1] != a.Cap() {
			caps = append(caps, a.Cap())
		}
	}

	// ceil(1*1.5)=2, ceil(2*1.5)=3, ceil(3*1.5)=5, ceil(5*1.5)=8
	assert.Equal(t, []int{1, 2, 3, 5, 8}, caps)
}

func TestCapacityMonotonic(t *testing.T) {
	rng := testutil.NewRNG(42)
	a := newArena(t, 2)

	prev := a.Cap()
	for i := 0; i < 500; i++ {
		switch rng.Intn(4) {
		case 0:
			_, err := a.Append(model.Default())
			require.NoError(t, err)
		case 1:
			_, err := a.AppendBulk(rng.Intn(50), nil)
			require.NoError(t, err)
		case 2:
			if rng.Intn(10) == 0 {
				a.Clear()
			}
		case 3:
			_, _ = a.Get(Index(rng.Intn(100)))
		}

		require.GreaterOrEqual(t, a.Cap(), prev)
		require.GreaterOrEqual(t, a.Cap(), a.Len())
		require.Equal(t, int64(a.Len())*model.SegmentSize, a.AllocatedSize())
		prev = a.Cap()
	}
}

func TestRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(4711)
	segs := rng.Segments(257)
	a := newArena(t, 4)

	for i, s := range segs {
		idx, err := a.Append(s)
		require.NoError(t, err)
		require.Equal(t, Index(i), idx)
	}

	for i, want := range segs {
		got, err := a.Get(Index(i))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	var seen int
	for i, s := range a.All() {
		assert.Equal(t, segs[i], s)
		seen++
	}
	assert.Equal(t, len(segs), seen)
}

func TestAppendBulk_Factory(t *testing.T) {
	a := newArena(t, 0)

	var next uint64
	r, err := a.AppendBulk(10, func() model.Segment {
		next++
		return model.Segment{ID: next, ZIndex: int32(next)} //nolint:gosec // small
	})
	require.NoError(t, err)

	for i := r.Start; i < r.End; i++ {
		s, err := a.Get(i)
		require.NoError(t, err)
		assert.Equal(t, uint64(i)+1, s.ID)
	}
	assert.True(t, r.Contains(9))
	assert.False(t, r.Contains(10))
}

func TestAppendBulk_NilFactoryZeroesReusedBuffer(t *testing.T) {
	a := newArena(t, 4)

	_, err := a.AppendBulk(4, func() model.Segment { return model.Segment{ID: 99} })
	require.NoError(t, err)
	a.Clear()

	_, err = a.AppendBulk(4, nil)
	require.NoError(t, err)
	for _, s := range a.All() {
		assert.Equal(t, model.Default(), s)
	}
}

func TestGet_OutOfRange(t *testing.T) {
	a := newArena(t, 8)
	_, err := a.AppendBulk(3, nil)
	require.NoError(t, err)

	for _, idx := range []Index{-1, 3, 8, 1 << 40} {
		_, err := a.Get(idx)
		require.ErrorIs(t, err, ErrOutOfRange)

		var ie *IndexError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, idx, ie.Index)
		assert.Equal(t, 3, ie.Length)
	}
}

func TestClear(t *testing.T) {
	a := newArena(t, 0)
	_, err := a.AppendBulk(1000, nil)
	require.NoError(t, err)

	capBefore := a.Cap()
	reallocs := a.Stats().Reallocations

	a.Clear()
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, capBefore, a.Cap())
	assert.Equal(t, int64(0), a.AllocatedSize())

	_, err = a.AppendBulk(capBefore, nil)
	require.NoError(t, err)
	assert.Equal(t, reallocs, a.Stats().Reallocations)

	_, err = a.Get(0)
	assert.NoError(t, err)
}

func TestAppendBulk_Overflow(t *testing.T) {
	a := newArena(t, 1)
	_, err := a.AppendBulk(1, nil)
	require.NoError(t, err)

	_, err = a.AppendBulk(math.MaxInt, nil)
	require.ErrorIs(t, err, ErrAllocationFailure)

	_, err = a.AppendBulk(math.MaxInt/model.SegmentSize+1, nil)
	require.ErrorIs(t, err, ErrAllocationFailure)

	var ae *AllocationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "heap", ae.Allocator)

	_, err = a.AppendBulk(-1, nil)
	require.ErrorIs(t, err, ErrAllocationFailure)

	// A failed bulk append leaves the arena untouched.
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, a.Cap())
}

func TestMemoryAcquirer(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100 * model.SegmentSize})
	a, err := New(10, WithMemoryAcquirer(rc))
	require.NoError(t, err)

	assert.Equal(t, int64(10*model.SegmentSize), rc.MemoryUsage())
	assert.Equal(t, int64(10*model.SegmentSize), a.Stats().BytesReserved)

	// The old buffer is still reserved while the new one is filled.
	_, err = a.AppendBulk(80, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(80*model.SegmentSize), rc.MemoryUsage())
	assert.Equal(t, int64(90*model.SegmentSize), rc.PeakMemoryUsage())

	_, err = a.AppendBulk(100, nil)
	require.ErrorIs(t, err, ErrAllocationFailure)
	require.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, 80, a.Len())
	assert.Equal(t, int64(80*model.SegmentSize), rc.MemoryUsage())

	require.NoError(t, a.Free())
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestMemoryAcquirer_ReleasedOnAllocatorFailure(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	_, err := New(5, WithMemoryAcquirer(rc), WithAllocator(failingAllocator{}))

	require.ErrorIs(t, err, ErrAllocationFailure)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestMmapAllocator(t *testing.T) {
	rng := testutil.NewRNG(1)
	segs := rng.Segments(1000)

	a := newArena(t, 1, WithAllocator(MmapAllocator{Advice: mmap.AccessSequential}))
	assert.Equal(t, "mmap", a.Stats().Allocator)

	for _, s := range segs {
		_, err := a.Append(s)
		require.NoError(t, err)
	}

	assert.Equal(t, doublings(1, 1000), a.Stats().Reallocations)
	for i, want := range segs {
		got, err := a.Get(Index(i))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	require.NoError(t, a.Free())
}

func TestFree(t *testing.T) {
	a, err := New(4)
	require.NoError(t, err)

	require.NoError(t, a.Free())
	require.NoError(t, a.Free())

	_, err = a.Append(model.Default())
	assert.ErrorIs(t, err, ErrFreed)
	_, err = a.AppendBulk(1, nil)
	assert.ErrorIs(t, err, ErrFreed)
	_, err = a.Get(0)
	assert.ErrorIs(t, err, ErrFreed)
	assert.Equal(t, 0, a.Len())
}

func TestFree_ReportsGrowReleaseErrors(t *testing.T) {
	alloc := &releaseFailingAllocator{}
	a, err := New(1, WithAllocator(alloc))
	require.NoError(t, err)

	_, err = a.AppendBulk(10, nil)
	require.NoError(t, err, "grow succeeds even when the old buffer cannot be released")

	err = a.Free()
	require.ErrorIs(t, err, errBoom)
}

func TestObserver(t *testing.T) {
	obs := &recordingObserver{}
	a := newArena(t, 2, WithObserver(obs))

	for i := 0; i < 5; i++ {
		_, err := a.Append(model.Default())
		require.NoError(t, err)
	}
	_, err := a.AppendBulk(100, nil)
	require.NoError(t, err)
	_, err = a.AppendBulk(-1, nil)
	require.Error(t, err)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, [][2]int{{2, 4}, {4, 8}, {8, 105}}, obs.grows)
	assert.Equal(t, []int{100, -1}, obs.bulks)
	assert.Equal(t, 1, obs.bulkErrors)
}

func TestString(t *testing.T) {
	a := newArena(t, 4)
	_, err := a.AppendBulk(3, nil)
	require.NoError(t, err)

	assert.Equal(t, "Arena{len: 3, cap: 4, allocated: 216 B, capacity: 288 B, reallocs: 0, allocator: heap}", a.String())
}

var errBoom = errors.New("boom")

type failingAllocator struct{}

func (failingAllocator) Allocate(int) (Buffer, error) { return nil, errBoom }
func (failingAllocator) Name() string                 { return "failing" }

type releaseFailingAllocator struct{}

func (*releaseFailingAllocator) Allocate(records int) (Buffer, error) {
	return releaseFailingBuffer(make([]model.Segment, records)), nil
}
func (*releaseFailingAllocator) Name() string { return "release-failing" }

type releaseFailingBuffer []model.Segment

func (b releaseFailingBuffer) Records() []model.Segment { return b }
func (releaseFailingBuffer) Release() error             { return errBoom }

type recordingObserver struct {
	mu         sync.Mutex
	grows      [][2]int
	bulks      []int
	bulkErrors int
}

func (o *recordingObserver) OnGrow(from, to int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.grows = append(o.grows, [2]int{from, to})
}

func (o *recordingObserver) OnAppendBulk(n int, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.bulks = append(o.bulks, n)
	if err != nil {
		o.bulkErrors++
	}
}
