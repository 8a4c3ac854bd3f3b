package harness

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/hupe1980/segbench/arena"
	"github.com/hupe1980/segbench/model"
	"github.com/hupe1980/segbench/resource"
	"github.com/hupe1980/segbench/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInArena(t *testing.T) {
	h := New()

	for _, n := range []int{0, 1, 1000} {
		r, err := h.RunInArena(n)
		require.NoError(t, err)

		assert.Equal(t, n, r.Records)
		assert.Equal(t, int64(n)*model.SegmentSize, r.AllocatedBytes)
		assert.GreaterOrEqual(t, r.CapacityBytes, r.AllocatedBytes)
		assert.LessOrEqual(t, r.Reallocations, uint64(1))
		assert.Equal(t, "heap", r.Allocator)
	}
}

func TestRunInArena_Deterministic(t *testing.T) {
	h := New(WithInitialCapacity(16))

	r1, err := h.RunInArena(5000)
	require.NoError(t, err)
	r2, err := h.RunInArena(5000)
	require.NoError(t, err)

	assert.Equal(t, r1.AllocatedBytes, r2.AllocatedBytes)
	assert.Equal(t, r1.CapacityBytes, r2.CapacityBytes)
	assert.Equal(t, r1.Reallocations, r2.Reallocations)
}

func TestRunInArena_AllocationFailure(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 10 * model.SegmentSize})
	h := New(WithArenaOptions(arena.WithMemoryAcquirer(rc)))

	_, err := h.RunInArena(11)
	require.ErrorIs(t, err, arena.ErrAllocationFailure)
	assert.Equal(t, int64(0), rc.MemoryUsage())

	_, err = h.RunInArena(10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rc.MemoryUsage(), "budget is returned after every run")
}

func TestRunInReference(t *testing.T) {
	h := New()

	r := h.RunInReference(1000)
	assert.Equal(t, 1000, r.Records)
	assert.GreaterOrEqual(t, r.HeapBytes, int64(0))
}

func TestRunRealistic(t *testing.T) {
	h := New()

	r, err := h.RunRealistic(100, testutil.NewRNG(3))
	require.NoError(t, err)
	assert.Equal(t, 100, r.Records)
}

func TestCompare_ArenaSmallerAtScale(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates about 160 MiB")
	}

	var logs bytes.Buffer
	h := New(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	cmp, err := h.Compare(1_000_000)
	require.NoError(t, err)

	assert.Equal(t, int64(72_000_000), cmp.Arena.AllocatedBytes)
	assert.Equal(t, 1_000_000, cmp.Reference.Records)
	assert.True(t, cmp.ArenaSmaller(), "arena %d B vs reference %d B", cmp.Arena.AllocatedBytes, cmp.Reference.HeapBytes)
	assert.Greater(t, cmp.Ratio(), 1.0)
	assert.Contains(t, logs.String(), "comparison completed")
}

func TestComparison_ArenaSmaller(t *testing.T) {
	cmp := Comparison{
		Arena:     ArenaReport{AllocatedBytes: 100},
		Reference: ReferenceReport{HeapBytes: 100},
	}
	assert.False(t, cmp.ArenaSmaller())

	cmp.Reference.HeapBytes = 101
	assert.True(t, cmp.ArenaSmaller())

	assert.Zero(t, Comparison{}.Ratio())
}

func TestReportString(t *testing.T) {
	r := ArenaReport{
		Records:        1_000_000,
		AllocatedBytes: 72_000_000,
		CapacityBytes:  72_000_000,
		Reallocations:  1,
		Allocator:      "heap",
	}
	assert.Equal(t, "arena (heap): 1,000,000 records, 69 MiB allocated, 69 MiB capacity, 1 reallocation(s), 0 B heap, 0s", r.String())

	rr := ReferenceReport{Records: 10, HeapBytes: 2048}
	assert.Equal(t, "reference: 10 records, 2.0 KiB heap, 0s", rr.String())
}
