package arena

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"time"

	"github.com/hupe1980/segbench/internal/conv"
	"github.com/hupe1980/segbench/model"
)

// Index is a stable handle to one record in an Arena.
type Index int

// Range is a half-open range of indices [Start, End).
type Range struct {
	Start, End Index
}

// Len returns the number of indices in r.
func (r Range) Len() int { return int(r.End - r.Start) }

// Contains reports whether i lies in r.
func (r Range) Contains(i Index) bool { return i >= r.Start && i < r.End }

// Stats is a snapshot of arena accounting.
type Stats struct {
	Length        int    // Records appended
	Capacity      int    // Records the current buffer holds
	Reallocations uint64 // Buffer replacements since New (the initial buffer is not counted)
	BytesReserved int64  // Bytes reserved against the MemoryAcquirer
	Allocator     string // Allocator name
}

// Arena is a contiguous growable buffer of model.Segment records.
type Arena struct {
	opts options

	buf     Buffer
	records []model.Segment // buf.Records(), nil while capacity is 0
	length  int

	reserved      int64
	reallocations uint64
	releaseErr    error
	freed         bool
}

// New creates an Arena with room for initialCapacity records. Zero is valid and
// defers any allocation to the first append.
func New(initialCapacity int, opts ...Option) (*Arena, error) {
	a := &Arena{opts: defaultOptions()}
	for _, opt := range opts {
		opt(&a.opts)
	}

	if !(a.opts.growthFactor > 1) || math.IsInf(a.opts.growthFactor, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGrowthFactor, a.opts.growthFactor)
	}
	if initialCapacity < 0 {
		return nil, a.allocationError(initialCapacity, errors.New("negative capacity"))
	}

	if initialCapacity > 0 {
		buf, reserved, err := a.allocate(initialCapacity)
		if err != nil {
			return nil, err
		}
		a.install(buf, reserved)
	}

	return a, nil
}

// Append appends one record and returns its index. A full arena grows first.
func (a *Arena) Append(s model.Segment) (Index, error) {
	if a.freed {
		return 0, ErrFreed
	}

	if a.length == len(a.records) {
		newCap, err := a.grownCapacity()
		if err != nil {
			return 0, err
		}
		if err := a.grow(newCap); err != nil {
			return 0, err
		}
	}

	a.records[a.length] = s
	a.length++
	return Index(a.length - 1), nil
}

// AppendBulk appends n records built by newRecord and returns their index range.
//
// Capacity for the whole batch is reserved first, so at most one reallocation
// happens regardless of n. The new capacity is the larger of Len()+n and one
// growth step, so a small batch may over-reserve by up to one growth step.
// A nil newRecord writes zero records.
func (a *Arena) AppendBulk(n int, newRecord func() model.Segment) (Range, error) {
	start := time.Now()
	r, err := a.appendBulk(n, newRecord)
	a.opts.observer.OnAppendBulk(n, time.Since(start), err)
	return r, err
}

func (a *Arena) appendBulk(n int, newRecord func() model.Segment) (Range, error) {
	if a.freed {
		return Range{}, ErrFreed
	}
	if n < 0 {
		return Range{}, a.allocationError(n, errors.New("negative record count"))
	}

	from := Index(a.length)
	if n == 0 {
		return Range{Start: from, End: from}, nil
	}

	target, err := conv.AddInt(a.length, n)
	if err != nil {
		return Range{}, a.allocationError(n, err)
	}

	if target > len(a.records) {
		newCap := target
		if grown, err := a.grownCapacity(); err == nil && grown > newCap {
			newCap = grown
		}
		if err := a.grow(newCap); err != nil {
			return Range{}, err
		}
	}

	dst := a.records[a.length:target]
	if newRecord == nil {
		clear(dst)
	} else {
		for i := range dst {
			dst[i] = newRecord()
		}
	}
	a.length = target

	return Range{Start: from, End: Index(target)}, nil
}

// Get returns a copy of the record at i.
func (a *Arena) Get(i Index) (model.Segment, error) {
	if a.freed {
		return model.Segment{}, ErrFreed
	}
	if i < 0 || int(i) >= a.length {
		return model.Segment{}, &IndexError{Index: i, Length: a.length}
	}
	return a.records[i], nil
}

// All iterates over the appended records in index order.
func (a *Arena) All() iter.Seq2[Index, model.Segment] {
	return func(yield func(Index, model.Segment) bool) {
		for i := 0; i < a.length; i++ {
			if !yield(Index(i), a.records[i]) {
				return
			}
		}
	}
}

// Len returns the number of appended records.
func (a *Arena) Len() int { return a.length }

// Cap returns the number of records the current buffer holds.
func (a *Arena) Cap() int { return len(a.records) }

// AllocatedSize returns Len() * model.SegmentSize.
func (a *Arena) AllocatedSize() int64 {
	return int64(a.length) * model.SegmentSize
}

// CapacityBytes returns Cap() * model.SegmentSize.
func (a *Arena) CapacityBytes() int64 {
	return int64(len(a.records)) * model.SegmentSize
}

// Clear sets the length to zero and keeps the buffer for reuse.
func (a *Arena) Clear() {
	a.length = 0
}

// Stats returns a snapshot of the arena accounting.
func (a *Arena) Stats() Stats {
	return Stats{
		Length:        a.length,
		Capacity:      len(a.records),
		Reallocations: a.reallocations,
		BytesReserved: a.reserved,
		Allocator:     a.opts.allocator.Name(),
	}
}

// Free releases the buffer and the reserved budget. The arena is unusable
// afterwards. Free is idempotent; it also reports release failures of
// buffers replaced during growth.
func (a *Arena) Free() error {
	if a.freed {
		return nil
	}
	a.freed = true

	err := a.releaseErr
	if a.buf != nil {
		err = errors.Join(err, a.buf.Release())
	}
	if a.opts.acquirer != nil {
		a.opts.acquirer.ReleaseMemory(a.reserved)
	}

	a.buf, a.records, a.length, a.reserved = nil, nil, 0, 0
	return err
}

func (a *Arena) String() string {
	return fmt.Sprintf("Arena{len: %d, cap: %d, allocated: %d B, capacity: %d B, reallocs: %d, allocator: %s}",
		a.length, len(a.records), a.AllocatedSize(), a.CapacityBytes(), a.reallocations, a.opts.allocator.Name())
}

// grownCapacity applies the growth policy to the current capacity.
func (a *Arena) grownCapacity() (int, error) {
	c := len(a.records)
	if c == 0 {
		return 1, nil
	}

	f := math.Ceil(float64(c) * a.opts.growthFactor)
	if f >= math.MaxInt {
		return 0, a.allocationError(c, fmt.Errorf("capacity %d cannot grow by %v", c, a.opts.growthFactor))
	}

	n := int(f)
	if n <= c {
		n = c + 1
	}
	return n, nil
}

// grow moves the live records into a buffer of newCap records.
func (a *Arena) grow(newCap int) error {
	start := time.Now()
	oldCap := len(a.records)

	buf, reserved, err := a.allocate(newCap)
	if err != nil {
		return err
	}

	recs := buf.Records()
	copy(recs, a.records[:a.length])

	if a.buf != nil {
		if err := a.buf.Release(); err != nil && a.releaseErr == nil {
			a.releaseErr = fmt.Errorf("arena: release %d-record buffer: %w", oldCap, err)
		}
	}
	if a.opts.acquirer != nil {
		a.opts.acquirer.ReleaseMemory(a.reserved)
	}

	a.install(buf, reserved)
	a.reallocations++
	a.opts.observer.OnGrow(oldCap, newCap, time.Since(start))
	return nil
}

func (a *Arena) install(buf Buffer, reserved int64) {
	a.buf = buf
	a.records = buf.Records()
	a.reserved = reserved
}

// allocate reserves budget for and obtains a buffer of the given size.
func (a *Arena) allocate(records int) (Buffer, int64, error) {
	size, err := conv.MulInt(records, model.SegmentSize)
	if err != nil {
		return nil, 0, a.allocationError(records, err)
	}
	bytes := int64(size)

	if acq := a.opts.acquirer; acq != nil && !acq.TryAcquireMemory(bytes) {
		return nil, 0, a.allocationError(records, ErrBudgetExceeded)
	}

	buf, err := a.opts.allocator.Allocate(records)
	if err != nil {
		if a.opts.acquirer != nil {
			a.opts.acquirer.ReleaseMemory(bytes)
		}
		return nil, 0, a.allocationError(records, err)
	}

	return buf, bytes, nil
}

func (a *Arena) allocationError(records int, cause error) error {
	return &AllocationError{Records: records, Allocator: a.opts.allocator.Name(), cause: cause}
}
