package arena

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/hupe1980/segbench/internal/conv"
	"github.com/hupe1980/segbench/internal/mmap"
	"github.com/hupe1980/segbench/model"
)

// Buffer is one backing allocation of records.
type Buffer interface {
	// Records returns the full buffer; its length is the buffer capacity.
	Records() []model.Segment
	// Release returns the memory. The records must not be used afterwards.
	Release() error
}

// Allocator obtains backing buffers for an Arena.
type Allocator interface {
	Allocate(records int) (Buffer, error)
	Name() string
}

// MemoryAcquirer reserves bytes against a budget before a buffer is allocated.
//
// *resource.Controller implements it.
type MemoryAcquirer interface {
	TryAcquireMemory(bytes int64) bool
	ReleaseMemory(bytes int64)
}

// HeapAllocator allocates buffers as Go slices.
type HeapAllocator struct{}

// Allocate implements Allocator.
func (HeapAllocator) Allocate(records int) (buf Buffer, err error) {
	if _, err := conv.MulInt(records, model.SegmentSize); err != nil {
		return nil, err
	}

	// makeslice reports impossible lengths as a runtime panic; real memory
	// exhaustion stays fatal.
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(runtime.Error)
			if !ok {
				panic(r)
			}
			buf, err = nil, rerr
		}
	}()

	return heapBuffer(make([]model.Segment, records)), nil
}

// Name implements Allocator.
func (HeapAllocator) Name() string { return "heap" }

type heapBuffer []model.Segment

func (b heapBuffer) Records() []model.Segment { return b }

func (heapBuffer) Release() error { return nil }

// MmapAllocator allocates buffers as anonymous memory mappings outside the Go heap.
//
// model.Segment holds no pointers, so storing it off-heap is safe.
type MmapAllocator struct {
	// Advice is passed to the kernel for every new mapping.
	Advice mmap.AccessPattern
}

// Allocate implements Allocator.
func (a MmapAllocator) Allocate(records int) (Buffer, error) {
	size, err := conv.MulInt(records, model.SegmentSize)
	if err != nil {
		return nil, err
	}

	m, err := mmap.MapAnon(size)
	if err != nil {
		return nil, err
	}
	if err := m.Advise(a.Advice); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("advise: %w", err)
	}

	data := m.Bytes()
	recs := unsafe.Slice((*model.Segment)(unsafe.Pointer(&data[0])), records) //nolint:gosec // page-aligned, pointer-free records

	return &mappedBuffer{m: m, records: recs}, nil
}

// Name implements Allocator.
func (MmapAllocator) Name() string { return "mmap" }

type mappedBuffer struct {
	m       *mmap.Mapping
	records []model.Segment
}

func (b *mappedBuffer) Records() []model.Segment { return b.records }

func (b *mappedBuffer) Release() error {
	b.records = nil
	return b.m.Close()
}
