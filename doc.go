// Package segbench measures the memory footprint of storing fixed-shape
// segment records in a contiguous arena against a collection of individually
// allocated records, and produces sample PDF documents that can be saved
// through a staged sink.
//
// # Quick Start
//
//	rt := segbench.New(segbench.WithLogger(segbench.NewTextLogger(slog.LevelInfo)))
//	defer rt.Close()
//
//	if err := <-rt.Initialize(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	h, _ := rt.Harness()
//	cmp, _ := h.Compare(1_000_000)
//	fmt.Println(cmp)
//
// # Initialization
//
// Initialize runs once in the background: it probes the configured allocator
// and warms the document producer. Until it has succeeded every operation
// fails with ErrIllegalState. A failed initialization is final.
//
// # Arenas
//
// NewArena returns an arena.Arena that appends records by value into one
// growable buffer. Bulk appends reserve capacity for the whole batch first, so
// they reallocate at most once. Allocation can be backed by the Go heap
// (arena.HeapAllocator) or by anonymous memory mappings (arena.MmapAllocator)
// and can be bounded with a resource.Controller:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64 << 20})
//	rt := segbench.New(
//	    segbench.WithAllocator(arena.MmapAllocator{}),
//	    segbench.WithResourceController(rc),
//	)
//
// # Documents
//
// Document renders one of the presets listed by document.Presets. Export
// renders a preset and hands it to the save sink, which keeps a transient
// reference to the bytes until a bounded delay after the copy completes.
//
// # Errors
//
// Errors match ErrIllegalState, ErrOutOfRange, ErrAllocationFailure,
// ErrNotFound or ErrProducer with errors.Is.
package segbench
