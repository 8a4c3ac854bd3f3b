// Package arena stores model.Segment records in one contiguous, growable buffer.
//
// # Growth
//
// A single Append on a full arena grows the buffer to
// max(1, ceil(capacity * growthFactor)) records (doubling by default), copies the
// live records and releases the old buffer. Over n appends that is O(log n)
// reallocations. AppendBulk reserves room for the whole batch up front and
// reallocates at most once, whatever the batch size.
//
// # Backing Memory
//
//   - HeapAllocator: a Go slice (default).
//   - MmapAllocator: an anonymous mapping outside the Go heap, so large arenas
//     add nothing to GC work.
//
// Every buffer can be reserved against a MemoryAcquirer (see resource.Controller).
// A refused reservation, an overflowing size, or a failing allocator all surface
// as ErrAllocationFailure; the arena is left untouched and nothing is retried.
//
// # Indices
//
// Indices are dense and append-only. There is no removal and no compaction, so an
// Index stays valid until Clear or Free. Clear resets the length but keeps the
// buffer.
//
// # Concurrency
//
// An Arena has a single owner. It is not safe for concurrent mutation.
package arena
