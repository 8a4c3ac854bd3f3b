// Package mmap wraps platform memory mappings.
//
// Two kinds of mapping are supported:
//
//   - Open maps a file read-only; blobstore.LocalStore uses it for zero-copy reads.
//   - MapAnon maps anonymous read-write memory outside the Go heap; the arena's
//     MmapAllocator uses it so that record buffers are invisible to the GC.
//
// Close is idempotent. Bytes returns nil once a mapping is closed, but slices
// obtained earlier become invalid and must not be touched.
package mmap
