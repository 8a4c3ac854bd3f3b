package mmap

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
)

// Mapping owns a mapped memory region and unmaps it on Close.
type Mapping struct {
	data     []byte
	size     int
	writable bool
	closed   atomic.Bool
	unmap    func([]byte) error
}

// Open maps the file at path read-only. An empty file yields an empty mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := fi.Size()
	if size < 0 || int64(int(size)) != size {
		return nil, ErrInvalidSize
	}
	if size == 0 {
		return &Mapping{}, nil
	}

	data, unmap, err := osMap(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap: map %s: %w", path, err)
	}

	return &Mapping{data: data, size: int(size), unmap: unmap}, nil
}

// MapAnon maps size bytes of zeroed, private, read-write memory that is not
// backed by a file and not managed by the Go garbage collector.
func MapAnon(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	data, unmap, err := osMapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("mmap: anonymous mapping of %d bytes: %w", size, err)
	}

	return &Mapping{data: data, size: size, writable: true, unmap: unmap}, nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

// Bytes returns the mapped memory, or nil after Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the mapping size in bytes.
func (m *Mapping) Size() int {
	return m.size
}

// Writable reports whether the mapping was created read-write.
func (m *Mapping) Writable() bool {
	return m.writable
}

// Advise passes an access pattern hint to the kernel.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.data == nil {
		return nil
	}
	return osAdvise(m.data, pattern)
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (int, error) {
	if m.closed.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
