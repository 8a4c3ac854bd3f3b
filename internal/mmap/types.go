package mmap

import "errors"

// AccessPattern is a hint to the kernel about how mapped memory will be used.
type AccessPattern int

const (
	// AccessDefault gives no specific advice.
	AccessDefault AccessPattern = iota
	// AccessSequential expects mostly front-to-back access (bulk appends, scans).
	AccessSequential
	// AccessRandom expects indexed reads in no particular order.
	AccessRandom
	// AccessWillNeed asks the kernel to fault pages in early.
	AccessWillNeed
	// AccessDontNeed tells the kernel the pages can be dropped.
	AccessDontNeed
)

var (
	// ErrClosed is returned when a closed mapping is used.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for negative sizes or empty anonymous mappings.
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrInvalidOffset is returned for negative read offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
