package arena

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange is returned when reading an index at or past the length.
	ErrOutOfRange = errors.New("arena: index out of range")
	// ErrAllocationFailure is returned when backing storage cannot be obtained.
	ErrAllocationFailure = errors.New("arena: allocation failure")
	// ErrBudgetExceeded is the cause of an allocation failure refused by the MemoryAcquirer.
	ErrBudgetExceeded = errors.New("arena: memory budget exceeded")
	// ErrFreed is returned when an arena is used after Free.
	ErrFreed = errors.New("arena: use after Free")
	// ErrInvalidGrowthFactor is returned by New for a growth factor <= 1.
	ErrInvalidGrowthFactor = errors.New("arena: growth factor must be greater than 1")
)

// IndexError reports an out-of-range read.
//
// errors.Is(err, ErrOutOfRange) holds for every IndexError.
type IndexError struct {
	Index  Index
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("arena: index %d out of range [0, %d)", e.Index, e.Length)
}

func (e *IndexError) Unwrap() error { return ErrOutOfRange }

// AllocationError reports a buffer that could not be obtained.
//
// errors.Is(err, ErrAllocationFailure) holds for every AllocationError; the
// underlying cause (budget, overflow, allocator error) is reachable as well.
type AllocationError struct {
	Records   int
	Allocator string
	cause     error
}

func (e *AllocationError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("arena: cannot allocate %d records (%s)", e.Records, e.Allocator)
	}
	return fmt.Sprintf("arena: cannot allocate %d records (%s): %v", e.Records, e.Allocator, e.cause)
}

func (e *AllocationError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrAllocationFailure}
	}
	return []error{ErrAllocationFailure, e.cause}
}
