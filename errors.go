package segbench

import (
	"errors"
	"fmt"

	"github.com/hupe1980/segbench/arena"
	"github.com/hupe1980/segbench/document"
	"github.com/hupe1980/segbench/save"
)

var (
	// ErrIllegalState is returned when an operation is called before
	// initialization has succeeded, after Close, or on a freed arena.
	ErrIllegalState = errors.New("segbench: illegal state")

	// ErrOutOfRange is returned for a read at or past an arena's length.
	ErrOutOfRange = arena.ErrOutOfRange
	// ErrAllocationFailure is returned when arena storage cannot be obtained.
	ErrAllocationFailure = arena.ErrAllocationFailure
	// ErrNotFound is returned for an unknown document key.
	ErrNotFound = document.ErrNotFound
	// ErrProducer is returned when a document cannot be produced or is invalid.
	ErrProducer = document.ErrProducer
)

// translateError maps sub-package errors onto the taxonomy above. Errors that
// already belong to it pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, arena.ErrFreed) || errors.Is(err, save.ErrClosed) {
		return fmt.Errorf("%w: %w", ErrIllegalState, err)
	}

	return err
}
