package harness

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// ArenaReport describes one arena run.
type ArenaReport struct {
	Records        int
	AllocatedBytes int64 // Records * model.SegmentSize
	CapacityBytes  int64
	Reallocations  uint64
	HeapBytes      int64 // Live Go heap growth; near zero for off-heap allocators
	Allocator      string
	Elapsed        time.Duration
}

func (r ArenaReport) String() string {
	return fmt.Sprintf("arena (%s): %s records, %s allocated, %s capacity, %d reallocation(s), %s heap, %s",
		r.Allocator,
		humanize.Comma(int64(r.Records)),
		humanize.IBytes(uint64(r.AllocatedBytes)), //nolint:gosec // non-negative
		humanize.IBytes(uint64(r.CapacityBytes)),  //nolint:gosec // non-negative
		r.Reallocations,
		humanize.IBytes(uint64(r.HeapBytes)), //nolint:gosec // non-negative
		r.Elapsed.Round(time.Microsecond),
	)
}

// ReferenceReport describes one reference collection run.
type ReferenceReport struct {
	Records   int
	HeapBytes int64
	Elapsed   time.Duration
}

func (r ReferenceReport) String() string {
	return fmt.Sprintf("reference: %s records, %s heap, %s",
		humanize.Comma(int64(r.Records)),
		humanize.IBytes(uint64(r.HeapBytes)), //nolint:gosec // non-negative
		r.Elapsed.Round(time.Microsecond),
	)
}

// Comparison pairs an arena run with a reference run of the same size.
type Comparison struct {
	Arena     ArenaReport
	Reference ReferenceReport
}

// ArenaSmaller reports whether the arena's allocated size is strictly below
// the reference collection's measured heap footprint.
func (c Comparison) ArenaSmaller() bool {
	return c.Arena.AllocatedBytes < c.Reference.HeapBytes
}

// Ratio returns reference heap bytes per arena byte, or 0 for an empty arena.
func (c Comparison) Ratio() float64 {
	if c.Arena.AllocatedBytes == 0 {
		return 0
	}
	return float64(c.Reference.HeapBytes) / float64(c.Arena.AllocatedBytes)
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s\n%s\nreference/arena: %s", c.Arena, c.Reference, humanize.FtoaWithDigits(c.Ratio(), 2))
}
