package reference

import (
	"fmt"

	"github.com/hupe1980/segbench/arena"
	"github.com/hupe1980/segbench/model"
)

// Collection holds independently allocated records.
type Collection struct {
	records []*model.Segment
}

// New returns an empty collection.
func New() *Collection {
	return &Collection{}
}

// Append stores a new heap copy of s and returns its index.
func (c *Collection) Append(s model.Segment) int {
	p := new(model.Segment)
	*p = s
	c.records = append(c.records, p)
	return len(c.records) - 1
}

// AppendBulk appends n records built by newRecord, one Append at a time. A nil newRecord
// appends zero records.
func (c *Collection) AppendBulk(n int, newRecord func() model.Segment) {
	if newRecord == nil {
		newRecord = model.Default
	}
	for i := 0; i < n; i++ {
		c.Append(newRecord())
	}
}

// Len returns the number of records.
func (c *Collection) Len() int {
	return len(c.records)
}

// Get returns a copy of the record at i.
func (c *Collection) Get(i int) (model.Segment, error) {
	if i < 0 || i >= len(c.records) {
		return model.Segment{}, fmt.Errorf("reference: index %d out of range [0, %d): %w", i, len(c.records), arena.ErrOutOfRange)
	}
	return *c.records[i], nil
}

// Clear drops every record and leaves them to the garbage collector.
func (c *Collection) Clear() {
	clear(c.records)
	c.records = c.records[:0]
}
