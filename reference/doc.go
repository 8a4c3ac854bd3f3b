// Package reference is the baseline the arena is measured against: an ordered
// sequence of records, each its own heap allocation with a lifetime managed by
// the garbage collector.
//
// Only the interface matches the arena (append, bulk append, length); the
// storage is deliberately one allocation per record.
package reference
