// Package model defines the fixed-shape records stored by segbench.
//
// # Segment
//
// Segment is a plain value type without pointers. Its in-memory size and its
// serialized size are both SegmentSize bytes, so a buffer of Segments can live
// in off-heap memory and be measured exactly:
//
//	var s model.Segment             // zero value is the default record
//	buf := s.AppendBinary(nil)      // len(buf) == model.SegmentSize
//
// # Realistic Segments
//
// NewRealistic fills a Segment with values drawn from a Source. It exists for
// demos only; footprint measurements always use Default.
package model
