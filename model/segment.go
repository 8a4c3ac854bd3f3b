package model

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SegmentSize is the size in bytes of one Segment, both in memory and serialized.
//
// Layout (little-endian):
//
//	ID         8
//	Start      8  (2 x float32)
//	End        8  (2 x float32)
//	Color      16 (4 x float32)
//	Thickness  4
//	Transform  24 (6 x float32)
//	ZIndex     4
const SegmentSize = 72

// Point is a 2D point.
type Point struct {
	X, Y float32
}

// Color is an RGBA color with float components.
type Color struct {
	R, G, B, A float32
}

// Transform is a 2D affine matrix [a b c d e f].
type Transform [6]float32

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{1, 0, 0, 1, 0, 0}
}

// Segment is a fixed-shape line segment record.
//
// Field order matters: it keeps the struct free of padding so that
// unsafe.Sizeof(Segment{}) == SegmentSize.
type Segment struct {
	ID        uint64
	Start     Point
	End       Point
	Color     Color
	Thickness float32
	Transform Transform
	ZIndex    int32
}

// Default returns the zero record. Measured workloads use it exclusively.
func Default() Segment {
	return Segment{}
}

// AppendBinary appends the fixed little-endian encoding of s to dst.
func (s Segment) AppendBinary(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, s.ID)
	dst = appendFloats(dst, s.Start.X, s.Start.Y, s.End.X, s.End.Y)
	dst = appendFloats(dst, s.Color.R, s.Color.G, s.Color.B, s.Color.A)
	dst = appendFloats(dst, s.Thickness)
	dst = appendFloats(dst, s.Transform[:]...)
	return binary.LittleEndian.AppendUint32(dst, uint32(s.ZIndex)) //nolint:gosec // two's complement round trip
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s Segment) MarshalBinary() ([]byte, error) {
	return s.AppendBinary(make([]byte, 0, SegmentSize)), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *Segment) UnmarshalBinary(b []byte) error {
	if len(b) != SegmentSize {
		return fmt.Errorf("model: segment must be %d bytes, got %d", SegmentSize, len(b))
	}

	s.ID = binary.LittleEndian.Uint64(b[0:8])
	f := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+4]))
	}
	s.Start = Point{X: f(8), Y: f(12)}
	s.End = Point{X: f(16), Y: f(20)}
	s.Color = Color{R: f(24), G: f(28), B: f(32), A: f(36)}
	s.Thickness = f(40)
	for i := range s.Transform {
		s.Transform[i] = f(44 + 4*i)
	}
	s.ZIndex = int32(binary.LittleEndian.Uint32(b[68:72])) //nolint:gosec // two's complement round trip
	return nil
}

// Length returns the euclidean length of the segment before transformation.
func (s Segment) Length() float32 {
	dx := float64(s.End.X - s.Start.X)
	dy := float64(s.End.Y - s.Start.Y)
	return float32(math.Hypot(dx, dy))
}

func (s Segment) String() string {
	return fmt.Sprintf("Segment{id: %d, (%g,%g)->(%g,%g), z: %d}",
		s.ID, s.Start.X, s.Start.Y, s.End.X, s.End.Y, s.ZIndex)
}

func appendFloats(dst []byte, vs ...float32) []byte {
	for _, v := range vs {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}
