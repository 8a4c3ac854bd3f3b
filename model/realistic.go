package model

// Source supplies pseudo-random values in [0, 1).
//
// *rand.Rand and testutil.RNG satisfy Source. Seed it to make demo data
// reproducible.
type Source interface {
	Float32() float32
}

// NewRealistic returns a Segment whose start, end, color and transform are
// drawn from src.
//
// The result is only as deterministic as src. It is meant for demos and must
// not be used on measured paths, which rely on Default.
func NewRealistic(src Source) Segment {
	return Segment{
		Start: Point{X: src.Float32(), Y: src.Float32()},
		End:   Point{X: src.Float32(), Y: src.Float32()},
		Color: Color{
			R: src.Float32(),
			G: src.Float32(),
			B: src.Float32(),
			A: src.Float32(),
		},
		Thickness: 1,
		Transform: Transform{
			src.Float32(), src.Float32(), src.Float32(),
			src.Float32(), src.Float32(), src.Float32(),
		},
	}
}

// RealisticFactory adapts NewRealistic to the constructor shape used by bulk
// appends.
func RealisticFactory(src Source) func() Segment {
	return func() Segment { return NewRealistic(src) }
}
