package testutil

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegments(t *testing.T) {
	rng := NewRNG(4711)

	segs := rng.Segments(8)

	require.Len(t, segs, 8)
	for i, s := range segs {
		assert.Equal(t, uint64(i), s.ID)
		assert.Equal(t, float32(1), s.Thickness)
		assert.GreaterOrEqual(t, s.Start.X, float32(0))
		assert.Less(t, s.Start.X, float32(1))
		assert.Less(t, s.ZIndex, int32(16))
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	s1 := rng.Segments(3)

	rng.Reset()
	s2 := rng.Segments(3)

	assert.Equal(t, s1, s2)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestImage(t *testing.T) {
	rng := NewRNG(7)

	opaque := rng.Image(4, 3, false)
	assert.Equal(t, 4, opaque.Bounds().Dx())
	assert.Equal(t, 3, opaque.Bounds().Dy())
	assert.True(t, opaque.Opaque())

	data := EncodePNG(t, opaque)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, opaque.Bounds(), decoded.Bounds())

	assert.NotEmpty(t, EncodeJPEG(t, opaque))
}
