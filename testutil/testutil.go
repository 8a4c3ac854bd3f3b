package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"sync"
	"testing"

	"github.com/hupe1980/segbench/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
// It makes *RNG a model.Source.
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// Segments returns n realistic records with IDs 0..n-1 and random z-order.
func (r *RNG) Segments(n int) []model.Segment {
	out := make([]model.Segment, n)
	for i := range out {
		s := model.NewRealistic(r)
		s.ID = uint64(i) //nolint:gosec // i >= 0
		s.ZIndex = int32(r.Intn(16)) //nolint:gosec // < 16
		out[i] = s
	}
	return out
}

// Image returns a w x h image with random pixels. Without alpha every pixel
// is opaque.
func (r *RNG) Image(w, h int, alpha bool) *image.NRGBA {
	r.mu.Lock()
	defer r.mu.Unlock()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{
				R: uint8(r.rand.Intn(256)), //nolint:gosec // < 256
				G: uint8(r.rand.Intn(256)), //nolint:gosec // < 256
				B: uint8(r.rand.Intn(256)), //nolint:gosec // < 256
				A: 0xff,
			}
			if alpha {
				c.A = uint8(r.rand.Intn(256)) //nolint:gosec // < 256
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// EncodePNG encodes img as PNG and fails the test on error.
func EncodePNG(tb testing.TB, img image.Image) []byte {
	tb.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		tb.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// EncodeJPEG encodes img as JPEG and fails the test on error.
func EncodeJPEG(tb testing.TB, img image.Image) []byte {
	tb.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		tb.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}
