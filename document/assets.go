package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"path"
	"sync"

	"github.com/hupe1980/segbench/blobstore"
)

// AssetSource supplies the encoded image bytes of a preset.
type AssetSource interface {
	// Asset returns PNG or JPEG bytes for key, or an error satisfying
	// errors.Is(err, ErrNotFound).
	Asset(ctx context.Context, key string) ([]byte, error)
}

// GeneratedAssets draws the built-in preset images in process. Each image is
// encoded once and reused.
type GeneratedAssets struct {
	once   sync.Once
	assets map[string][]byte
	err    error
}

// Asset implements AssetSource.
func (g *GeneratedAssets) Asset(_ context.Context, key string) ([]byte, error) {
	g.once.Do(func() { g.assets, g.err = generateAssets() })
	if g.err != nil {
		return nil, g.err
	}

	data, ok := g.assets[key]
	if !ok {
		return nil, fmt.Errorf("%w: asset %q", ErrNotFound, key)
	}
	return data, nil
}

func generateAssets() (map[string][]byte, error) {
	var tree, sky, logo bytes.Buffer

	if err := png.Encode(&tree, drawTree()); err != nil {
		return nil, err
	}
	if err := png.Encode(&sky, drawSky()); err != nil {
		return nil, err
	}
	if err := jpeg.Encode(&logo, drawLogo(), &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}

	return map[string][]byte{
		"tree": tree.Bytes(),
		"sky":  sky.Bytes(),
		"logo": logo.Bytes(),
	}, nil
}

// drawTree is a 64x96 tree on a transparent background.
func drawTree() image.Image {
	const w, h = 64, 96
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	trunk := color.NRGBA{R: 0x6b, G: 0x42, B: 0x1f, A: 0xff}
	leaves := color.NRGBA{R: 0x2e, G: 0x8b, B: 0x57, A: 0xff}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch {
			case y >= 72 && x >= 28 && x < 36:
				img.SetNRGBA(x, y, trunk)
			case y < 72:
				// Canopy: a triangle widening towards the trunk.
				half := (y * w / 2) / 72
				if x >= w/2-half && x < w/2+half {
					img.SetNRGBA(x, y, leaves)
				}
			}
		}
	}
	return img
}

// drawSky is an opaque 128x64 vertical gradient.
func drawSky() image.Image {
	const w, h = 128, 64
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		t := y * 255 / (h - 1)
		c := color.RGBA{
			R: uint8(0x40 + t*0x90/255), //nolint:gosec // < 256
			G: uint8(0x80 + t*0x60/255), //nolint:gosec // < 256
			B: 0xff,
			A: 0xff,
		}
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// drawLogo is a 96x96 ring mark on white.
func drawLogo() image.Image {
	const size = 96
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	ink := color.RGBA{R: 0x1d, G: 0x4e, B: 0xd8, A: 0xff}
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	const c, outer, inner = size / 2, 40, 26
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := x-c, y-c
			d := dx*dx + dy*dy
			if d <= outer*outer && d >= inner*inner {
				img.SetRGBA(x, y, ink)
			} else {
				img.SetRGBA(x, y, white)
			}
		}
	}
	return img
}

// StoreAssets reads preset images from a blob store as <prefix>/<key>.png,
// .jpg or .jpeg, in that order.
type StoreAssets struct {
	store  blobstore.Store
	prefix string
}

// NewStoreAssets creates an AssetSource backed by store.
func NewStoreAssets(store blobstore.Store, prefix string) *StoreAssets {
	return &StoreAssets{store: store, prefix: prefix}
}

var assetExtensions = []string{".png", ".jpg", ".jpeg"}

// Asset implements AssetSource.
func (s *StoreAssets) Asset(ctx context.Context, key string) ([]byte, error) {
	for _, ext := range assetExtensions {
		data, err := blobstore.ReadAll(ctx, s.store, path.Join(s.prefix, key+ext))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, blobstore.ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: asset %q", ErrNotFound, key)
}

// FallbackAssets serves each key from Primary and falls back to Fallback when
// Primary has no asset for it. Other Primary errors are returned as is.
type FallbackAssets struct {
	Primary  AssetSource
	Fallback AssetSource
}

// NewFallbackAssets creates a FallbackAssets. A nil fallback uses the
// built-in GeneratedAssets.
func NewFallbackAssets(primary, fallback AssetSource) *FallbackAssets {
	if fallback == nil {
		fallback = &GeneratedAssets{}
	}
	return &FallbackAssets{Primary: primary, Fallback: fallback}
}

// Asset implements AssetSource.
func (f *FallbackAssets) Asset(ctx context.Context, key string) ([]byte, error) {
	data, err := f.Primary.Asset(ctx, key)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return data, err
	}
	return f.Fallback.Asset(ctx, key)
}
