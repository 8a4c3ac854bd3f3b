package document

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"

	"github.com/klauspost/compress/zlib"
)

// pdfImage is an image ready to be written as an image XObject.
type pdfImage struct {
	width, height int
	filter        string
	colorSpace    string
	data          []byte
	mask          []byte // DeviceGray alpha samples, nil when opaque
}

// encodeImage converts PNG or JPEG bytes into XObject data.
func encodeImage(data []byte, level int) (*pdfImage, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: unsupported image format", ErrProducer)
		}
		return nil, fmt.Errorf("%w: decode image: %w", ErrProducer, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrProducer)
	}

	switch format {
	case "jpeg":
		return encodeJPEG(data, cfg)
	case "png":
		return encodePNG(data, level)
	default:
		return nil, fmt.Errorf("%w: unsupported image format %q", ErrProducer, format)
	}
}

// encodeJPEG embeds the JPEG stream unchanged.
func encodeJPEG(data []byte, cfg image.Config) (*pdfImage, error) {
	var cs string
	switch cfg.ColorModel {
	case color.YCbCrModel, color.RGBAModel:
		cs = "DeviceRGB"
	case color.GrayModel:
		cs = "DeviceGray"
	default:
		return nil, fmt.Errorf("%w: unsupported jpeg color model", ErrProducer)
	}

	// DCTDecode is checked by the reader; decode once so a corrupt stream
	// fails here instead.
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: decode jpeg: %w", ErrProducer, err)
	}

	return &pdfImage{
		width:      cfg.Width,
		height:     cfg.Height,
		filter:     "DCTDecode",
		colorSpace: cs,
		data:       data,
	}, nil
}

// encodePNG re-encodes the samples as zlib-compressed RGB plus an optional
// alpha mask.
func encodePNG(data []byte, level int) (*pdfImage, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode png: %w", ErrProducer, err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rgb := make([]byte, 0, w*h*3)

	opaque := true
	if o, ok := img.(interface{ Opaque() bool }); ok {
		opaque = o.Opaque()
	}
	var alpha []byte
	if !opaque {
		alpha = make([]byte, 0, w*h)
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA) //nolint:forcetypeassert // NRGBAModel always returns NRGBA
			rgb = append(rgb, c.R, c.G, c.B)
			if alpha != nil {
				alpha = append(alpha, c.A)
			}
		}
	}

	out := &pdfImage{
		width:      w,
		height:     h,
		filter:     "FlateDecode",
		colorSpace: "DeviceRGB",
	}
	if out.data, err = deflate(rgb, level); err != nil {
		return nil, err
	}
	if alpha != nil {
		if out.mask, err = deflate(alpha, level); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func deflate(raw []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProducer, err)
	}
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("%w: compress: %w", ErrProducer, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: compress: %w", ErrProducer, err)
	}
	return buf.Bytes(), nil
}
