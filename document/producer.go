package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Producer renders a preset key into document bytes.
type Producer interface {
	Document(ctx context.Context, key string) ([]byte, error)
}

// A4 page size in points.
const (
	pageWidth  = 595
	pageHeight = 842

	imageWidth = 200
)

type presetKind int

const (
	imagePreset presetKind = iota
	textPreset
)

var presets = map[string]presetKind{
	"tree":  imagePreset,
	"sky":   imagePreset,
	"logo":  imagePreset,
	"hello": textPreset,
}

// Presets returns the known preset keys in sorted order.
func Presets() []string {
	keys := make([]string, 0, len(presets))
	for k := range presets {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// PDFProducer renders presets as PDF. It is safe for concurrent use.
// Concurrent calls for the same key share one render.
type PDFProducer struct {
	opts options

	mu     sync.RWMutex
	images map[string]*pdfImage

	group singleflight.Group
}

var _ Producer = (*PDFProducer)(nil)

// NewPDFProducer creates a PDFProducer.
func NewPDFProducer(opts ...Option) *PDFProducer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &PDFProducer{
		opts:   o,
		images: make(map[string]*pdfImage),
	}
}

// Document renders the preset named key. The returned slice belongs to the
// caller.
func (p *PDFProducer) Document(ctx context.Context, key string) ([]byte, error) {
	kind, ok := presets[key]
	if !ok {
		return nil, fmt.Errorf("%w: preset %q", ErrNotFound, key)
	}

	// The render is shared by all callers of key and runs detached from ctx.
	// A caller stops waiting when its own ctx ends.
	start := time.Now()
	renderCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(key, func() (any, error) {
		return p.render(renderCtx, key, kind)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		p.opts.logger.Warn("document render failed", "key", key, "error", res.Err)
		return nil, res.Err
	}

	doc := res.Val.([]byte) //nolint:forcetypeassert // render returns []byte
	p.opts.logger.Debug("document rendered",
		"key", key,
		"bytes", len(doc),
		"shared", res.Shared,
		"elapsed", time.Since(start),
	)
	return bytes.Clone(doc), nil
}

// Warm loads and encodes every image preset concurrently so later renders
// only assemble the document.
func (p *PDFProducer) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, key := range Presets() {
		if presets[key] != imagePreset {
			continue
		}
		g.Go(func() error {
			_, err := p.image(ctx, key)
			return err
		})
	}
	return g.Wait()
}

func (p *PDFProducer) render(ctx context.Context, key string, kind presetKind) ([]byte, error) {
	switch kind {
	case textPreset:
		return renderHello()
	default:
		img, err := p.image(ctx, key)
		if err != nil {
			return nil, err
		}
		return renderImage(img)
	}
}

// image returns the cached XObject data for key, loading it on first use.
func (p *PDFProducer) image(ctx context.Context, key string) (*pdfImage, error) {
	p.mu.RLock()
	img, ok := p.images[key]
	p.mu.RUnlock()
	if ok {
		return img, nil
	}

	data, err := p.opts.assets.Asset(ctx, key)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: preset %q: load asset: %v", ErrProducer, key, err)
	}

	img, err = encodeImage(data, p.opts.level)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", key, err)
	}

	p.mu.Lock()
	if cached, ok := p.images[key]; ok {
		img = cached
	} else {
		p.images[key] = img
	}
	p.mu.Unlock()
	return img, nil
}

// renderImage lays out one A4 page with img centered at imageWidth points.
func renderImage(img *pdfImage) ([]byte, error) {
	const (
		catalogID = 1
		pagesID   = 2
		pageID    = 3
		imageID   = 4
	)
	maskID, contentID := 0, 5
	if img.mask != nil {
		maskID, contentID = 5, 6
	}

	w := newPDFWriter()
	w.object(catalogID, fmt.Sprintf("<< /Type /Catalog /Pages %s >>", ref(pagesID)))
	w.object(pagesID, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count 1 >>", ref(pageID)))
	w.object(pageID, fmt.Sprintf(
		"<< /Type /Page /Parent %s /MediaBox %s /Contents %s /Resources << /XObject << /Im1 %s >> >> >>",
		ref(pagesID), rect([4]float32{0, 0, pageWidth, pageHeight}), ref(contentID), ref(imageID),
	))

	dict := fmt.Sprintf(" /Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /%s /BitsPerComponent 8 /Filter /%s",
		img.width, img.height, img.colorSpace, img.filter)
	if maskID != 0 {
		dict += " /SMask " + ref(maskID)
	}
	w.stream(imageID, dict, img.data)

	if maskID != 0 {
		w.stream(maskID, fmt.Sprintf(" /Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceGray /BitsPerComponent 8 /Filter /FlateDecode",
			img.width, img.height), img.mask)
	}

	width := float32(imageWidth)
	height := float32(img.height) * imageWidth / float32(img.width)
	x := (pageWidth - width) / 2
	y := (pageHeight - height) / 2

	var c content
	c.saveState().
		transform([6]float32{width, 0, 0, height, x, y}).
		xObject("Im1").
		restoreState()
	w.stream(contentID, "", c.bytes())

	return w.finish(catalogID)
}

// renderHello lays out a text page with a link annotation and a stroked path.
func renderHello() ([]byte, error) {
	const (
		catalogID = 1
		pagesID   = 2
		pageID    = 3
		fontID    = 4
		contentID = 5
	)

	link := fmt.Sprintf(
		"<< /Type /Annot /Subtype /Link /Rect %s /Contents %s /C [0 0 1] /A << /S /URI /URI %s >> /BS << /W 2 /S /U >> >>",
		rect([4]float32{215, 730, 251, 748}), literal("Link to the Go project web page"), literal("https://go.dev/"),
	)

	w := newPDFWriter()
	w.object(catalogID, fmt.Sprintf("<< /Type /Catalog /Pages %s >>", ref(pagesID)))
	w.object(pagesID, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count 1 >>", ref(pageID)))
	w.object(pageID, fmt.Sprintf(
		"<< /Type /Page /Parent %s /MediaBox %s /Contents %s /Annots [%s] /Resources << /Font << /F1 %s >> >> >>",
		ref(pagesID), rect([4]float32{0, 0, pageWidth, pageHeight}), ref(contentID), link, ref(fontID),
	))
	w.object(fontID, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	var c content
	c.beginText().
		setFont("F1", 14).
		nextLine(108, 734).
		show("Hello World from Go!").
		endText()

	// 0 = miter join, 0 = butt cap.
	c.saveState().
		setLineWidth(1).
		setLineJoin(0).
		setLineCap(0).
		setStrokeRGB(0.5, 0, 1).
		moveTo(100, 200).
		lineTo(200, 500).
		lineTo(10, 200).
		cubicTo(40, 250, 100, 300, 150, 200).
		lineTo(0, 0).
		stroke().
		restoreState()
	w.stream(contentID, "", c.bytes())

	return w.finish(catalogID)
}
