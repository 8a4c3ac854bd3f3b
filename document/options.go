package document

import (
	"log/slog"

	"github.com/klauspost/compress/zlib"
)

type options struct {
	assets AssetSource
	level  int
	logger *slog.Logger
}

// Option configures a PDFProducer.
type Option func(*options)

// WithAssets sets the source of preset images. Default: GeneratedAssets.
func WithAssets(src AssetSource) Option {
	return func(o *options) {
		if src != nil {
			o.assets = src
		}
	}
}

// WithCompressionLevel sets the zlib level for re-encoded PNG samples.
func WithCompressionLevel(level int) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithLogger sets the logger. Default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func defaultOptions() options {
	return options{
		assets: &GeneratedAssets{},
		level:  zlib.DefaultCompression,
		logger: slog.New(slog.DiscardHandler),
	}
}
