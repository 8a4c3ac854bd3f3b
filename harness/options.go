package harness

import (
	"log/slog"

	"github.com/hupe1980/segbench/arena"
)

type options struct {
	initialCapacity int
	arenaOptions    []arena.Option
	logger          *slog.Logger
}

// Option configures a Harness.
type Option func(*options)

// WithInitialCapacity sets the capacity every arena run starts with. Default 0.
func WithInitialCapacity(records int) Option {
	return func(o *options) {
		o.initialCapacity = records
	}
}

// WithArenaOptions passes options to every arena the harness creates.
func WithArenaOptions(opts ...arena.Option) Option {
	return func(o *options) {
		o.arenaOptions = append(o.arenaOptions, opts...)
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
