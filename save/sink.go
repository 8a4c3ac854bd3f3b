package save

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/segbench/blobstore"
	"github.com/hupe1980/segbench/resource"
)

// DefaultReleaseAfter is how long a transient reference outlives its save.
const DefaultReleaseAfter = time.Second

var (
	// ErrClosed is returned by Save after Close.
	ErrClosed = errors.New("save: sink closed")
	// ErrInvalidFilename is returned for an empty filename.
	ErrInvalidFilename = errors.New("save: invalid filename")
)

// Sink persists bytes under a filename.
type Sink interface {
	Save(ctx context.Context, data []byte, filename, mimeType string) error
}

type options struct {
	staging       blobstore.Store
	stagingPrefix string
	releaseAfter  time.Duration
	rc            *resource.Controller
	logger        *slog.Logger
}

// Option configures a StagedSink.
type Option func(*options)

// WithStaging sets the store that holds transient references. Default: a
// private MemoryStore.
func WithStaging(store blobstore.Store) Option {
	return func(o *options) {
		if store != nil {
			o.staging = store
		}
	}
}

// WithStagingPrefix sets the name prefix of transient references. Default "transient".
func WithStagingPrefix(prefix string) Option {
	return func(o *options) {
		o.stagingPrefix = prefix
	}
}

// WithReleaseAfter sets the delay before a transient reference is released.
func WithReleaseAfter(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.releaseAfter = d
		}
	}
}

// WithResourceController throttles the copy to the destination.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
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

// StagedSink is a Sink that goes through a transient reference. It is safe
// for concurrent use.
type StagedSink struct {
	dest blobstore.Store
	opts options

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
	wg      sync.WaitGroup
}

var _ Sink = (*StagedSink)(nil)

// NewStagedSink creates a sink that saves into dest.
func NewStagedSink(dest blobstore.Store, opts ...Option) *StagedSink {
	o := options{
		stagingPrefix: "transient",
		releaseAfter:  DefaultReleaseAfter,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.staging == nil {
		o.staging = blobstore.NewMemoryStore()
	}

	return &StagedSink{
		dest:    dest,
		opts:    o,
		pending: make(map[string]*time.Timer),
	}
}

// Save stages data, copies it to the destination as filename and schedules
// the release of the transient reference once the copy is done, whether or
// not it succeeded.
func (s *StagedSink) Save(ctx context.Context, data []byte, filename, mimeType string) error {
	if filename == "" {
		return ErrInvalidFilename
	}

	ref := path.Join(s.opts.stagingPrefix, uuid.NewString())

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	// Registered under the lock so Close cannot miss it.
	s.wg.Add(1)
	s.mu.Unlock()

	if err := s.opts.staging.Put(ctx, ref, data, blobstore.PutOptions{ContentType: mimeType}); err != nil {
		s.wg.Done()
		return fmt.Errorf("save: stage %s: %w", filename, err)
	}

	err := s.copy(ctx, ref, filename, mimeType)
	s.schedule(ref)
	if err != nil {
		return fmt.Errorf("save: %s: %w", filename, err)
	}

	s.opts.logger.Debug("document saved",
		"filename", filename,
		"mime_type", mimeType,
		"bytes", len(data),
		"reference", ref,
	)
	return nil
}

// copy streams the transient reference into the destination.
func (s *StagedSink) copy(ctx context.Context, ref, filename, mimeType string) error {
	blob, err := s.opts.staging.Open(ctx, ref)
	if err != nil {
		return err
	}
	defer blob.Close()

	r := resource.NewRateLimitedReader(ctx, io.NewSectionReader(blob, 0, blob.Size()), s.opts.rc)
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	return s.dest.Put(ctx, filename, data, blobstore.PutOptions{ContentType: mimeType})
}

// schedule arms the release timer of ref. The caller holds a wg slot for it.
func (s *StagedSink) schedule(ref string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.release(ref)
		s.wg.Done()
		return
	}
	defer s.mu.Unlock()

	s.pending[ref] = time.AfterFunc(s.opts.releaseAfter, func() {
		defer s.wg.Done()

		s.mu.Lock()
		delete(s.pending, ref)
		s.mu.Unlock()

		s.release(ref)
	})
}

func (s *StagedSink) release(ref string) {
	if err := s.opts.staging.Delete(context.Background(), ref); err != nil {
		s.opts.logger.Warn("release transient reference failed", "reference", ref, "error", err)
		return
	}
	s.opts.logger.Debug("transient reference released", "reference", ref)
}

// Pending returns the number of transient references not yet released.
func (s *StagedSink) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close releases every pending reference now and waits for in-flight
// releases. Saves started after Close fail with ErrClosed.
func (s *StagedSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	var stopped []string
	for ref, t := range s.pending {
		if t.Stop() {
			stopped = append(stopped, ref)
		}
		delete(s.pending, ref)
	}
	s.mu.Unlock()

	for _, ref := range stopped {
		s.release(ref)
		s.wg.Done()
	}

	s.wg.Wait()
	return nil
}
