package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/hupe1980/segbench/internal/fs"
	"github.com/hupe1980/segbench/internal/mmap"
)

const tmpPrefix = ".tmp-"

// LocalStore implements Store using the local file system.
//
// Content types are not persisted.
type LocalStore struct {
	root string
	fs   fs.FileSystem
}

// LocalOption configures a LocalStore.
type LocalOption func(*LocalStore)

// WithFileSystem routes writes, renames, deletes and listings through fsys.
// Reads always map the file directly.
func WithFileSystem(fsys fs.FileSystem) LocalOption {
	return func(s *LocalStore) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string, opts ...LocalOption) *LocalStore {
	s := &LocalStore{root: root, fs: fs.Default}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LocalStore) path(name string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", fmt.Errorf("blobstore: invalid blob name %q", name)
	}
	return filepath.Join(s.root, filepath.FromSlash(name)), nil
}

// Open opens a blob for reading. The file is memory mapped.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	if err := m.Advise(mmap.AccessSequential); err != nil {
		_ = m.Close()
		return nil, err
	}
	return &localBlob{m: m}, nil
}

// Put writes data to a temporary file in the target directory and renames it
// into place.
func (s *LocalStore) Put(_ context.Context, name string, data []byte, _ PutOptions) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	tmp := filepath.Join(dir, tmpPrefix+filepath.Base(path)+"-"+uuid.NewString())
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	_, werr := f.Write(data)
	if werr == nil {
		werr = f.Sync()
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = s.fs.Rename(tmp, path)
	}
	if werr != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("blobstore: put %s: %w", name, werr)
	}
	return nil
}

// Delete removes a blob.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return err
	}
	return nil
}

// List returns all blob names with the given prefix, using forward slashes.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	if err := s.walk(s.root, "", prefix, &names); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *LocalStore) walk(dir, rel, prefix string, names *[]string) error {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		if rel != "" && errors.Is(err, iofs.ErrNotExist) {
			// Removed while listing.
			return nil
		}
		return err
	}
	for _, e := range entries {
		name := path.Join(rel, e.Name())
		if e.IsDir() {
			if err := s.walk(filepath.Join(dir, e.Name()), name, prefix, names); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(e.Name(), tmpPrefix) {
			continue
		}
		if strings.HasPrefix(name, prefix) {
			*names = append(*names, name)
		}
	}
	return nil
}

type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) ReadAt(p []byte, off int64) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err = b.m.ReadAt(p, off)
	if errors.Is(err, mmap.ErrInvalidOffset) {
		return 0, io.EOF
	}
	return n, err
}

func (b *localBlob) Close() error {
	return b.m.Close()
}

func (b *localBlob) Size() int64 {
	return int64(b.m.Size())
}

func (b *localBlob) Bytes() ([]byte, error) {
	if b.m.Bytes() == nil && b.m.Size() > 0 {
		return nil, mmap.ErrClosed
	}
	return b.m.Bytes(), nil
}
