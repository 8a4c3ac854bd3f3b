package fs

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// ErrInjected is returned by a Fault without an explicit Err.
var ErrInjected = errors.New("fs: injected fault")

// Fault describes how operations on matching files fail.
type Fault struct {
	FailAfterBytes int64 // Fail writes once the file would exceed this many bytes. -1 disables.
	FailOnSync     bool
	FailOnClose    bool
	FailOnRename   bool // Matched against the source path
	Err            error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

// FaultyFS wraps a FileSystem and injects failures for files whose path
// contains a rule pattern. It is safe for concurrent use.
type FaultyFS struct {
	fs FileSystem

	mu    sync.Mutex
	rules map[string]Fault
}

// NewFaultyFS wraps fsys, or Default if nil.
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{fs: fsys, rules: make(map[string]Fault)}
}

// AddRule injects fault into every file whose path contains pattern.
// When several patterns match, the longest wins.
func (f *FaultyFS) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

func (f *FaultyFS) match(name string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var (
		best    Fault
		bestLen = -1
	)
	for pattern, rule := range f.rules {
		if strings.Contains(name, pattern) && len(pattern) > bestLen {
			best, bestLen = rule, len(pattern)
		}
	}
	return best, bestLen >= 0
}

func (f *FaultyFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	file, err := f.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	fault, ok := f.match(name)
	if !ok {
		return file, nil
	}
	return &faultyFile{File: file, fault: fault}, nil
}

func (f *FaultyFS) Remove(name string) error { return f.fs.Remove(name) }

func (f *FaultyFS) Rename(oldpath, newpath string) error {
	if fault, ok := f.match(oldpath); ok && fault.FailOnRename {
		return fault.err()
	}
	return f.fs.Rename(oldpath, newpath)
}

func (f *FaultyFS) MkdirAll(path string, perm os.FileMode) error { return f.fs.MkdirAll(path, perm) }

func (f *FaultyFS) ReadDir(name string) ([]os.DirEntry, error) { return f.fs.ReadDir(name) }

type faultyFile struct {
	File
	fault   Fault
	written int64
}

func (ff *faultyFile) Write(p []byte) (int, error) {
	if ff.fault.FailAfterBytes >= 0 && ff.fault.FailAfterBytes < ff.written+int64(len(p)) {
		return 0, ff.fault.err()
	}
	n, err := ff.File.Write(p)
	ff.written += int64(n)
	return n, err
}

func (ff *faultyFile) Sync() error {
	if ff.fault.FailOnSync {
		return ff.fault.err()
	}
	return ff.File.Sync()
}

func (ff *faultyFile) Close() error {
	if ff.fault.FailOnClose {
		_ = ff.File.Close()
		return ff.fault.err()
	}
	return ff.File.Close()
}
