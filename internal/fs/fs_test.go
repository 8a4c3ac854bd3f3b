package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub")
	lfs := LocalFS{}

	require.NoError(t, lfs.MkdirAll(dir, 0o750))

	path := filepath.Join(dir, "a.pdf")
	f, err := lfs.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, f.Sync())
	require.NoError(t, f.Close())
	assert.Equal(t, path, f.Name())

	renamed := filepath.Join(dir, "b.pdf")
	require.NoError(t, lfs.Rename(path, renamed))

	entries, err := lfs.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b.pdf", entries[0].Name())

	require.NoError(t, lfs.Remove(renamed))
	_, err = os.Stat(renamed)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("disk full")

	ffs := NewFaultyFS(nil)
	ffs.AddRule(".pdf", Fault{FailAfterBytes: 5, Err: boom})
	ffs.AddRule("sync.pdf", Fault{FailAfterBytes: -1, FailOnSync: true})
	ffs.AddRule("close", Fault{FailAfterBytes: -1, FailOnClose: true})
	ffs.AddRule("rename", Fault{FailAfterBytes: -1, FailOnRename: true})

	t.Run("write limit", func(t *testing.T) {
		f, err := ffs.OpenFile(filepath.Join(dir, "limit.pdf"), os.O_CREATE|os.O_WRONLY, 0o600)
		require.NoError(t, err)
		defer f.Close()

		n, err := f.Write([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, 5, n)

		_, err = f.Write([]byte("!"))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("longest pattern wins", func(t *testing.T) {
		f, err := ffs.OpenFile(filepath.Join(dir, "sync.pdf"), os.O_CREATE|os.O_WRONLY, 0o600)
		require.NoError(t, err)
		defer f.Close()

		_, err = f.Write([]byte("more than five bytes"))
		require.NoError(t, err)
		assert.ErrorIs(t, f.Sync(), ErrInjected)
	})

	t.Run("close", func(t *testing.T) {
		f, err := ffs.OpenFile(filepath.Join(dir, "close.txt"), os.O_CREATE|os.O_WRONLY, 0o600)
		require.NoError(t, err)
		assert.ErrorIs(t, f.Close(), ErrInjected)
	})

	t.Run("rename", func(t *testing.T) {
		src := filepath.Join(dir, "rename.txt")
		require.NoError(t, os.WriteFile(src, nil, 0o600))
		assert.ErrorIs(t, ffs.Rename(src, filepath.Join(dir, "x")), ErrInjected)
	})

	t.Run("unmatched passes through", func(t *testing.T) {
		f, err := ffs.OpenFile(filepath.Join(dir, "plain.txt"), os.O_CREATE|os.O_WRONLY, 0o600)
		require.NoError(t, err)
		_, err = f.Write([]byte("no faults here"))
		require.NoError(t, err)
		require.NoError(t, f.Sync())
		require.NoError(t, f.Close())
	})
}
