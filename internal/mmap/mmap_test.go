package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_ReadClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.png")
	content := []byte("Hello, Mmap!")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, len(content), m.Size())
	assert.Equal(t, content, m.Bytes())
	assert.False(t, m.Writable())
	require.NoError(t, m.Advise(AccessSequential))

	buf := make([]byte, 5)
	n, err := m.ReadAt(buf, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "Mmap!", string(buf))

	n, err = m.ReadAt(make([]byte, 10), 100)
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	partial := make([]byte, 10)
	n, err = m.ReadAt(partial, 7)
	assert.Equal(t, 5, n)
	assert.Equal(t, io.EOF, err)

	_, err = m.ReadAt(buf, -1)
	assert.Equal(t, ErrInvalidOffset, err)
}

func TestOpen_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	m, err := Open(path)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 0, m.Size())
	assert.Nil(t, m.Bytes())
}

func TestMapAnon(t *testing.T) {
	t.Run("zeroed and writable", func(t *testing.T) {
		m, err := MapAnon(4096)
		require.NoError(t, err)
		defer m.Close()

		assert.True(t, m.Writable())
		data := m.Bytes()
		require.Len(t, data, 4096)
		for _, b := range data {
			require.Zero(t, b)
		}

		data[0], data[4095] = 0xAB, 0xCD
		assert.Equal(t, byte(0xAB), m.Bytes()[0])
		assert.Equal(t, byte(0xCD), m.Bytes()[4095])
	})

	t.Run("rejects empty size", func(t *testing.T) {
		_, err := MapAnon(0)
		assert.ErrorIs(t, err, ErrInvalidSize)

		_, err = MapAnon(-1)
		assert.ErrorIs(t, err, ErrInvalidSize)
	})
}

func TestMapping_AfterClose(t *testing.T) {
	m, err := MapAnon(128)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.Nil(t, m.Bytes())
	assert.ErrorIs(t, m.Advise(AccessRandom), ErrClosed)
	_, err = m.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, err, ErrClosed)
}
