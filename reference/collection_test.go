package reference

import (
	"testing"

	"github.com/hupe1980/segbench/arena"
	"github.com/hupe1980/segbench/model"
	"github.com/hupe1980/segbench/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_AppendGet(t *testing.T) {
	segs := testutil.NewRNG(4711).Segments(100)
	c := New()

	for i, s := range segs {
		assert.Equal(t, i, c.Append(s))
	}
	require.Equal(t, len(segs), c.Len())

	for i, want := range segs {
		got, err := c.Get(i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCollection_RecordsAreIndependent(t *testing.T) {
	c := New()
	s := model.Segment{ID: 1}
	c.Append(s)

	s.ID = 2
	got, err := c.Get(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.ID)
	assert.NotSame(t, c.records[0], &s)
}

func TestCollection_AppendBulk(t *testing.T) {
	c := New()

	c.AppendBulk(0, nil)
	assert.Equal(t, 0, c.Len())

	c.AppendBulk(1000, nil)
	assert.Equal(t, 1000, c.Len())

	got, err := c.Get(999)
	require.NoError(t, err)
	assert.Equal(t, model.Default(), got)

	var n uint64
	c.AppendBulk(3, func() model.Segment {
		n++
		return model.Segment{ID: n}
	})
	got, err = c.Get(1002)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.ID)
}

func TestCollection_GetOutOfRange(t *testing.T) {
	c := New()
	c.AppendBulk(2, nil)

	for _, i := range []int{-1, 2, 100} {
		_, err := c.Get(i)
		assert.ErrorIs(t, err, arena.ErrOutOfRange)
	}
}

func TestCollection_Clear(t *testing.T) {
	c := New()
	c.AppendBulk(10, nil)

	c.Clear()
	assert.Equal(t, 0, c.Len())

	_, err := c.Get(0)
	assert.ErrorIs(t, err, arena.ErrOutOfRange)
}
