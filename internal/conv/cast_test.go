package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToUint64(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := IntToUint64(123)
		assert.NoError(t, err)
		assert.Equal(t, uint64(123), got)
	})

	t.Run("invalid negative", func(t *testing.T) {
		_, err := IntToUint64(-1)
		assert.Error(t, err)
	})
}

func TestUint64ToInt(t *testing.T) {
	got, err := Uint64ToInt(uint64(math.MaxInt))
	assert.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)

	_, err = Uint64ToInt(uint64(math.MaxInt) + 1)
	assert.Error(t, err)
}

func TestAddInt(t *testing.T) {
	tests := []struct {
		name    string
		a, b    int
		want    int
		wantErr bool
	}{
		{"zero", 0, 0, 0, false},
		{"small", 40, 2, 42, false},
		{"at max", math.MaxInt - 1, 1, math.MaxInt, false},
		{"overflow", math.MaxInt, 1, 0, true},
		{"negative", -1, 1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddInt(tt.a, tt.b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMulInt(t *testing.T) {
	tests := []struct {
		name    string
		a, b    int
		want    int
		wantErr bool
	}{
		{"zero", 0, math.MaxInt, 0, false},
		{"records to bytes", 1_000_000, 72, 72_000_000, false},
		{"overflow", math.MaxInt/72 + 1, 72, 0, true},
		{"negative", -3, 72, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MulInt(tt.a, tt.b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
