package conv

import (
	"fmt"
	"math"
	"math/bits"
)

// IntToUint64 converts int to uint64 safely.
func IntToUint64(v int) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint64 (negative)", v)
	}
	return uint64(v), nil
}

// Uint64ToInt converts uint64 to int safely.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too large)", v)
	}
	return int(v), nil
}

// AddInt returns a+b for non-negative operands, or an error if the sum
// does not fit in an int.
func AddInt(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("integer overflow: %d + %d (negative operand)", a, b)
	}
	if a > math.MaxInt-b {
		return 0, fmt.Errorf("integer overflow: %d + %d exceeds int", a, b)
	}
	return a + b, nil
}

// MulInt returns a*b for non-negative operands, or an error if the product
// does not fit in an int.
func MulInt(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("integer overflow: %d * %d (negative operand)", a, b)
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d * %d exceeds int", a, b)
	}
	return int(lo), nil
}
