// Package conv provides overflow-checked integer conversions and arithmetic.
//
// The arena sizes its buffers as records x record size; these helpers turn an
// overflow into an error instead of a silently wrapped length.
package conv
