// Package safeconv provides overflow-aware integer arithmetic for counting
// combinations.
package safeconv

import "math/bits"

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// CheckedMul returns a*b and whether the product fits in an int.
// Both operands must be non-negative.
func CheckedMul(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}

	hi, lo := bits.Mul(uint(a), uint(b))
	if hi != 0 || lo > uint(MaxInt) {
		return MaxInt, false
	}

	return int(lo), true
}

// SaturatingMul returns a*b, clamped to MaxInt on overflow.
// Negative operands are treated as zero.
func SaturatingMul(a, b int) int {
	product, _ := CheckedMul(max(a, 0), max(b, 0))

	return product
}

// SaturatingAdd returns a+b, clamped to MaxInt on overflow.
// Negative operands are treated as zero.
func SaturatingAdd(a, b int) int {
	a, b = max(a, 0), max(b, 0)
	if a > MaxInt-b {
		return MaxInt
	}

	return a + b
}
