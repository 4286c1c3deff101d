package safeconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckedMul(t *testing.T) {
	t.Parallel()

	t.Run("small_values", func(t *testing.T) {
		t.Parallel()

		got, ok := CheckedMul(6, 7)
		assert.True(t, ok)
		assert.Equal(t, 42, got)
	})

	t.Run("zero_factor", func(t *testing.T) {
		t.Parallel()

		got, ok := CheckedMul(0, MaxInt)
		assert.True(t, ok)
		assert.Equal(t, 0, got)
	})

	t.Run("overflow", func(t *testing.T) {
		t.Parallel()

		got, ok := CheckedMul(MaxInt, 2)
		assert.False(t, ok)
		assert.Equal(t, MaxInt, got)
	})

	t.Run("negative_rejected", func(t *testing.T) {
		t.Parallel()

		_, ok := CheckedMul(-1, 2)
		assert.False(t, ok)
	})
}

func TestSaturatingMul(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 12, SaturatingMul(3, 4))
	assert.Equal(t, MaxInt, SaturatingMul(MaxInt/2+1, 2))
	assert.Equal(t, 0, SaturatingMul(-5, 4))
}

func TestSaturatingAdd(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, SaturatingAdd(3, 4))
	assert.Equal(t, MaxInt, SaturatingAdd(MaxInt, 1))
	assert.Equal(t, 4, SaturatingAdd(-3, 4))
}
