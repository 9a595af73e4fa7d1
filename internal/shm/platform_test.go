package shm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSize(t *testing.T) {
	cases := []struct {
		size      uint64
		high, low uint32
	}{
		{0, 0, 0},
		{2048, 0, 2048},
		{15660, 0, 15660},
		{math.MaxUint32, 0, math.MaxUint32},
		{math.MaxUint32 + 1, 1, 0},
		{5<<32 | 7, 5, 7},
		{math.MaxUint64, math.MaxUint32, math.MaxUint32},
	}
	for _, c := range cases {
		high, low := SplitSize(c.size)
		assert.Equal(t, c.high, high, "high half of %d", c.size)
		assert.Equal(t, c.low, low, "low half of %d", c.size)
		assert.Equal(t, c.size, JoinSize(high, low))
	}
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"acpmf_physics", "a", "Local.seg-1"} {
		assert.NoError(t, ValidateName(name), name)
	}
	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "a\x00b"} {
		assert.ErrorIs(t, ValidateName(name), ErrInvalidName, "%q", name)
	}
}
