package bits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundupPowOf2(t *testing.T) {
	n := RoundupPowOf2(7)
	assert.Equal(t, RoundupPowOf2ByCeil(7), n)
	assert.Equal(t, RoundupPowOf2ByLoop(7), n)

	n = RoundupPowOf2(10)
	assert.Equal(t, RoundupPowOf2ByCeil(10), n)
	assert.Equal(t, RoundupPowOf2ByLoop(10), n)

	n = RoundupPowOf2(17)
	assert.Equal(t, RoundupPowOf2ByCeil(17), n)
	assert.Equal(t, RoundupPowOf2ByLoop(17), n)

	n = RoundupPowOf2(127)
	assert.Equal(t, RoundupPowOf2ByCeil(127), n)
	assert.Equal(t, RoundupPowOf2ByLoop(127), n)

	assert.Equal(t, 8, RoundupPowOf2(7))
	assert.Equal(t, 16, RoundupPowOf2(10))
	assert.Equal(t, 1, RoundupPowOf2(1))
	assert.Equal(t, 1, RoundupPowOf2(0))
	assert.Equal(t, uint32(256), RoundupPowOf2(uint32(256)))
	assert.Equal(t, uint32(512), RoundupPowOf2(uint32(257)))
}

func TestCeilPowOf2(t *testing.T) {
	n := CeilPowOf2(7)
	assert.Equal(t, uint8(3), n)

	n = CeilPowOf2(10)
	assert.Equal(t, uint8(4), n)

	n = CeilPowOf2(17)
	assert.Equal(t, uint8(5), n)

	assert.Equal(t, uint8(0), CeilPowOf2(1))
	assert.Equal(t, uint8(8), CeilPowOf2(uint32(256)))
}
